/*
Package operation implements the commands taperoll runs over a project.

	+-------------+     +-------------+     +-------------+
	|  bootstrap  | --> |   render    | --> |   status    |
	| clone/strip |     | pipelines   |     |  tracking   |
	|   install   |     | (errgroup)  |     +-------------+
	+-------------+     +-------------+
	                          ^
	                    +-----+-----+
	                    |   clean   |
	                    +-----------+

🎯 Purpose:
- bootstrap resolves a template, clones it, strips .git and installs dependencies
- render discovers files per file set and streams each through its pipeline
- clean removes what render would have written

A render never stops at the first bad file. Every file is tracked by the
status manager and the failures are returned together once all have run.
*/
package operation
