/*
Package status tracks what an operation did to each file it touched.

	+-------------+      +-------------+
	|  Snapshot   | ---> |  Classify   |
	| (before)    |      | (after)     |
	+-------------+      +------+------+
	                            |
	                     +------+------+
	                     |   Manager   |
	                     | files, prog |
	                     +------+------+
	                            |
	                     +------+------+
	                     |  Formatter  |
	                     +-------------+

🎯 Purpose:
- Checksum a target before it is rewritten
- Classify it as new, modified or unchanged after the write
- Count progress from concurrent workers
- Summarize the operation for the console

The manager holds no file handles; callers snapshot, write, then track.
*/
package status
