// Package export reads a channel archive export from disk.
//
// An export is a directory with one sub-directory per collection. Each
// collection directory holds JSON files (one per day in the usual export
// layout), each a JSON array of message objects:
//
//	<root>/<collection>/2024-01-15.json
//	<root>/<collection>/2024-01-16.json
//
// Files are served as pages in lexical name order. The page cursor is the
// name of the next file to read, so an interrupted ingestion resumes at the
// file it had not finished.
package export
