// Package filesystem implements the staging area as one private directory.
//
// Every artifact is written to a hidden temporary file in the same directory,
// fsynced and renamed over its final name, so readers only ever observe a
// complete previous or complete new version. Hidden files are never listed.
package filesystem
