// Package forge commits bytes produced by a Producer to a path under one of two
// existence contracts. A Generate operation creates a fresh file and fails if
// the path already exists; an Append operation extends an existing file and
// fails if it does not. Operations are single-use.
//
// On a producer failure Generate removes the file it created and Append
// truncates the file back to its original size, so the target is left as it
// was found. No separator is ever inserted between existing and new content.
package forge
