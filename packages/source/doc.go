// Package source loads the identifier lists that drive a probe run.
//
// An identifier file holds one ticker or keyword per line. Lines are returned
// in file order, untrimmed, with blank lines and duplicates kept.
package source
