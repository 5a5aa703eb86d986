// Package output writes probe result lines.
//
// Each sequence owns one Log: a plain text file with one line per call,
// mirrored to the console. Failed calls are highlighted on the console only.
package output
