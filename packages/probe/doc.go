// Package probe drives the three call sequences of a secprobe run.
//
// A sequence walks the identifier list one call at a time:
//
//	build request -> send -> decode -> log -> pace -> next identifier
//
// The resolve sequence posts one ticker per call, the keyword sequence gets
// one search URL per identifier and the bulk-search sequence posts the whole
// list once. Failed calls are logged and counted, they never stop a
// sequence. Runner starts the sequences concurrently and waits for all of
// them; each owns its own log file.
package probe
