// Package security holds the security record returned by the
// resolution/search service and the decoders that turn response bodies into
// result counts.
//
// Property names are matched case-insensitively. Map keys of a resolve
// response ("TICKER-AAPL") are matched exactly.
package security
