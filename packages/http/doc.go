// Package http provides the timed HTTP exchange used by every probe call.
//
// It wraps the standard library's http package with:
//   - Default headers (bearer token, accept) applied to every request
//   - A per-call timeout
//   - Classification of failures into HTTP status, timeout, cancellation
//     and transport errors (see CallError)
package http
