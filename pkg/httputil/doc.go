// Package httputil provides HTTP handler utilities for consistent error
// handling, JSON encoding/decoding, pagination parsing, and the shared
// middleware chain (request ID, logging, recovery, timeout).
package httputil
