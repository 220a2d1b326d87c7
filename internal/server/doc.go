// Package server owns the TCP accept loop, per-connection supervisors
// and the request handlers. Each accepted connection is served by one
// supervisor goroutine that reads a single request, dispatches it and
// writes one response; a shared coordinator drives cooperative
// shutdown across all of them.
package server
