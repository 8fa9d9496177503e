package httpserver

import (
	"net/http"
	"time"
)

// Timeouts are sized for the intake workload: JSON requests are small, but
// document uploads can stream up to the 10 MiB ceiling over slow links.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 2 * time.Minute
	idleTimeout       = 2 * time.Minute
)

// New builds an HTTP server with the project's timeout defaults. Write
// deadlines are left to the per-request timeout middleware so document
// downloads are not cut off mid-stream.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
	}
}
