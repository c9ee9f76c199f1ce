// Package httpserver builds the API's http.Server with its operational
// timeouts.
package httpserver

import (
	"net/http"
	"time"
)

// Idle keep-alive connections are cheap; one minute matches typical
// load-balancer settings.
const idleTimeout = time.Minute

// New builds the server. readHeaderTimeout bounds slow-header clients and
// comes from configuration so operators can tune it.
func New(addr string, handler http.Handler, readHeaderTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
}
