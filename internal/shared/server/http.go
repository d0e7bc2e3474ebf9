package server

import (
	"context"
	"net"
	"net/http"
	"time"
)

// NewHTTPServer wraps handler in an http.Server whose request contexts are
// cancelled as soon as Shutdown begins, so long-lived streams end instead of
// holding the drain open until the deadline.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	base, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}
