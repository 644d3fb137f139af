package httpserver

import (
	"net/http"
	"time"

	"fambook-go/internal/config"
)

// New builds the HTTP server. Write timeout stays generous because media
// uploads stream through the request body.
func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}
}
