// Package server provides the HTTP server: a Gin engine served over HTTP/1.1
// and h2c, wrapped in the middleware chain from server/middleware, with
// lifecycle hooks for the component registry.
//
//	srv := server.New(cfg, log)
//	srv.GinEngine().POST("/transcribe", h.Transcribe)
//	srv.Handle("/metrics", m.Handler())
package server
