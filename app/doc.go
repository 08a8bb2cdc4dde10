// Package app wires whisperdesk from its configuration: the transcription
// engine and model registry, weights cache, annotation storage, labeling
// client, sessions, events and the HTTP server, all started and stopped
// through a component registry.
//
//	cfg, err := app.LoadConfig("")
//	a, err := app.New(cfg)
//	err = a.Run(ctx)
package app
