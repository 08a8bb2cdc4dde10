// Package provider is a small registry of named factories for pluggable
// backends. Backends register a factory from their package init; the
// application picks one by name from configuration.
//
//	engines := provider.NewRegistry[transcription.Loader, transcription.EngineDeps]()
//	engines.RegisterFactory("sidecar", sidecar.Factory)
//	loader, err := engines.Create(cfg.Engine, deps)
package provider
