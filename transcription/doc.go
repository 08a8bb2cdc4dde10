// Package transcription is the core of whisperdesk: the model catalog, the
// model registry, the request pipeline and the error classification that
// turns engine failures into user-facing messages.
//
// Engines (whispercpp, sidecar) implement Loader and register a factory on
// Engines from their init functions. The application picks one by name:
//
//	loader, err := transcription.Engines.Create(cfg.Engine, deps)
//	reg := transcription.NewRegistry(transcription.DefaultCatalog(), loader)
//	p := transcription.NewPipeline(reg, cfg, m, log)
//	res, err := p.Transcribe(ctx, transcription.Request{AudioPath: path, Language: "auto", Model: "base"})
package transcription
