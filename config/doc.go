// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment using viper and godotenv.
//
// The YAML file is looked up under ./cmd/<service>/config.yml and a few
// conventional locations. Environment variables override file values; an
// upper-case variable such as TRANSCRIPTION_ENGINE is bound to every nested
// key it could spell (transcription.engine, transcription_engine).
//
//	var cfg app.Config
//	err := config.LoadConfig("whisperdesk", &cfg)
package config
