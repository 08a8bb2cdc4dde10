// Package version reports build information for /info and the CLI.
//
// Version and BuildTime are set with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/whisperdesk/version.Version=1.2.0" ./cmd/whisperdesk
//
// The commit and dirty flag come from the VCS stamp the Go toolchain embeds.
package version
