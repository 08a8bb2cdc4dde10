// Package util holds small helpers shared by whisperdesk packages: size
// parsing for upload limits, secret masking for logs and identifier checks
// for route parameters.
package util
