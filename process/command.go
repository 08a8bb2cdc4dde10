// Package process runs external binaries (ffmpeg, whisper-cli) with captured
// output and graceful termination on context cancellation.
package process

import (
	"io"
	"time"
)

// Command configures a subprocess to execute.
type Command struct {
	// Binary is the executable path or a name resolved via PATH.
	Binary string
	Args   []string
	Dir    string
	// Env entries (key=value) are appended to os.Environ.
	Env   []string
	Stdin io.Reader
	// GracePeriod between SIGTERM and SIGKILL. Defaults to 5s.
	GracePeriod time.Duration
}
