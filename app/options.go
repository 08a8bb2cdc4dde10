package app

import "github.com/kbukum/whisperdesk/logger"

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger *logger.Logger
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger replaces the logger built from the logging config.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}
