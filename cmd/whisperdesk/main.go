// Command whisperdesk serves the transcription and annotation API, or
// prefetches model weights with the download subcommand.
//
//	whisperdesk [serve] [-config path]
//	whisperdesk download [-config path] [-models small,base]
//	whisperdesk version
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/whisperdesk/app"
	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	cmd := "serve"
	if len(args) > 0 && (args[0] == "serve" || args[0] == "download" || args[0] == "version") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "version":
		fmt.Fprintln(stderr, version.Get().String())
		return 0
	case "download":
		return download(args, stderr)
	default:
		return serve(args, stderr)
	}
}

func serve(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (default: ./cmd/whisperdesk/config.yml and standard locations)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	a, err := build(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "whisperdesk: %v\n", err)
		return 1
	}
	a.OnReady(func(context.Context) error {
		a.Logger.Info("accepting requests", logger.Fields("addr", a.Server.Addr()))
		return nil
	})
	if err := a.Run(context.Background()); err != nil {
		a.Logger.Error("application stopped with error", logger.ErrorFields("run", err))
		return 1
	}
	return 0
}

func download(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file")
	models := fs.String("models", "", "comma separated model ids (default: all)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	a, err := build(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "whisperdesk: %v\n", err)
		return 1
	}
	ids, err := app.ParseModelList(a.Catalog, *models)
	if err != nil {
		fmt.Fprintf(stderr, "whisperdesk: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := 0
	for _, r := range a.Download(ctx, ids) {
		if r.Err != nil {
			failed++
			fmt.Fprintf(stderr, "FAIL %s: %v\n", r.Model, r.Err)
			continue
		}
		fmt.Fprintf(stderr, "ok   %s -> %s\n", r.Model, r.Path)
	}
	if failed > 0 {
		fmt.Fprintf(stderr, "%d of %d models failed\n", failed, len(ids))
		return 1
	}
	return 0
}

func build(configPath string) (*app.App, error) {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(cfg)
}
