// Package weights is the on-disk cache of model weight files. Missing files
// are downloaded from a HuggingFace-compatible base URL into a temporary
// file and renamed into place once complete.
package weights

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kbukum/whisperdesk/httpclient"
	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/metrics"
	"github.com/kbukum/whisperdesk/resilience"
	"github.com/kbukum/whisperdesk/transcription"
)

// Config configures the weights cache.
type Config struct {
	// Dir defaults to ~/.cache/whisperdesk/models.
	Dir     string `yaml:"dir" mapstructure:"dir"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	// Retries is the number of download attempts.
	Retries    int           `yaml:"retries" mapstructure:"retries" validate:"gte=0"`
	RetryDelay time.Duration `yaml:"retry_delay" mapstructure:"retry_delay" validate:"gte=0"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Dir == "" {
		c.Dir = defaultDir()
	}
	if c.BaseURL == "" {
		c.BaseURL = transcription.DefaultWeightsBaseURL
	}
	if c.Retries == 0 {
		c.Retries = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = time.Second
	}
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "whisperdesk", "models")
	}
	return filepath.Join(home, ".cache", "whisperdesk", "models")
}

// Cache resolves model weights to local files.
type Cache struct {
	cfg     Config
	client  *httpclient.Client
	metrics *metrics.Metrics
	log     *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ transcription.WeightsSource = (*Cache)(nil)

// New creates a cache rooted at cfg.Dir.
func New(cfg Config, m *metrics.Metrics, log *logger.Logger) (*Cache, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	client, err := httpclient.New(httpclient.Config{BaseURL: cfg.BaseURL})
	if err != nil {
		return nil, err
	}
	return &Cache{
		cfg:     cfg,
		client:  client,
		metrics: m,
		log:     log.WithComponent("weights"),
		locks:   make(map[string]*sync.Mutex),
	}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.cfg.Dir }

// Path returns where the weights for info live.
func (c *Cache) Path(info transcription.ModelInfo) string {
	return filepath.Join(c.cfg.Dir, info.Filename)
}

// IsDownloaded reports whether a non-empty weights file is present.
func (c *Cache) IsDownloaded(info transcription.ModelInfo) bool {
	st, err := os.Stat(c.Path(info))
	return err == nil && st.Mode().IsRegular() && st.Size() > 0
}

// Downloaded lists the catalog entries whose weights are present, in
// catalog order.
func (c *Cache) Downloaded(catalog *transcription.Catalog) []transcription.ModelInfo {
	var out []transcription.ModelInfo
	for _, info := range catalog.Models() {
		if c.IsDownloaded(info) {
			out = append(out, info)
		}
	}
	return out
}

// Ensure returns the local weights path for info, downloading the file
// first when it is missing. Concurrent calls for the same file wait for a
// single download.
func (c *Cache) Ensure(ctx context.Context, info transcription.ModelInfo) (string, error) {
	path := c.Path(info)
	lock := c.fileLock(path)
	lock.Lock()
	defer lock.Unlock()

	if c.IsDownloaded(info) {
		return path, nil
	}
	if err := os.MkdirAll(c.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create weights dir: %w", err)
	}

	retry := resilience.FixedRetryConfig(c.cfg.Retries, c.cfg.RetryDelay)
	retry.OnRetry = func(attempt int, err error, _ time.Duration) {
		c.log.WithContext(ctx).Warn("weights download failed, retrying", logger.MergeWithError(
			logger.Fields(logger.FieldModel, info.ID, "attempt", attempt), err))
	}
	err := resilience.RetryFunc(ctx, retry, func() error {
		return c.download(ctx, info, path)
	})
	c.metrics.RecordWeightsDownload(string(info.ID), err)
	if err != nil {
		return "", fmt.Errorf("download weights for %s: %w", info.ID, err)
	}
	return path, nil
}

func (c *Cache) fileLock(path string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[path]
	if !ok {
		l = &sync.Mutex{}
		c.locks[path] = l
	}
	return l
}

func (c *Cache) download(ctx context.Context, info transcription.ModelInfo, dest string) error {
	log := c.log.WithContext(ctx)
	log.Info("downloading model weights", logger.Fields(
		logger.FieldModel, info.ID, "url", info.URL(c.cfg.BaseURL), "size", info.Size))

	body, length, err := c.client.DoStream(ctx, httpclient.Request{Path: info.Filename})
	if err != nil {
		if httpclient.IsNotFound(err) || httpclient.IsAuth(err) {
			return resilience.Permanent(err)
		}
		return err
	}
	defer func() { _ = body.Close() }()

	if length <= 0 {
		length = info.SizeBytes
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return resilience.Permanent(fmt.Errorf("create %s: %w", tmp, err))
	}
	start := time.Now()
	pw := &progressWriter{total: length, report: func(pct int, n int64) {
		log.Info("weights download progress", logger.Fields(
			logger.FieldModel, info.ID, "percent", pct, "bytes", n))
	}}
	n, err := io.Copy(io.MultiWriter(f, pw), body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n == 0 {
		err = fmt.Errorf("empty response body")
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", filepath.Base(dest), err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename weights: %w", err)
	}

	log.Info("model weights downloaded", logger.Fields(
		logger.FieldModel, info.ID, "bytes", n, logger.FieldDuration, time.Since(start).Milliseconds()))
	return nil
}

// progressWriter reports every 25% of total.
type progressWriter struct {
	total   int64
	written int64
	next    int
	report  func(pct int, n int64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.total > 0 {
		pct := int(p.written * 100 / p.total)
		for p.next <= 100 && pct >= p.next+25 {
			p.next += 25
			p.report(min(p.next, 100), p.written)
		}
	}
	return len(b), nil
}
