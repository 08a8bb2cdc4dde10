package transcription

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type fakeModel struct {
	id       ModelID
	out      *RawOutput
	err      error
	delay    time.Duration
	released atomic.Int32
	closed   atomic.Bool

	mu       sync.Mutex
	lastOpts Options
	lastPath string
}

func (m *fakeModel) Transcribe(ctx context.Context, path string, opts Options) (*RawOutput, error) {
	m.mu.Lock()
	m.lastOpts, m.lastPath = opts, path
	m.mu.Unlock()
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.out, m.err
}

func (m *fakeModel) ReleaseMemory() { m.released.Add(1) }
func (m *fakeModel) Close() error   { m.closed.Store(true); return nil }

type fakeLoader struct {
	loads    atomic.Int32
	delay    time.Duration
	failures atomic.Int32 // remaining loads that fail
	err      error
	gate     chan struct{}
	newModel func(ModelInfo) *fakeModel
}

func (l *fakeLoader) Name() string                     { return "fake" }
func (l *fakeLoader) IsAvailable(context.Context) bool { return true }

func (l *fakeLoader) Load(ctx context.Context, info ModelInfo) (Model, error) {
	l.loads.Add(1)
	if l.gate != nil {
		<-l.gate
	}
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.failures.Load() > 0 {
		l.failures.Add(-1)
		return nil, l.err
	}
	if l.newModel != nil {
		return l.newModel(info), nil
	}
	return &fakeModel{id: info.ID, out: speechOutput()}, nil
}

func speechOutput() *RawOutput {
	return &RawOutput{
		Text:     " Hello world. How are you?",
		Language: "en",
		Segments: []RawSegment{
			{ID: 0, Text: " Hello world. ", Start: 0.0, End: 1.8, Words: []RawWord{
				{Word: " Hello", Start: 0.0, End: 0.6, Probability: 0.98},
				{Word: " world.", Start: 0.6, End: 1.8, Probability: 0.95},
			}},
			{ID: 1, Text: " How are you?", Start: 1.8, End: 3.1},
		},
	}
}
