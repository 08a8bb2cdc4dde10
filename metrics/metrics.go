// Package metrics provides Prometheus metrics for whisperdesk.
//
// Collectors are registered on a dedicated registry rather than the
// process-global default so tests can build as many instances as they need.
// Every Record* method is safe on a nil *Metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "whisperdesk"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	registry *prometheus.Registry

	// Transcription
	TranscriptionsTotal   *prometheus.CounterVec
	TranscriptionDuration *prometheus.HistogramVec
	TranscriptionsActive  prometheus.Gauge
	SegmentsProduced      prometheus.Counter

	// Model registry
	ModelLoadsTotal   *prometheus.CounterVec
	ModelLoadDuration *prometheus.HistogramVec
	ModelsLoaded      prometheus.Gauge

	// Artifacts
	ArtifactBytes   prometheus.Histogram
	ArtifactCleanup *prometheus.CounterVec

	// Annotations and labeling
	AnnotationsSaved prometheus.Counter
	LabelingSubmits  *prometheus.CounterVec
	LabelingLatency  prometheus.Histogram
	WeightsDownloads *prometheus.CounterVec

	// Events
	EventsPublished *prometheus.CounterVec
	EventsErrors    *prometheus.CounterVec
}

// New creates a registry with Go and process collectors and registers every
// service metric on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		TranscriptionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Total number of transcription requests",
		}, []string{"model", "outcome", "category"}),
		TranscriptionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_duration_seconds",
			Help:      "Inference duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"model"}),
		TranscriptionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transcriptions_active",
			Help:      "Number of transcriptions currently running inference",
		}),
		SegmentsProduced: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_produced_total",
			Help:      "Total number of transcript segments returned",
		}),

		ModelLoadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_loads_total",
			Help:      "Total number of model loads",
		}, []string{"model", "outcome"}),
		ModelLoadDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_load_duration_seconds",
			Help:      "Model load duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 180, 600},
		}, []string{"model"}),
		ModelsLoaded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "models_loaded",
			Help:      "Number of model handles held by the registry",
		}),

		ArtifactBytes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "artifact_bytes",
			Help:      "Size of uploaded audio artifacts in bytes",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 7),
		}),
		ArtifactCleanup: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_cleanup_total",
			Help:      "Artifact removals by outcome",
		}, []string{"outcome"}),

		AnnotationsSaved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_saved_total",
			Help:      "Total number of annotations saved",
		}),
		LabelingSubmits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "labeling_submissions_total",
			Help:      "Annotation submissions to the labeling API",
		}, []string{"mode", "outcome"}),
		LabelingLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "labeling_latency_seconds",
			Help:      "Labeling API call latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		WeightsDownloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weights_downloads_total",
			Help:      "Model weights downloads by outcome",
		}, []string{"model", "outcome"}),

		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of domain events published",
		}, []string{"topic"}),
		EventsErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_errors_total",
			Help:      "Total number of event publish errors",
		}, []string{"topic"}),
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

// RecordTranscription records a finished transcription. category is empty on
// success.
func (m *Metrics) RecordTranscription(model, category string, segments int, seconds float64, err error) {
	if m == nil {
		return
	}
	m.TranscriptionsTotal.WithLabelValues(model, outcome(err), category).Inc()
	if err == nil {
		m.TranscriptionDuration.WithLabelValues(model).Observe(seconds)
		m.SegmentsProduced.Add(float64(segments))
	}
}

// InferenceStarted increments the active gauge and returns a func that
// decrements it.
func (m *Metrics) InferenceStarted() func() {
	if m == nil {
		return func() {}
	}
	m.TranscriptionsActive.Inc()
	return m.TranscriptionsActive.Dec
}

// RecordModelLoad records one model load attempt.
func (m *Metrics) RecordModelLoad(model string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.ModelLoadsTotal.WithLabelValues(model, outcome(err)).Inc()
	if err == nil {
		m.ModelLoadDuration.WithLabelValues(model).Observe(seconds)
	}
}

// SetModelsLoaded sets the number of cached model handles.
func (m *Metrics) SetModelsLoaded(n int) {
	if m == nil {
		return
	}
	m.ModelsLoaded.Set(float64(n))
}

// RecordArtifact observes an uploaded artifact size.
func (m *Metrics) RecordArtifact(size int64) {
	if m == nil {
		return
	}
	m.ArtifactBytes.Observe(float64(size))
}

// RecordArtifactCleanup records one artifact removal.
func (m *Metrics) RecordArtifactCleanup(err error) {
	if m == nil {
		return
	}
	m.ArtifactCleanup.WithLabelValues(outcome(err)).Inc()
}

// RecordAnnotationSaved counts a saved annotation.
func (m *Metrics) RecordAnnotationSaved() {
	if m == nil {
		return
	}
	m.AnnotationsSaved.Inc()
}

// RecordLabelingSubmit records one labeling API submission.
func (m *Metrics) RecordLabelingSubmit(mode string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.LabelingSubmits.WithLabelValues(mode, outcome(err)).Inc()
	m.LabelingLatency.Observe(seconds)
}

// RecordWeightsDownload records one weights download.
func (m *Metrics) RecordWeightsDownload(model string, err error) {
	if m == nil {
		return
	}
	m.WeightsDownloads.WithLabelValues(model, outcome(err)).Inc()
}

// RecordEvent records one event publish.
func (m *Metrics) RecordEvent(topic string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.EventsErrors.WithLabelValues(topic).Inc()
		return
	}
	m.EventsPublished.WithLabelValues(topic).Inc()
}
