package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperdesk/annotation"
	"github.com/kbukum/whisperdesk/api"
	"github.com/kbukum/whisperdesk/events"
	"github.com/kbukum/whisperdesk/labeling"
	"github.com/kbukum/whisperdesk/session"
	"github.com/kbukum/whisperdesk/storage"
	"github.com/kbukum/whisperdesk/storage/local"
	"github.com/kbukum/whisperdesk/transcription"
)

func init() { gin.SetMode(gin.TestMode) }

type fakePipeline struct {
	mu      sync.Mutex
	req     transcription.Request
	existed bool
	res     *transcription.Result
	err     error
}

func (f *fakePipeline) Transcribe(_ context.Context, req transcription.Request) (*transcription.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.req = req
	_, statErr := os.Stat(req.AudioPath)
	f.existed = statErr == nil
	_ = os.Remove(req.AudioPath)
	return f.res, f.err
}

type fakeLabeling struct {
	submitted []labeling.Submission
	err       error
}

func (f *fakeLabeling) Mock() bool { return false }
func (f *fakeLabeling) ValidateToken(_ context.Context, token string) bool {
	return token == "good"
}
func (f *fakeLabeling) Submit(_ context.Context, token string, s labeling.Submission) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.submitted = append(f.submitted, s)
	return map[string]any{"status": "success", "annotation_id": "ann-1", "token": token}, nil
}
func (f *fakeLabeling) FormatSubmission(taskID, audio, text, lang, model string) labeling.Submission {
	return labeling.Submission{TaskID: taskID, AudioData: audio, Transcription: text, Language: lang, Model: model, Timestamp: "t"}
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	done   chan struct{}
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ events.Event) error {
	p.mu.Lock()
	p.topics = append(p.topics, topic)
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}
func (p *recordingPublisher) Close() error { return nil }

type fakeWeights struct{ ids []transcription.ModelID }

func (f fakeWeights) Downloaded(c *transcription.Catalog) []transcription.ModelInfo {
	var out []transcription.ModelInfo
	for _, id := range f.ids {
		info, _ := c.Lookup(id)
		out = append(out, info)
	}
	return out
}

type env struct {
	router    *gin.Engine
	pipeline  *fakePipeline
	labeling  *fakeLabeling
	events    *recordingPublisher
	uploadDir string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sessions, err := session.NewManager(session.Config{Secret: "test-secret-test-secret-test-secret"})
	if err != nil {
		t.Fatal(err)
	}
	e := &env{
		pipeline: &fakePipeline{res: &transcription.Result{
			Text: " Hello", DetectedLanguage: "en",
			Segments: []transcription.Segment{{ID: 0, Text: "Hello", Start: 0, End: 1, Words: []transcription.Word{}}},
		}},
		labeling:  &fakeLabeling{},
		events:    &recordingPublisher{done: make(chan struct{}, 8)},
		uploadDir: t.TempDir(),
	}
	h, err := api.New(api.Deps{
		Catalog:      transcription.DefaultCatalog(),
		Pipeline:     e.pipeline,
		Weights:      fakeWeights{ids: []transcription.ModelID{"base"}},
		Annotations:  annotation.NewStore(func() storage.Storage { return st }, nil, nil),
		Labeling:     e.labeling,
		Sessions:     sessions,
		Events:       e.events,
		UploadDir:    e.uploadDir,
		DefaultModel: "small",
	})
	if err != nil {
		t.Fatal(err)
	}
	e.router = gin.New()
	h.Register(e.router)
	return e
}

func (e *env) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, fields map[string]string, withFile bool) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if withFile {
		fw, err := mw.CreateFormFile("audio", "recording.webm")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte("audio-bytes"))
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/transcribe", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(method, path string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestTranscribe(t *testing.T) {
	e := newEnv(t)
	w := e.do(uploadRequest(t, map[string]string{"language": "en", "model": "tiny"}, true))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	body := decode(t, w)
	if body["detected_language"] != "en" || len(body["segments"].([]any)) != 1 {
		t.Errorf("body = %v", body)
	}

	req := e.pipeline.req
	if req.Language != "en" || req.Model != "tiny" || !e.pipeline.existed {
		t.Errorf("pipeline request = %+v existed=%v", req, e.pipeline.existed)
	}
	if !strings.HasPrefix(req.AudioPath, e.uploadDir) || !strings.HasSuffix(req.AudioPath, ".wav") {
		t.Errorf("artifact path = %s", req.AudioPath)
	}
	<-e.events.done
	if e.events.topics[0] != events.TopicTranscriptionCompleted {
		t.Errorf("topics = %v", e.events.topics)
	}
}

func TestTranscribeDefaults(t *testing.T) {
	e := newEnv(t)
	if w := e.do(uploadRequest(t, nil, true)); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if e.pipeline.req.Language != "auto" || e.pipeline.req.Model != "small" {
		t.Errorf("defaults not applied: %+v", e.pipeline.req)
	}
}

func TestTranscribeMissingAudio(t *testing.T) {
	e := newEnv(t)
	w := e.do(uploadRequest(t, map[string]string{"model": "base"}, false))
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "MISSING_FIELD" {
		t.Errorf("status = %d body = %s", w.Code, w.Body)
	}
}

func TestTranscribeErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid model", &transcription.InvalidModelError{Model: "xl"}, 400, "INVALID_MODEL"},
		{"invalid language", &transcription.InvalidLanguageError{Language: "xx"}, 400, "INVALID_LANGUAGE"},
		{"load failure", &transcription.ModelLoadError{Model: "base", Err: errors.New("x")}, 503, "MODEL_LOAD_FAILED"},
		{"gpu", transcription.NewTranscriptionError(errors.New("CUDA out of memory")), 500, "TRANSCRIPTION_FAILED"},
		{"busy", transcription.ErrBusy, 503, "SERVICE_UNAVAILABLE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			e.pipeline.err = tc.err
			w := e.do(uploadRequest(t, nil, true))
			if w.Code != tc.status || errorCode(t, w) != tc.code {
				t.Errorf("got %d %s", w.Code, w.Body)
			}
		})
	}

	e := newEnv(t)
	e.pipeline.err = transcription.NewTranscriptionError(errors.New("CUDA out of memory"))
	body := decode(t, e.do(uploadRequest(t, nil, true)))
	if msg := body["error"].(map[string]any)["message"]; msg != transcription.MessageGPUMemory {
		t.Errorf("message = %v", msg)
	}
}

func TestAnnotations(t *testing.T) {
	e := newEnv(t)
	doc := map[string]any{"segments": []any{map[string]any{"id": 0, "text": "fixed"}}}
	w := e.do(jsonRequest(http.MethodPost, "/save-annotation", doc))
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", w.Code, w.Body)
	}
	body := decode(t, w)
	id, _ := body["annotation_id"].(string)
	if body["success"] != true || id == "" {
		t.Fatalf("save body = %v", body)
	}
	<-e.events.done

	w = e.do(httptest.NewRequest(http.MethodGet, "/annotations/"+id, nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "fixed") {
		t.Errorf("get = %d %s", w.Code, w.Body)
	}

	w = e.do(httptest.NewRequest(http.MethodGet, "/annotations", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), id) {
		t.Errorf("list = %d %s", w.Code, w.Body)
	}

	w = e.do(httptest.NewRequest(http.MethodGet, "/annotations/00000000-0000-0000-0000-000000000001", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("missing annotation status = %d", w.Code)
	}

	w = e.do(httptest.NewRequest(http.MethodGet, "/annotations/not-a-uuid", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d", w.Code)
	}
}

func TestSaveAnnotationInvalid(t *testing.T) {
	e := newEnv(t)
	for name, req := range map[string]*http.Request{
		"no segments": jsonRequest(http.MethodPost, "/save-annotation", map[string]any{"text": "x"}),
		"not json":    httptest.NewRequest(http.MethodPost, "/save-annotation", strings.NewReader("{")),
	} {
		t.Run(name, func(t *testing.T) {
			w := e.do(req)
			if w.Code != http.StatusBadRequest || errorCode(t, w) != "INVALID_INPUT" {
				t.Errorf("got %d %s", w.Code, w.Body)
			}
		})
	}
}

func TestCatalogRoutes(t *testing.T) {
	e := newEnv(t)

	w := e.do(httptest.NewRequest(http.MethodGet, "/languages", nil))
	if strings.TrimSpace(w.Body.String()) != `["en","zh"]` {
		t.Errorf("languages = %s", w.Body)
	}

	w = e.do(httptest.NewRequest(http.MethodGet, "/models", nil))
	models := decode(t, w)
	medium, _ := models["medium"].(map[string]any)
	if len(models) != 5 || medium["name"] != "Medium" || medium["size"] != "1.5G" {
		t.Errorf("models = %v", models)
	}

	w = e.do(httptest.NewRequest(http.MethodGet, "/", nil))
	page := decode(t, w)
	if page["locale"] != "en" || page["default_model"] != "small" {
		t.Errorf("page = %v", page)
	}
	if d, _ := page["downloaded_models"].([]any); len(d) != 1 || d[0] != "base" {
		t.Errorf("downloaded = %v", page["downloaded_models"])
	}
}

func TestSetLanguage(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/set_language/zh", nil)
	req.Header.Set("Referer", "/models")
	w := e.do(req)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/models" {
		t.Fatalf("redirect = %d %s", w.Code, w.Header().Get("Location"))
	}

	page := decode(t, e.do(httptest.NewRequest(http.MethodGet, "/", nil), w.Result().Cookies()...))
	if page["locale"] != "zh" {
		t.Errorf("locale = %v", page["locale"])
	}

	if w := e.do(httptest.NewRequest(http.MethodGet, "/set_language/fr", nil)); w.Code != http.StatusBadRequest {
		t.Errorf("unsupported locale status = %d", w.Code)
	}
}

func TestLabelingFlow(t *testing.T) {
	e := newEnv(t)
	submit := map[string]any{"audio_data": "b64", "transcription": "hello", "language": "en", "model": "base"}

	w := e.do(jsonRequest(http.MethodPost, "/api/submit_annotation", submit))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("without session status = %d", w.Code)
	}

	if w := e.do(httptest.NewRequest(http.MethodGet, "/asr/task?token=good", nil)); w.Code != http.StatusBadRequest {
		t.Errorf("missing task_id status = %d", w.Code)
	}
	if w := e.do(httptest.NewRequest(http.MethodGet, "/asr/task?token=bad&task_id=7", nil)); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d", w.Code)
	}

	w = e.do(httptest.NewRequest(http.MethodGet, "/asr/task?token=good&task_id=7", nil))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("hand-over = %d %s", w.Code, w.Header().Get("Location"))
	}
	cookies := w.Result().Cookies()

	w = e.do(jsonRequest(http.MethodPost, "/api/submit_annotation", map[string]any{"audio_data": "b64"}), cookies...)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing transcription status = %d", w.Code)
	}
	w = e.do(jsonRequest(http.MethodPost, "/api/submit_annotation", map[string]any{
		"audio_data": "b64", "transcription": "x", "model": "gigantic",
	}), cookies...)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown model status = %d", w.Code)
	}

	w = e.do(jsonRequest(http.MethodPost, "/api/submit_annotation", submit), cookies...)
	if w.Code != http.StatusOK {
		t.Fatalf("submit = %d %s", w.Code, w.Body)
	}
	if len(e.labeling.submitted) != 1 || e.labeling.submitted[0].TaskID != "7" {
		t.Errorf("submitted = %+v", e.labeling.submitted)
	}
	if body := decode(t, w); body["token"] != "good" {
		t.Errorf("session token not used: %v", body)
	}
	<-e.events.done

	e.labeling.err = errors.New("upstream down")
	w = e.do(jsonRequest(http.MethodPost, "/api/submit_annotation", submit), cookies...)
	if w.Code != http.StatusBadGateway {
		t.Errorf("failed submit status = %d", w.Code)
	}
}

func TestNewRequiresDeps(t *testing.T) {
	if _, err := api.New(api.Deps{}); err == nil {
		t.Error("empty deps accepted")
	}
}
