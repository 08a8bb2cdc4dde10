package local_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kbukum/whisperdesk/logger"
	"github.com/kbukum/whisperdesk/storage"
	"github.com/kbukum/whisperdesk/storage/local"
)

func newStorage(t *testing.T) *local.Storage {
	t.Helper()
	s, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestUploadDownloadRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	if err := s.Upload(ctx, "annotations/a.json", strings.NewReader(`{"segments":[]}`)); err != nil {
		t.Fatal(err)
	}
	rc, err := s.Download(ctx, "annotations/a.json")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != `{"segments":[]}` {
		t.Errorf("data = %q", data)
	}

	ok, err := s.Exists(ctx, "annotations/a.json")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}
}

func TestDownloadMissing(t *testing.T) {
	_, err := newStorage(t).Download(context.Background(), "annotations/none.json")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPathsCannotEscapeBase(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	if err := s.Upload(ctx, "../../escape.json", strings.NewReader("x")); err != nil {
		t.Fatalf("traversal should be confined, got %v", err)
	}
	files, _ := s.List(ctx, "")
	if len(files) != 1 || files[0].Path != "escape.json" {
		t.Errorf("file was not confined to base: %+v", files)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	_ = s.Upload(ctx, "x.json", strings.NewReader("x"))
	for i := 0; i < 2; i++ {
		if err := s.Delete(ctx, "x.json"); err != nil {
			t.Fatalf("delete %d: %v", i, err)
		}
	}
	if ok, _ := s.Exists(ctx, "x.json"); ok {
		t.Error("object still exists")
	}
}

func TestListPrefixSorted(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	for _, p := range []string{"annotations/b.json", "annotations/a.json", "other/c.json"} {
		_ = s.Upload(ctx, p, strings.NewReader("{}"))
	}
	files, err := s.List(ctx, "annotations/")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0].Path != "annotations/a.json" || files[1].Path != "annotations/b.json" {
		t.Errorf("files = %+v", files)
	}
	if files[0].ContentType != "application/json" {
		t.Errorf("content type = %q", files[0].ContentType)
	}
}

func TestFactoryRegistered(t *testing.T) {
	cfg := storage.Config{Provider: storage.ProviderLocal, Local: storage.LocalConfig{BasePath: t.TempDir()}}
	s, err := storage.New(context.Background(), cfg, logger.Get("test"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*local.Storage); !ok {
		t.Errorf("expected *local.Storage, got %T", s)
	}
}
