package extract

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestExtractMaterializesTree(t *testing.T) {
	src := fstest.MapFS{
		"forgekit.properties": {Data: []byte("web.sitename = demo\n")},
		"scripts/commit.sh":   {Data: []byte("#!/bin/sh\n")},
		"certs/README":        {Data: []byte("certificates live here\n")},
	}
	dst := t.TempDir()

	m, err := New().Extract(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(m.Extracted()) != 3 {
		t.Errorf("expected 3 extracted entries, got %v", m.Extracted())
	}
	data, err := os.ReadFile(filepath.Join(dst, "scripts", "commit.sh"))
	if err != nil {
		t.Fatalf("expected nested file to exist: %v", err)
	}
	if string(data) != "#!/bin/sh\n" {
		t.Errorf("unexpected content: %q", data)
	}
	if !m.Contains("certs/README") {
		t.Error("manifest should contain certs/README")
	}
}

func TestExtractNeverOverwrites(t *testing.T) {
	dst := t.TempDir()
	ctx := context.Background()

	first := fstest.MapFS{
		"forgekit.properties": {Data: []byte("original")},
	}
	if _, err := New().Extract(ctx, first, dst); err != nil {
		t.Fatalf("first Extract failed: %v", err)
	}

	// Second run with different logical content must not touch the file.
	second := fstest.MapFS{
		"forgekit.properties": {Data: []byte("changed")},
	}
	m, err := New().Extract(ctx, second, dst)
	if err != nil {
		t.Fatalf("second Extract failed: %v", err)
	}

	if len(m.Extracted()) != 0 {
		t.Errorf("expected nothing extracted, got %v", m.Extracted())
	}
	if len(m.Skipped()) != 1 {
		t.Errorf("expected 1 skipped entry, got %v", m.Skipped())
	}
	data, _ := os.ReadFile(filepath.Join(dst, "forgekit.properties"))
	if string(data) != "original" {
		t.Errorf("file was overwritten: %q", data)
	}
}

// failingFS wraps an fs.FS and fails Open for one path.
type failingFS struct {
	fs.FS
	fail string
}

func (f *failingFS) Open(name string) (fs.File, error) {
	if name == f.fail {
		return nil, errors.New("unreadable resource")
	}
	return f.FS.Open(name)
}

func TestExtractPartialFailureTolerance(t *testing.T) {
	dst := t.TempDir()

	src := &failingFS{
		FS: fstest.MapFS{
			"broken.txt": {Data: []byte("never read")},
			"ok.txt":     {Data: []byte("fine")},
		},
		fail: "broken.txt",
	}
	m, err := New().Extract(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("Extract must tolerate per-entry failures: %v", err)
	}

	if len(m.Extracted()) != 1 || m.Extracted()[0] != "ok.txt" {
		t.Errorf("expected ok.txt extracted, got %v", m.Extracted())
	}
	if len(m.Failed()) != 1 || m.Failed()[0] != "broken.txt" {
		t.Errorf("expected broken.txt failed, got %v", m.Failed())
	}
	if _, err := os.Stat(filepath.Join(dst, "ok.txt")); err != nil {
		t.Errorf("sibling entry must still extract: %v", err)
	}
}

func TestExtractCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := fstest.MapFS{"a.txt": {Data: []byte("x")}}
	if _, err := New().Extract(ctx, src, t.TempDir()); err == nil {
		t.Error("expected error for canceled context")
	}
}
