package extract

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/forgekit/forgekit/logger"
)

const copyBufferSize = 4096

// Manifest records which relative resource paths were materialized by an
// extraction run and which were skipped because they already existed.
type Manifest struct {
	extracted []string
	skipped   []string
	failed    []string
	set       map[string]bool
}

func newManifest() *Manifest {
	return &Manifest{set: make(map[string]bool)}
}

// Extracted returns the relative paths written by this run, sorted.
func (m *Manifest) Extracted() []string { return sorted(m.extracted) }

// Skipped returns the relative paths left untouched because a destination
// file already existed, sorted.
func (m *Manifest) Skipped() []string { return sorted(m.skipped) }

// Failed returns the relative paths whose extraction failed, sorted.
func (m *Manifest) Failed() []string { return sorted(m.failed) }

// Contains reports whether the relative path was materialized or already
// present after this run.
func (m *Manifest) Contains(rel string) bool { return m.set[rel] }

func sorted(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	sort.Strings(out)
	return out
}

// Extractor copies a logical resource tree into a destination directory.
type Extractor struct {
	log *logger.Logger
}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{log: logger.WithComponent("extract")}
}

// Extract walks src and copies each file to the same relative path under
// dst, creating directories as needed. Existing destination files are
// skipped. A failure to read a source entry or write a destination entry is
// logged and that entry is skipped; sibling entries still extract. The only
// hard errors are context cancellation and an unreadable tree root.
func (e *Extractor) Extract(ctx context.Context, src fs.FS, dst string) (*Manifest, error) {
	manifest := newManifest()

	walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			if path == "." {
				return err
			}
			e.log.Error("failed to read resource entry", logger.ErrorFields("extract", err))
			manifest.failed = append(manifest.failed, path)
			return nil
		}
		if path == "." {
			return nil
		}

		target := filepath.Join(dst, filepath.FromSlash(path))

		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				e.log.Error("failed to create directory", logger.Fields(
					logger.FieldPath, target,
					logger.FieldError, err.Error(),
				))
				manifest.failed = append(manifest.failed, path)
				return fs.SkipDir
			}
			return nil
		}

		if _, err := os.Stat(target); err == nil {
			// Never overwrite: the file may carry user edits.
			manifest.skipped = append(manifest.skipped, path)
			manifest.set[path] = true
			return nil
		}

		if err := e.copyFile(src, path, target); err != nil {
			e.log.Error("failed to extract resource", logger.Fields(
				logger.FieldPath, path,
				logger.FieldError, err.Error(),
			))
			manifest.failed = append(manifest.failed, path)
			return nil
		}

		manifest.extracted = append(manifest.extracted, path)
		manifest.set[path] = true
		return nil
	})

	if walkErr != nil {
		return manifest, walkErr
	}

	e.log.Info("resources extracted", logger.Fields(
		logger.FieldPath, dst,
		"extracted", len(manifest.extracted),
		"skipped", len(manifest.skipped),
		"failed", len(manifest.failed),
	))
	return manifest, nil
}

// copyFile streams one resource entry to its destination with bounded
// buffering.
func (e *Extractor) copyFile(src fs.FS, path, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	in, err := src.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		return err
	}
	return out.Close()
}
