package mdemitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/openapi2md/internal/markdown"
)

// Options controls where and how the markdown files are written.
type Options struct {
	OutDir string // required; target directory
	// Split writes summary.md and detail.md instead of a single README.md.
	Split  bool
	Force  bool // overwrite existing files
	DryRun bool // don't write, only plan
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files.
type Result struct {
	Planned []PlannedFile
}

// Emit writes the rendered document into opts.OutDir.
func Emit(ctx context.Context, doc *markdown.Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("mdemitter: nil Document")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("mdemitter: OutDir is required")
	}

	files := map[string][]byte{}
	if opts.Split {
		if doc.Summary != "" {
			files["summary.md"] = []byte(doc.Summary)
		}
		if doc.Detail != "" {
			files["detail.md"] = []byte(doc.Detail)
		}
	} else {
		files["README.md"] = []byte(doc.String())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("mdemitter: nothing to write")
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
	}

	if !opts.DryRun {
		if err := writeFiles(ctx, opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}
	return &Result{Planned: planned}, nil
}

func writeFiles(ctx context.Context, outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if !force {
		for rel := range files {
			if _, err := os.Stat(filepath.Join(abs, rel)); err == nil {
				return fmt.Errorf("mdemitter: output file %q already exists in output directory (use --force to overwrite)", filepath.Join(abs, rel))
			}
		}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	for rel, content := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := filepath.Join(abs, rel)
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}
