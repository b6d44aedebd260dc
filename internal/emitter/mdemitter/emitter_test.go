package mdemitter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/openapi2md/internal/markdown"
)

func sampleDoc() *markdown.Document {
	return &markdown.Document{
		Summary: "# 概要\n\nAPI|概説|パラメータ\n:---|:---|:---\nGET /hello|Hello|(なし)\n",
		Detail:  "\n# 詳細\n\n\n## GET /hello\n\nHello\n\n",
	}
}

func TestEmit_DryRun_Plan(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "docs")

	res, err := Emit(context.Background(), sampleDoc(), Options{OutDir: dir, Split: true, DryRun: true})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(res.Planned) != 2 || res.Planned[0].RelPath != "detail.md" || res.Planned[1].RelPath != "summary.md" {
		t.Fatalf("unexpected plan: %+v", res.Planned)
	}
	if res.Planned[1].Size != len(sampleDoc().Summary) {
		t.Fatalf("size mismatch: %d", res.Planned[1].Size)
	}
	if _, err := os.Stat(dir); err == nil {
		t.Fatalf("dry-run must not create the output directory")
	}
}

func TestEmit_WritesReadme(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	doc := sampleDoc()

	res, err := Emit(context.Background(), doc, Options{OutDir: dir})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(res.Planned) != 1 || res.Planned[0].RelPath != "README.md" {
		t.Fatalf("unexpected plan: %+v", res.Planned)
	}
	b, err := os.ReadFile(filepath.Join(dir, "README.md"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != doc.String() {
		t.Fatalf("README.md content mismatch:\n%s", b)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only README.md, temp files left behind: %v", entries)
	}
}

func TestEmit_SplitSkipsEmptySections(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	doc := &markdown.Document{Summary: "# Overview\n"}

	res, err := Emit(context.Background(), doc, Options{OutDir: dir, Split: true})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(res.Planned) != 1 || res.Planned[0].RelPath != "summary.md" {
		t.Fatalf("unexpected plan: %+v", res.Planned)
	}
	if _, err := os.Stat(filepath.Join(dir, "detail.md")); err == nil {
		t.Fatalf("detail.md should not be written for an empty section")
	}

	if _, err := Emit(context.Background(), &markdown.Document{}, Options{OutDir: dir, Split: true}); err == nil {
		t.Fatalf("expected error when nothing is left to write")
	}
}

func TestEmit_RefusesOverwriteWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	existing := filepath.Join(dir, "README.md")
	if err := os.WriteFile(existing, []byte("keep me"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	_, err := Emit(context.Background(), sampleDoc(), Options{OutDir: dir})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
	if b, _ := os.ReadFile(existing); string(b) != "keep me" {
		t.Fatalf("existing file was modified")
	}

	if _, err := Emit(context.Background(), sampleDoc(), Options{OutDir: dir, Force: true}); err != nil {
		t.Fatalf("emit with force: %v", err)
	}
	if b, _ := os.ReadFile(existing); string(b) != sampleDoc().String() {
		t.Fatalf("expected README.md to be replaced")
	}
}

func TestEmit_InvalidArguments(t *testing.T) {
	t.Parallel()
	if _, err := Emit(context.Background(), nil, Options{OutDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error for nil document")
	}
	if _, err := Emit(context.Background(), sampleDoc(), Options{}); err == nil {
		t.Fatalf("expected error for missing OutDir")
	}
}

func TestEmit_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Emit(ctx, sampleDoc(), Options{OutDir: t.TempDir()}); err == nil {
		t.Fatalf("expected context error")
	}
}
