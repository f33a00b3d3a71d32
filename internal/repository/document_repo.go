package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"failureguard/internal/models"
)

// DocumentExt is the only file type picked up from the documents folder.
const DocumentExt = ".txt"

// DocumentFS reads the maintenance document corpus. The newline-JSON index
// written by the document indexer is preferred; the raw folder is the fallback.
type DocumentFS struct {
	indexPath string
	dir       string
}

func NewDocumentFS(indexPath, dir string) *DocumentFS {
	return &DocumentFS{indexPath: indexPath, dir: dir}
}

// Dir is the watched documents folder.
func (r *DocumentFS) Dir() string { return r.dir }

// Load returns document contents keyed by base filename.
func (r *DocumentFS) Load(ctx context.Context) (map[string]string, error) {
	docs, err := r.loadIndex()
	if err == nil && len(docs) > 0 {
		return docs, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.loadDir()
}

// loadIndex reads the index file. Lines that fail to decode or lack a path
// or content are skipped; later lines for the same file win.
func (r *DocumentFS) loadIndex() (map[string]string, error) {
	f, err := os.Open(r.indexPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	docs := map[string]string{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxIndexLine)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var d models.Document
		if err := json.Unmarshal(line, &d); err != nil {
			continue
		}
		if d.Path == "" || d.Content == "" {
			continue
		}
		docs[filepath.Base(d.Path)] = d.Content
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read documents index %q: %w", r.indexPath, err)
	}
	return docs, nil
}

const maxIndexLine = 16 << 20

// loadDir reads every *.txt file in the documents folder. A missing folder
// is an empty corpus.
func (r *DocumentFS) loadDir() (map[string]string, error) {
	docs := map[string]string{}
	list, err := r.Scan()
	if err != nil {
		return docs, nil
	}
	for _, d := range list {
		docs[filepath.Base(d.Path)] = d.Content
	}
	return docs, nil
}

// Scan reads the documents folder into index records sorted by path.
// Invalid UTF-8 sequences are dropped from the content.
func (r *DocumentFS) Scan() ([]models.Document, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}
	out := make([]models.Document, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), DocumentExt) {
			continue
		}
		p := filepath.Join(r.dir, e.Name())
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		out = append(out, models.Document{
			Path:    p,
			Content: strings.ToValidUTF8(string(b), ""),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// WriteIndex replaces the index with docs, one JSON object per line.
// The file is written to a temp name and renamed so readers never see a
// half-written index.
func (r *DocumentFS) WriteIndex(docs []models.Document) error {
	dir := filepath.Dir(r.indexPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir %q: %w", dir, err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode document %q: %w", d.Path, err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".documents_index-*")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp index: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.indexPath); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace documents index: %w", err)
	}
	return nil
}
