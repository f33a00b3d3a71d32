package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"failureguard/internal/models"
	"failureguard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReindex_WritesScannedDocuments(t *testing.T) {
	repo := &documentRepoStub{scanned: []models.Document{{Path: "documents/a.txt", Content: "A"}}}
	n, err := NewDocumentIndexService(repo, nil).Reindex()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, repo.written, 1)
	assert.Equal(t, "A", repo.written[0][0].Content)
}

func TestReindex_ScanFailure(t *testing.T) {
	_, err := NewDocumentIndexService(&documentRepoStub{}, nil).Reindex()
	assert.Error(t, err)
}

func TestDocumentIndexRun_PicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	docsDir := filepath.Join(dir, "documents")
	indexPath := filepath.Join(dir, "data", "documents_index.jsonl")
	repo := repository.NewDocumentFS(indexPath, docsDir)
	svc := NewDocumentIndexService(repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	// Run creates the folder before watching
	require.Eventually(t, func() bool {
		_, err := os.Stat(docsDir)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(docsDir, "pump.txt"), []byte("pump notes"), 0o644)
		index, err := os.ReadFile(indexPath)
		return err == nil && strings.Contains(string(index), `"content":"pump notes"`)
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("indexer did not stop")
	}
}
