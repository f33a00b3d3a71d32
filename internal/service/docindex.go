package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"failureguard/internal/logger"
	"failureguard/internal/repository"

	"github.com/fsnotify/fsnotify"
)

// reindexDelay coalesces bursts of events from a single editor save.
const reindexDelay = 200 * time.Millisecond

// DocumentIndexService keeps the documents index in sync with the
// documents folder.
type DocumentIndexService struct {
	docs repository.DocumentRepo
	log  *logger.Logger
}

func NewDocumentIndexService(docs repository.DocumentRepo, log *logger.Logger) *DocumentIndexService {
	if log == nil {
		log = logger.Nop()
	}
	return &DocumentIndexService{docs: docs, log: log}
}

// Reindex rewrites the index from the folder contents and returns the
// number of documents indexed.
func (s *DocumentIndexService) Reindex() (int, error) {
	docs, err := s.docs.Scan()
	if err != nil {
		return 0, fmt.Errorf("scan documents: %w", err)
	}
	if err := s.docs.WriteIndex(docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Run indexes once, then reindexes after every change in the folder until
// ctx is canceled.
func (s *DocumentIndexService) Run(ctx context.Context) error {
	dir := s.docs.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create documents dir %q: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %q: %w", dir, err)
	}

	s.reindexAndLog()
	s.log.Infow("document_indexer_watching", "dir", dir)

	// armed by the first event; a stopped timer never delivers
	debounce := time.NewTimer(reindexDelay)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.log.Debugw("document_changed", "path", ev.Name, "op", ev.Op.String())
			debounce.Reset(reindexDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warnw("document_watcher_error", "err", err)
		case <-debounce.C:
			s.reindexAndLog()
		}
	}
}

func (s *DocumentIndexService) reindexAndLog() {
	n, err := s.Reindex()
	if err != nil {
		s.log.Errorw("document_reindex_failed", "err", err)
		return
	}
	s.log.Infow("document_reindexed", "documents", n)
}
