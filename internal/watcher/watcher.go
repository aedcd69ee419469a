// Package watcher ingests transcript files dropped into a local directory,
// running the same pipeline as the upload endpoint. The meeting identifier
// is the file name without its extension.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"meetquiz/internal/logger"
	"meetquiz/internal/service"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleDelay gives the writer time to finish before the file is read.
const settleDelay = 500 * time.Millisecond

// TranscriptWatcher monitors a directory for new .vtt files.
type TranscriptWatcher struct {
	dir     string
	service service.QuizService
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// New creates a watcher over dir. Call Start to begin processing.
func New(dir string, svc service.QuizService) (*TranscriptWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return &TranscriptWatcher{
		dir:     dir,
		service: svc,
		watcher: fsw,
	}, nil
}

// Start blocks processing events until ctx is cancelled or the watcher is
// closed.
func (w *TranscriptWatcher) Start(ctx context.Context) error {
	log := logger.Get()
	log.Info("Transcript watcher started", zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			log.Info("Transcript watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.wg.Wait()
				return nil
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isTranscriptFile(event.Name) {
				log.Debug("Ignoring non-transcript file", zap.String("path", event.Name))
				continue
			}

			log.Info("New transcript detected", zap.String("path", event.Name))
			w.wg.Add(1)
			go func(path string) {
				defer w.wg.Done()
				time.Sleep(settleDelay)

				meetingID := meetingIDFromPath(path)
				if err := w.service.IngestTranscriptFile(ctx, meetingID, path); err != nil {
					log.Error("Failed to ingest watched transcript",
						zap.String("path", path),
						zap.String("meeting_id", meetingID),
						zap.Error(err),
					)
				}
			}(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.wg.Wait()
				return nil
			}
			log.Error("Watcher error", zap.Error(err))
		}
	}
}

// Stop closes the underlying file watcher.
func (w *TranscriptWatcher) Stop() error {
	return w.watcher.Close()
}

func isTranscriptFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".vtt")
}

func meetingIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
