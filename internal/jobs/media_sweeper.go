package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
	"github.com/inkpost/inkpost-backend/internal/media"
)

// MediaSweeper periodically removes files in the media directory that
// neither a post image nor a post preview references, cleaning up after
// failed uploads and crashed deletes.
type MediaSweeper struct {
	storage  *media.Storage
	posts    interfaces.Repository
	images   interfaces.Repository
	interval time.Duration
	logger   *zap.SugaredLogger
}

// NewMediaSweeper creates a sweeper running at the given interval
func NewMediaSweeper(storage *media.Storage, posts, images interfaces.Repository, interval time.Duration, logger *zap.SugaredLogger) *MediaSweeper {
	return &MediaSweeper{
		storage:  storage,
		posts:    posts,
		images:   images,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on a ticker until the context is cancelled
func (s *MediaSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Infow("media sweeper started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("media sweeper stopped")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Errorw("media sweep failed", "error", err)
			}
		}
	}
}

// Sweep removes every stored file no post image or post preview references
func (s *MediaSweeper) Sweep(ctx context.Context) error {
	files, err := s.storage.List()
	if err != nil {
		return err
	}

	images, err := s.images.FindMany(ctx, &interfaces.Query{})
	if err != nil {
		return err
	}
	posts, err := s.posts.FindMany(ctx, &interfaces.Query{})
	if err != nil {
		return err
	}

	referenced := make(map[string]struct{}, len(images.Data)+len(posts.Data))
	for _, record := range images.Data {
		if path, ok := record["path"].(string); ok {
			referenced[path] = struct{}{}
		}
	}
	for _, record := range posts.Data {
		if preview, ok := record["preview"].(string); ok && preview != "" {
			referenced[preview] = struct{}{}
		}
	}

	var removed int
	for _, file := range files {
		if _, ok := referenced[file]; ok {
			continue
		}
		if err := s.storage.Remove(file); err != nil {
			s.logger.Warnw("failed to remove orphaned file", "path", file, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Infow("media sweep complete", "removed", removed)
	}
	return nil
}
