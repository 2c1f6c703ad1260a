package service

import (
	"context"
	"time"
)

const captureTimeout = 60 * time.Second

// EnsureScreenshot captures the social card for slug in the background
// unless one is already stored. It does nothing when screenshots are not
// configured.
func (s *GenreService) EnsureScreenshot(slug string) {
	s.scheduleCapture(slug, true)
}

// scheduleCapture starts a background capture. With checkFirst, a stored
// image short-circuits the capture; a failed check still captures.
func (s *GenreService) scheduleCapture(slug string, checkFirst bool) {
	if s.shots == nil || !s.shots.Enabled() {
		return
	}
	if _, busy := s.pending.LoadOrStore(slug, struct{}{}); busy {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.pending.Delete(slug)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.pending.Delete(slug)

		ctx, cancel := context.WithTimeout(s.bgCtx, captureTimeout)
		defer cancel()

		if checkFirst {
			exists, err := s.shots.Exists(ctx, slug)
			if err != nil {
				s.logger.Warn("screenshot check failed, capturing anyway", "slug", slug, "error", err)
			} else if exists {
				s.logger.Debug("screenshot already stored", "slug", slug)
				return
			}
		}

		result, err := s.shots.Capture(ctx, slug)
		if err != nil {
			s.logger.Error("screenshot capture failed", "slug", slug, "error", err)
			return
		}
		s.logger.Info("screenshot requested", "slug", slug, "job_id", result.JobID, "status", result.Status)
	}()
}

// Shutdown stops accepting screenshot jobs and waits for in-flight ones.
// If ctx expires first the remaining jobs are canceled.
func (s *GenreService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.bgCancel()
		return nil
	case <-ctx.Done():
		s.bgCancel()
		<-done
		return ctx.Err()
	}
}
