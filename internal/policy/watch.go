package policy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"tenantgate/internal/metrics"
)

const (
	// debounceDelay coalesces the event bursts editors and atomic renames
	// produce into one reload.
	debounceDelay = 200 * time.Millisecond

	maxWatcherBackoff = time.Minute
)

var errWatcherClosed = errors.New("watcher channel closed")

// Watch reloads the list whenever the policy file changes and blocks until
// ctx is cancelled. A failed watcher is restarted with backoff rather than
// taking the proxy down with it.
func (l *List) Watch(ctx context.Context) error {
	if l.path == "" {
		<-ctx.Done()
		return nil
	}
	attempt := 0
	for {
		if ctx.Err() != nil {
			return nil
		}
		attempt++
		if attempt > 1 {
			metrics.PolicyWatcherRestarts.Inc()
			l.logger.Info("restarting policy watcher", "attempt", attempt)
		}
		err := l.watch(ctx)
		if ctx.Err() != nil {
			return nil
		}
		backoff := watcherBackoff(attempt)
		l.logger.Error("policy watcher stopped", "error", err, "retry_in", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil
		}
	}
}

// watch runs one watcher lifetime. The directory is watched rather than the
// file itself so atomic renames and editors that replace the file keep being
// seen.
func (l *List) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(l.path)
	base := filepath.Base(l.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	l.logger.Info("watching policy file", "path", l.path)

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errWatcherClosed
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			reload = time.After(debounceDelay)
		case <-reload:
			reload = nil
			if err := l.Load(); err != nil {
				metrics.PolicyReloadErrors.Inc()
				l.logger.Error("policy reload failed", "error", err)
				continue
			}
			metrics.PolicyReloads.Inc()
			l.logger.Info("policy reloaded", "blocked", l.Count())
		case err, ok := <-watcher.Errors:
			if !ok {
				return errWatcherClosed
			}
			l.logger.Warn("policy watcher error", "error", err)
		}
	}
}

func watcherBackoff(attempt int) time.Duration {
	d := time.Second << (attempt - 1)
	if d <= 0 || d > maxWatcherBackoff {
		return maxWatcherBackoff
	}
	return d
}
