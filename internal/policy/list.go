// Package policy maintains the set of tenants the proxy refuses to route.
// The set lives in a small YAML file that can be edited while the proxy is
// running; the watcher picks up changes without a restart.
package policy

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// document is the on-disk policy format.
type document struct {
	BlockedTenants []string `yaml:"blocked_tenants"`
}

// List holds the blocked tenant set. It is safe for concurrent use; Load
// replaces the whole set atomically.
type List struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	blocked  map[string]struct{}
	loadedAt time.Time
}

// NewList returns an empty list backed by the given file. An empty path
// means no policy file is configured and nothing is ever blocked.
func NewList(path string, logger *slog.Logger) *List {
	if logger == nil {
		logger = slog.Default()
	}
	return &List{
		path:    path,
		logger:  logger.With("component", "policy"),
		blocked: map[string]struct{}{},
	}
}

// Load reads the policy file and replaces the blocked set. A missing file
// clears the set, so deleting the file unblocks everyone.
func (l *List) Load() error {
	if l.path == "" {
		return nil
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.replace(nil)
			return nil
		}
		return fmt.Errorf("read policy file: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse policy file: %w", err)
	}
	l.replace(doc.BlockedTenants)
	return nil
}

func (l *List) replace(tenants []string) {
	next := make(map[string]struct{}, len(tenants))
	for _, t := range tenants {
		// Entries may be written with or without the trailing dot of the
		// extracted prefix; store the bare tenant name.
		t = strings.ToLower(strings.TrimSpace(t))
		t = strings.TrimSuffix(t, ".")
		if t == "" {
			continue
		}
		next[t] = struct{}{}
	}
	l.mu.Lock()
	l.blocked = next
	l.loadedAt = time.Now()
	l.mu.Unlock()
}

// Blocked reports whether tenant is on the list. Matching ignores case
// because DNS names do.
func (l *List) Blocked(tenant string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.blocked[strings.TrimSuffix(strings.ToLower(tenant), ".")]
	return ok
}

// Count returns the number of blocked tenants.
func (l *List) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blocked)
}

// Info describes the list for the admin API.
type Info struct {
	Path           string    `json:"path,omitempty"`
	BlockedTenants []string  `json:"blocked_tenants"`
	LoadedAt       time.Time `json:"loaded_at"`
}

// Snapshot returns the current list contents with the tenants sorted.
func (l *List) Snapshot() Info {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tenants := make([]string, 0, len(l.blocked))
	for t := range l.blocked {
		tenants = append(tenants, t)
	}
	sort.Strings(tenants)
	return Info{Path: l.path, BlockedTenants: tenants, LoadedAt: l.loadedAt}
}
