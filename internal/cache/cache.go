// Package cache persists small state snapshots as namespaced JSON blobs on
// disk. Snapshots only rehydrate state across restarts; the system of record
// stays authoritative and overwrites them on the next resync.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrMiss is returned when no snapshot exists for a namespace/key pair.
var ErrMiss = errors.New("cache: miss")

// Cache writes one JSON file per namespace/key under a base directory.
// A nil *Cache is valid and drops every write.
type Cache struct {
	dir string
}

func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Save marshals v into <dir>/<namespace>/<key>.json.
func (c *Cache) Save(namespace, key string, v any) error {
	if c == nil {
		return nil
	}
	dir := filepath.Join(c.dir, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, key+".json"), data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load unmarshals the snapshot into v, or returns ErrMiss.
func (c *Cache) Load(namespace, key string, v any) error {
	if c == nil {
		return ErrMiss
	}
	data, err := os.ReadFile(filepath.Join(c.dir, namespace, key+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrMiss
		}
		return fmt.Errorf("read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		// a corrupt snapshot is as good as no snapshot
		return ErrMiss
	}
	return nil
}

// Delete removes a snapshot. Missing files are not an error.
func (c *Cache) Delete(namespace, key string) error {
	if c == nil {
		return nil
	}
	err := os.Remove(filepath.Join(c.dir, namespace, key+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
