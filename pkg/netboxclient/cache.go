package netboxclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

// cacheEnvelope is the on-disk shape for one class's cache file. It round
// trips (id, last_updated, all model fields) losslessly by
// simply persisting the full decoded JSON object NetBox returned.
type cacheEnvelope struct {
	Entries []map[string]any `json:"entries"`
}

// Cache is the per-class on-disk snapshot store.
type Cache struct {
	dir string
}

// NewCache returns a Cache rooted at dir, creating it if necessary.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) classFile(def *objects.ClassDef) string {
	safe := strings.ReplaceAll(string(def.Tag), ".", "_")
	return filepath.Join(c.dir, safe+".json")
}

func (c *Cache) versionFile() string {
	return filepath.Join(c.dir, "cached_version")
}

// CachedVersion returns the API version the on-disk snapshot was built
// against, or "" if no cache exists yet.
func (c *Cache) CachedVersion() string {
	b, err := os.ReadFile(c.versionFile())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// Invalidate removes every class cache file and the version marker — used
// when the discovered API version no longer matches CachedVersion.
func (c *Cache) Invalidate() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) load(def *objects.ClassDef) ([]map[string]any, error) {
	b, err := os.ReadFile(c.classFile(def))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var env cacheEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decoding cache for %s: %w", def.Tag, err)
	}
	return env.Entries, nil
}

func (c *Cache) save(def *objects.ClassDef, entries []map[string]any) error {
	b, err := json.Marshal(cacheEnvelope{Entries: entries})
	if err != nil {
		return fmt.Errorf("encoding cache for %s: %w", def.Tag, err)
	}
	return os.WriteFile(c.classFile(def), b, 0o640)
}

// WriteVersion records the current API version as the one the cache now
// matches — the last step of a successful full load
func (c *Cache) WriteVersion(apiVersion string) error {
	return os.WriteFile(c.versionFile(), []byte(apiVersion), 0o640)
}

// LoadCurrent implements the on-disk cache protocol for one class: load the
// cached snapshot, find the max last_updated, issue a brief id-only GET to
// detect server-side deletions and a delta GET for everything changed
// since, and reconcile. Classes without a last_updated field bypass delta
// reconciliation and are fetched in full, as does every class when cache
// is nil (caching disabled). The cache is rewritten on success.
func (c *Client) LoadCurrent(ctx context.Context, cache *Cache, def *objects.ClassDef) ([]map[string]any, error) {
	if cache == nil || !def.HasLastUpdated {
		fresh, err := c.List(ctx, def, url.Values{})
		if err != nil {
			return nil, err
		}
		if cache != nil {
			if err := cache.save(def, fresh); err != nil {
				return nil, err
			}
		}
		return fresh, nil
	}

	cached, err := cache.load(def)
	if err != nil {
		return nil, err
	}

	maxUpdated := ""
	for _, entry := range cached {
		if lu, _ := entry["last_updated"].(string); lu > maxUpdated {
			maxUpdated = lu
		}
	}

	idParams := url.Values{"brief": {"1"}, "fields": {"id"}}
	liveIDs, err := c.List(ctx, def, idParams)
	if err != nil {
		return nil, err
	}
	stillExists := make(map[int]bool, len(liveIDs))
	for _, e := range liveIDs {
		stillExists[toInt(e["id"])] = true
	}

	var delta []map[string]any
	if maxUpdated != "" {
		delta, err = c.List(ctx, def, url.Values{"last_updated__gte": {maxUpdated}})
	} else {
		delta, err = c.List(ctx, def, url.Values{})
	}
	if err != nil {
		return nil, err
	}
	deltaIDs := make(map[int]bool, len(delta))
	for _, e := range delta {
		deltaIDs[toInt(e["id"])] = true
	}

	reconciled := make([]map[string]any, 0, len(cached)+len(delta))
	for _, e := range cached {
		id := toInt(e["id"])
		if stillExists[id] && !deltaIDs[id] {
			reconciled = append(reconciled, e)
		}
	}
	reconciled = append(reconciled, delta...)

	if err := cache.save(def, reconciled); err != nil {
		return nil, err
	}
	return reconciled, nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}
