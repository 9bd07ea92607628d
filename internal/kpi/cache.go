package kpi

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	gocache "github.com/patrickmn/go-cache"

	"github.com/rileyhilliard/kpiwatch/internal/errors"
	"github.com/rileyhilliard/kpiwatch/internal/logger"
)

// SnapshotKey is the single cache slot holding the last good payload.
const SnapshotKey = "kpiData"

// SessionCache keeps the last successful payload for the life of the
// process. Entries never expire. Failures are logged, never returned.
type SessionCache struct {
	store *gocache.Cache
	log   logger.Logger
	tel   *Telemetry
}

// NewSessionCache creates an empty cache.
func NewSessionCache(log logger.Logger, tel *Telemetry) *SessionCache {
	if log == nil {
		log = logger.Noop()
	}
	return &SessionCache{
		store: gocache.New(gocache.NoExpiration, 0),
		log:   log,
		tel:   tel,
	}
}

// Write stores p as JSON. A payload that can't be encoded leaves the
// previous entry in place.
func (c *SessionCache) Write(p *MetricsPayload) {
	if p == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		c.log.Warn("%s", describe(errors.WrapWithCode(err, errors.ErrCache, "cache write failed", "")))
		c.tel.CacheOp("write", "error")
		return
	}
	c.store.Set(SnapshotKey, data, gocache.NoExpiration)
	c.tel.CacheOp("write", "success")
}

// Read returns the cached payload. A corrupt entry is logged, dropped, and
// reported as a miss.
func (c *SessionCache) Read() (*MetricsPayload, bool) {
	v, ok := c.store.Get(SnapshotKey)
	if !ok {
		c.tel.CacheOp("read", "miss")
		return nil, false
	}

	p, err := decodeEntry(v)
	if err != nil {
		c.log.Warn("%s", describe(err))
		c.store.Delete(SnapshotKey)
		c.tel.CacheOp("read", "corrupt")
		return nil, false
	}

	c.tel.CacheOp("read", "hit")
	return p, true
}

// decodeEntry turns a stored value back into a payload. Failures carry
// ErrCache.
func decodeEntry(v interface{}) (*MetricsPayload, error) {
	data, ok := v.([]byte)
	if !ok {
		return nil, errors.New(errors.ErrCache,
			fmt.Sprintf("discarding corrupt cache entry: unexpected type %T", v), "")
	}
	p, appErr, err := decodePayload(data)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCache, "discarding corrupt cache entry", "")
	}
	if appErr != "" {
		return nil, errors.New(errors.ErrCache,
			fmt.Sprintf("discarding corrupt cache entry: holds a server error %q", appErr), "")
	}
	return p, nil
}

// Clear removes the cached payload.
func (c *SessionCache) Clear() {
	c.store.Delete(SnapshotKey)
}

// describe flattens a structured error into one log line.
func describe(err error) string {
	msg := errors.MessageOf(err)
	if cause := stderrors.Unwrap(err); cause != nil {
		msg += ": " + cause.Error()
	}
	return fmt.Sprintf("[%s] %s", errors.CodeOf(err), msg)
}
