package repository

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/karlseguin/ccache/v3"
	log "github.com/sirupsen/logrus"

	"staybnb/internal/db"
)

// SearchCache stores search results in two levels: an in-process LRU in front of
// memcached.
type SearchCache interface {
	Get(query string, viewerID int) ([]db.Property, bool)
	Set(query string, viewerID int, properties []db.Property)
	Invalidate()
}

// generationKey holds the shared generation that every cache key embeds. Bumping
// it in memcached invalidates the results of every instance at once.
const generationKey = "search:generation"

// memcacheClient is the part of *memcache.Client the cache uses.
type memcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Add(item *memcache.Item) error
	Increment(key string, delta uint64) (uint64, error)
}

type searchCache struct {
	local  *ccache.Cache[[]db.Property]
	remote memcacheClient
	ttl    time.Duration
	// fallback generation for when memcached is absent or unreachable
	generation atomic.Uint64
}

// NewSearchCache builds the cache. An empty memcachedHost keeps it process-local.
func NewSearchCache(memcachedHost string, ttl time.Duration) SearchCache {
	var remote memcacheClient
	if memcachedHost != "" {
		mc := memcache.New(memcachedHost)
		mc.Timeout = 200 * time.Millisecond
		remote = mc
		log.WithField("host", memcachedHost).Info("search cache backed by memcached")
	}
	return newSearchCache(remote, ttl)
}

func newSearchCache(remote memcacheClient, ttl time.Duration) *searchCache {
	return &searchCache{
		local:  ccache.New(ccache.Configure[[]db.Property]().MaxSize(1000)),
		remote: remote,
		ttl:    ttl,
	}
}

// currentGeneration reads the shared generation, seeding it when memcached has none.
// The seed is a timestamp so a lost counter never comes back to an old value.
func (c *searchCache) currentGeneration() string {
	local := "l" + strconv.FormatUint(c.generation.Load(), 10)
	if c.remote == nil {
		return local
	}
	item, err := c.remote.Get(generationKey)
	if err == nil {
		return string(item.Value)
	}
	if !errors.Is(err, memcache.ErrCacheMiss) {
		log.WithError(err).Warn("memcached generation lookup failed")
		return local
	}
	seed := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	err = c.remote.Add(&memcache.Item{Key: generationKey, Value: seed})
	switch {
	case err == nil:
		return string(seed)
	case errors.Is(err, memcache.ErrNotStored):
		// another instance seeded it first
		if item, err := c.remote.Get(generationKey); err == nil {
			return string(item.Value)
		}
	default:
		log.WithError(err).Warn("memcached generation seed failed")
	}
	return local
}

// key hashes the query because memcached keys are limited to 250 bytes without spaces.
func (c *searchCache) key(query string, viewerID int) string {
	sum := sha1.Sum([]byte(query + "|" + strconv.Itoa(viewerID) + "|" + c.currentGeneration()))
	return "search:" + hex.EncodeToString(sum[:])
}

func (c *searchCache) Get(query string, viewerID int) ([]db.Property, bool) {
	key := c.key(query, viewerID)
	if item := c.local.Get(key); item != nil && !item.Expired() {
		return item.Value(), true
	}
	if c.remote == nil {
		return nil, false
	}

	item, err := c.remote.Get(key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			log.WithError(err).Warn("memcached get failed")
		}
		return nil, false
	}
	var properties []db.Property
	if err := json.Unmarshal(item.Value, &properties); err != nil {
		log.WithError(err).Warn("discarding undecodable cache entry")
		return nil, false
	}
	c.local.Set(key, properties, c.ttl)
	return properties, true
}

func (c *searchCache) Set(query string, viewerID int, properties []db.Property) {
	key := c.key(query, viewerID)
	c.local.Set(key, properties, c.ttl)
	if c.remote == nil {
		return
	}

	data, err := json.Marshal(properties)
	if err != nil {
		log.WithError(err).Warn("could not encode search results for memcached")
		return
	}
	if err := c.remote.Set(&memcache.Item{Key: key, Value: data, Expiration: int32(c.ttl.Seconds())}); err != nil {
		log.WithError(err).Warn("memcached set failed")
	}
}

// Invalidate drops every cached result on every instance. Remote entries become
// unreachable because the generation is part of the key, and expire on their own.
func (c *searchCache) Invalidate() {
	c.generation.Add(1)
	c.local.Clear()
	if c.remote == nil {
		return
	}
	_, err := c.remote.Increment(generationKey, 1)
	if errors.Is(err, memcache.ErrCacheMiss) {
		// reseeding with a fresh timestamp is as good as a bump
		err = c.remote.Set(&memcache.Item{Key: generationKey, Value: []byte(strconv.FormatInt(time.Now().UnixNano(), 10))})
	}
	if err != nil {
		log.WithError(err).Warn("memcached generation bump failed")
	}
}
