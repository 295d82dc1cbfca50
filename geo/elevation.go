package geo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ElevationClient looks up terrain elevation for coordinates via the
// Open-Elevation API.
type ElevationClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewElevationClient creates an Open-Elevation lookup client.
func NewElevationClient(baseURL string, timeout time.Duration) *ElevationClient {
	return &ElevationClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Lookup returns the elevation in meters for the given coordinates.
func (c *ElevationClient) Lookup(ctx context.Context, lat, lon float64) (float64, error) {
	reqBody, err := json.Marshal(elevationRequest{
		Locations: []elevationLocation{{Latitude: lat, Longitude: lon}},
	})
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	u := c.baseURL + "/api/v1/lookup"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(reqBody))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("elevation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("open-elevation API error: status %d: %s", resp.StatusCode, body)
	}

	var er elevationResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if len(er.Results) == 0 {
		return 0, fmt.Errorf("open-elevation returned no results")
	}
	return er.Results[0].Elevation, nil
}

type elevationRequest struct {
	Locations []elevationLocation `json:"locations"`
}

type elevationLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type elevationResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

// CachedElevationClient wraps an elevation lookup with a small LRU
// cache keyed on rounded coordinates. Nearby submissions at the same
// range then cost one upstream call.
type CachedElevationClient struct {
	inner interface {
		Lookup(ctx context.Context, lat, lon float64) (float64, error)
	}
	cache *lruCache
}

// NewCachedElevationClient creates a cache decorator around an
// elevation client.
func NewCachedElevationClient(inner *ElevationClient, maxEntries int) *CachedElevationClient {
	return &CachedElevationClient{inner: inner, cache: newLRUCache(maxEntries)}
}

// Lookup returns the cached elevation when available, otherwise asks
// the wrapped client and caches the answer.
func (c *CachedElevationClient) Lookup(ctx context.Context, lat, lon float64) (float64, error) {
	key := fmt.Sprintf("%.5f,%.5f", lat, lon)
	if v, ok := c.cache.get(key); ok {
		return v, nil
	}
	v, err := c.inner.Lookup(ctx, lat, lon)
	if err != nil {
		return 0, err
	}
	c.cache.put(key, v)
	return v, nil
}

// lruCache is a simple thread-safe LRU cache for elevation results.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value float64
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if c.head == e {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	if c.head == e {
		c.head = e.next
	}
	if c.tail == e {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	evicted := c.tail
	c.unlink(evicted)
	delete(c.entries, evicted.key)
}
