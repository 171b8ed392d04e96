package service

import (
	"context"
	"sync"

	"github.com/rdrlink/shortener/internal/config"
	"github.com/rdrlink/shortener/internal/models"
	"github.com/rdrlink/shortener/internal/queue"
)

const testPrimaryDomain = "rdr.nu"

// inlineScheduler runs tasks synchronously.
type inlineScheduler struct{}

func (inlineScheduler) Submit(task queue.Task) bool {
	task(context.Background())
	return true
}

// rejectingScheduler drops every task.
type rejectingScheduler struct{}

func (rejectingScheduler) Submit(queue.Task) bool { return false }

// recordingSink collects pushed events.
type recordingSink struct {
	mu     sync.Mutex
	events []models.ClickEvent
}

func (s *recordingSink) Push(e models.ClickEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func testShortenerConfig() config.ShortenerConfig {
	return config.ShortenerConfig{
		PrimaryDomain:       testPrimaryDomain,
		ShortURLScheme:      "https",
		CodeLength:          6,
		MaxAttempts:         10,
		CustomCodeMinLength: 3,
		CustomCodeMaxLength: 20,
	}
}

func strPtr(s string) *string { return &s }

// memoryLinkCache is a map-backed LinkCache. A nil entry marks an absent link.
type memoryLinkCache struct {
	mu      sync.Mutex
	entries map[string]*models.Link
}

func newMemoryLinkCache() *memoryLinkCache {
	return &memoryLinkCache{entries: make(map[string]*models.Link)}
}

func (c *memoryLinkCache) Get(_ context.Context, domain, shortCode string) (*models.Link, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	link, ok := c.entries[domain+"/"+shortCode]
	return link, ok, nil
}

func (c *memoryLinkCache) Set(_ context.Context, link *models.Link) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[link.Domain+"/"+link.ShortCode] = link
	return nil
}

func (c *memoryLinkCache) SetAbsent(_ context.Context, domain, shortCode string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[domain+"/"+shortCode] = nil
	return nil
}

func (c *memoryLinkCache) Delete(_ context.Context, domain, shortCode string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, domain+"/"+shortCode)
	return nil
}
