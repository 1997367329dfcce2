package service

import (
	"sync"
	"time"

	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/models"
)

// fakeClock 可手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// staticIdentity 固定身份源
type staticIdentity struct {
	mu       sync.Mutex
	identity *models.Identity
}

func (s *staticIdentity) Current() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	copied := *s.identity
	return &copied
}

func (s *staticIdentity) Set(identity *models.Identity) {
	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()
}

// failingStore 写入失败的存储
type failingStore struct {
	kvstore.Store
	failKeys map[string]bool
}

func (s *failingStore) Set(key, value string) error {
	if s.failKeys[key] {
		return errWriteRefused
	}
	return s.Store.Set(key, value)
}

type refusedError struct{}

func (refusedError) Error() string { return "quota exceeded" }

var errWriteRefused error = refusedError{}

func testProduct(id uint, price int64) models.Product {
	return models.Product{
		ID:    id,
		Name:  "Product",
		Price: models.NewMoneyFromInt(price),
		MRP:   models.NewMoneyFromInt(price),
		Sizes: []string{"S", "M", "L"},
		Stock: 10,
	}
}
