package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fjod/go_cart/cartsync/internal/domain"
	"github.com/fjod/go_cart/cartsync/internal/store"
)

type mockStock struct {
	mu     sync.Mutex
	stocks map[int64]int
	err    error
	delay  time.Duration
	block  bool
	calls  int
}

func (m *mockStock) GetStock(ctx context.Context, productID int64) (domain.Stock, error) {
	m.mu.Lock()
	m.calls++
	delay, block, err := m.delay, m.block, m.err
	amount, ok := m.stocks[productID]
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return domain.Stock{}, ctx.Err()
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return domain.Stock{}, err
	}
	if !ok {
		return domain.Stock{}, errors.New("stock not found")
	}
	return domain.Stock{ProductID: productID, Amount: amount}, nil
}

func (m *mockStock) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockCatalog struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	err      error
	delay    time.Duration
	calls    int
}

func (m *mockCatalog) GetProduct(_ context.Context, productID int64) (domain.Product, error) {
	m.mu.Lock()
	m.calls++
	delay, err := m.delay, m.err
	product, ok := m.products[productID]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		return domain.Product{}, errors.New("product not found")
	}
	return product, nil
}

type mockNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockNotifier) Error(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
}

func (m *mockNotifier) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// flakyStore wraps a MemoryStore and can fail reads or writes on demand
type flakyStore struct {
	*store.MemoryStore
	mu     sync.Mutex
	getErr error
	setErr error
	sets   int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: store.NewMemoryStore()}
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	err := f.getErr
	f.mu.Unlock()
	if err != nil {
		return "", err
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	f.sets++
	err := f.setErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *flakyStore) setCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}
