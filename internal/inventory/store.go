package inventory

import (
	"errors"
	"sort"
	"sync"

	"github.com/fjod/go_cart/cartsync/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidAmount   = errors.New("stock amount must not be negative")
)

// MemoryStore keeps the product catalog and stock levels in process
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
	stocks   map[int64]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]domain.Product),
		stocks:   make(map[int64]int),
	}
}

// NewSeededStore returns a store preloaded with the demo shoe catalog
func NewSeededStore() *MemoryStore {
	s := NewMemoryStore()
	for _, seed := range demoCatalog {
		s.products[seed.product.ID] = seed.product
		s.stocks[seed.product.ID] = seed.amount
	}
	return s
}

func (s *MemoryStore) GetProduct(productID int64) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[productID]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return product, nil
}

// ListProducts returns all products ordered by id
func (s *MemoryStore) ListProducts() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *MemoryStore) GetStock(productID int64) (domain.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	amount, ok := s.stocks[productID]
	if !ok {
		return domain.Stock{}, ErrProductNotFound
	}
	return domain.Stock{ProductID: productID, Amount: amount}, nil
}

// SetStock sets the stock level of a known product
func (s *MemoryStore) SetStock(productID int64, amount int) error {
	if amount < 0 {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return ErrProductNotFound
	}
	s.stocks[productID] = amount
	return nil
}

// SetProduct creates or replaces a product. New products start with no stock.
func (s *MemoryStore) SetProduct(product domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[product.ID] = product
	if _, ok := s.stocks[product.ID]; !ok {
		s.stocks[product.ID] = 0
	}
}
