package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_cart/cartsync/internal/catalog"
	"github.com/fjod/go_cart/cartsync/internal/domain"
	"github.com/fjod/go_cart/cartsync/internal/logger"
	"github.com/fjod/go_cart/cartsync/internal/metrics"
	"github.com/fjod/go_cart/cartsync/internal/notify"
	"github.com/fjod/go_cart/cartsync/internal/store"
	"github.com/sirupsen/logrus"
)

const DefaultCartKey = "@RocketShoes:cart"

type UpdateProductAmount struct {
	ProductID int64
	Amount    int
}

// CartStore owns the session cart. Mutations are serialized by mu, which is held
// across the stock/product fetch, so two overlapping calls can never commit on top
// of the same stale snapshot. Readers go through the atomic pointer and never wait
// on a fetch.
type CartStore struct {
	kv       store.KeyValueStore
	stock    catalog.StockService
	products catalog.ProductCatalog
	notifier notify.Notifier

	key          string
	fetchTimeout time.Duration
	log          logrus.FieldLogger
	metrics      *metrics.CartMetrics

	mu   sync.Mutex
	cart atomic.Pointer[domain.Cart]
}

type Option func(*CartStore)

func WithCartKey(key string) Option {
	return func(s *CartStore) { s.key = key }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *CartStore) { s.log = log }
}

func WithMetrics(m *metrics.CartMetrics) Option {
	return func(s *CartStore) { s.metrics = m }
}

// WithFetchTimeout bounds each stock/product fetch. Zero means no deadline.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *CartStore) { s.fetchTimeout = d }
}

func NewCartStore(
	kv store.KeyValueStore,
	stock catalog.StockService,
	products catalog.ProductCatalog,
	notifier notify.Notifier,
	opts ...Option) *CartStore {

	s := &CartStore{
		kv:       kv,
		stock:    stock,
		products: products,
		notifier: notifier,
		key:      DefaultCartKey,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(s.log)
	}

	empty := domain.Cart{}
	s.cart.Store(&empty)
	return s
}

// Initialize hydrates the cart from the store. Missing or unreadable data gives an
// empty cart; nothing is reported to the notifier.
func (s *CartStore) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(ctx)
	s.cart.Store(&cart)
	s.log.WithField("items", len(cart)).Debug("cart initialized")
}

// Cart returns a copy of the committed cart
func (s *CartStore) Cart() domain.Cart {
	return s.cart.Load().Clone()
}

func (s *CartStore) AddProduct(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := *s.cart.Load()

	if item, ok := current.Find(productID); ok {
		stock, err := s.fetchStock(ctx, productID)
		if err != nil {
			return s.fail(OpAdd, productID, ErrFetchFailure, err)
		}
		if !stock.Covers(item.Amount) {
			return s.fail(OpAdd, productID, ErrStockExceeded, nil)
		}
		return s.commit(ctx, OpAdd, productID, current.WithAmount(productID, item.Amount+1))
	}

	// first insertion is not checked against stock
	product, err := s.fetchProduct(ctx, productID)
	if err != nil {
		return s.fail(OpAdd, productID, ErrFetchFailure, err)
	}
	return s.commit(ctx, OpAdd, productID, current.WithItem(domain.CartItem{Product: product, Amount: 1}))
}

func (s *CartStore) RemoveProduct(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := *s.cart.Load()
	if current.Index(productID) < 0 {
		return s.fail(OpRemove, productID, ErrProductNotFound, nil)
	}
	return s.commit(ctx, OpRemove, productID, current.Without(productID))
}

// UpdateProductAmount treats any positive amount as a request for one more unit.
// The item grows by exactly 1 when stock allows it; the requested value itself
// is not applied.
func (s *CartStore) UpdateProductAmount(ctx context.Context, req UpdateProductAmount) error {
	if req.Amount <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := *s.cart.Load()
	item, ok := current.Find(req.ProductID)
	if !ok {
		return s.fail(OpUpdate, req.ProductID, ErrProductNotFound, nil)
	}

	stock, err := s.fetchStock(ctx, req.ProductID)
	if err != nil {
		return s.fail(OpUpdate, req.ProductID, ErrFetchFailure, err)
	}
	if !stock.Covers(item.Amount) {
		return s.fail(OpUpdate, req.ProductID, ErrStockExceeded, nil)
	}
	return s.commit(ctx, OpUpdate, req.ProductID, current.WithAmount(req.ProductID, item.Amount+1))
}

// Close ends the session by writing the current cart to the store once more
func (s *CartStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, *s.cart.Load()); err != nil {
		return &CartError{Op: OpFlush, Kind: ErrPersistFailure, Err: err}
	}
	return nil
}

func (s *CartStore) load(ctx context.Context) domain.Cart {
	log := s.log.WithField("key", s.key)

	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.WithError(err).Warn("failed to read stored cart, starting empty")
		}
		return domain.Cart{}
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		log.WithError(err).Warn("stored cart is not valid JSON, starting empty")
		return domain.Cart{}
	}
	if !cart.Valid() {
		log.Warn("stored cart has duplicate or empty lines, starting empty")
		return domain.Cart{}
	}
	if cart == nil {
		cart = domain.Cart{}
	}
	return cart
}

// commit swaps in the new cart and then writes it through. A failed write does not
// roll the in-memory cart back; the next successful commit or Close resyncs it.
func (s *CartStore) commit(ctx context.Context, op Op, productID int64, next domain.Cart) error {
	s.cart.Store(&next)

	if err := s.persist(ctx, next); err != nil {
		s.log.WithFields(logrus.Fields{"op": op, "product_id": productID}).
			WithError(err).Error("cart changed but was not persisted")
		s.metrics.Observe(string(op), outcome(ErrPersistFailure), next.TotalItems())
		return &CartError{Op: op, ProductID: productID, Kind: ErrPersistFailure, Err: err}
	}

	s.metrics.Observe(string(op), outcome(nil), next.TotalItems())
	return nil
}

func (s *CartStore) persist(ctx context.Context, cart domain.Cart) error {
	if cart == nil {
		cart = domain.Cart{}
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.kv.Set(ctx, s.key, string(data))
}

// fail reports a rejected operation; the cart is left as it was
func (s *CartStore) fail(op Op, productID int64, kind, cause error) error {
	cartErr := &CartError{Op: op, ProductID: productID, Kind: kind, Err: cause}

	entry := s.log.WithFields(logrus.Fields{"op": op, "product_id": productID})
	if cause != nil {
		entry = entry.WithError(cause)
	}
	entry.Warn(kind.Error())

	s.metrics.Observe(string(op), outcome(kind), s.cart.Load().TotalItems())
	s.notifier.Error(userMessage(op, kind))
	return cartErr
}

func (s *CartStore) fetchStock(ctx context.Context, productID int64) (domain.Stock, error) {
	ctx, cancel := s.fetchContext(ctx)
	defer cancel()
	return s.stock.GetStock(ctx, productID)
}

func (s *CartStore) fetchProduct(ctx context.Context, productID int64) (domain.Product, error) {
	ctx, cancel := s.fetchContext(ctx)
	defer cancel()

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if product.ID != productID {
		return domain.Product{}, fmt.Errorf("catalog returned product %d for id %d", product.ID, productID)
	}
	return product, nil
}

func (s *CartStore) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.fetchTimeout > 0 {
		return context.WithTimeout(ctx, s.fetchTimeout)
	}
	return context.WithCancel(ctx)
}
