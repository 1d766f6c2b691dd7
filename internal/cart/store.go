// Package cart holds the session's line items and their derived totals.
//
// Operations that would violate stock limits are ignored rather than
// reported; totals are recomputed after every change.
package cart

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/gym_client/internal/domain"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu         sync.RWMutex
	userID     string
	items      []domain.CartItem // insertion order, unique by ProductID
	totalItems int
	totalPrice decimal.Decimal
	onChange   func(domain.CartSnapshot)
	log        *slog.Logger
}

func NewStore(userID string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		userID:     userID,
		totalPrice: decimal.Zero,
		log:        log.With("component", "cart"),
	}
}

// OnChange sets the observer called with a snapshot after every mutation
// that changed the cart. It runs outside the store lock.
func (s *Store) OnChange(fn func(domain.CartSnapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// AddToCart inserts p with quantity 1, or bumps the quantity of an existing
// line by one while it stays within stock.
func (s *Store) AddToCart(p domain.Product) {
	s.mutate(func() bool {
		if i := s.indexLocked(p.ProductID); i >= 0 {
			item := &s.items[i]
			if item.Quantity+1 > item.Stock {
				s.log.Debug("add ignored, stock limit reached", "product_id", p.ProductID, "stock", item.Stock)
				return false
			}
			item.Quantity++
			return true
		}

		if p.Stock <= 0 {
			s.log.Debug("add ignored, out of stock", "product_id", p.ProductID)
			return false
		}
		s.items = append(s.items, domain.CartItem{
			ProductID:       p.ProductID,
			Name:            p.Name,
			ImageURL:        p.ImageURL,
			SellingPrice:    p.SellingPrice,
			Discount:        p.Discount,
			DiscountedPrice: p.DiscountedPrice(),
			Quantity:        1,
			Stock:           p.Stock,
		})
		return true
	})
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line; a quantity above stock is ignored.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	s.mutate(func() bool {
		i := s.indexLocked(productID)
		if i < 0 {
			return false
		}
		if quantity <= 0 {
			s.removeLocked(i)
			return true
		}
		if quantity > s.items[i].Stock {
			s.log.Debug("quantity update ignored, above stock", "product_id", productID, "quantity", quantity, "stock", s.items[i].Stock)
			return false
		}
		if s.items[i].Quantity == quantity {
			return false
		}
		s.items[i].Quantity = quantity
		return true
	})
}

func (s *Store) RemoveFromCart(productID string) {
	s.mutate(func() bool {
		i := s.indexLocked(productID)
		if i < 0 {
			return false
		}
		s.removeLocked(i)
		return true
	})
}

func (s *Store) ClearCart() {
	s.mutate(func() bool {
		if len(s.items) == 0 {
			return false
		}
		s.items = nil
		return true
	})
}

// Restore replaces the cart with a cached snapshot. Lines above their stock
// are clamped to it. Totals are recomputed from the items, never taken from
// the snapshot.
func (s *Store) Restore(snap domain.CartSnapshot) {
	s.mu.Lock()
	s.items = s.items[:0]
	for _, item := range snap.Items {
		if item.ProductID == "" || item.Quantity <= 0 || item.Stock <= 0 || s.indexLocked(item.ProductID) >= 0 {
			continue
		}
		if item.Quantity > item.Stock {
			s.log.Debug("restored quantity clamped to stock", "product_id", item.ProductID, "quantity", item.Quantity, "stock", item.Stock)
			item.Quantity = item.Stock
		}
		s.items = append(s.items, item)
	}
	s.recomputeLocked()
	s.mu.Unlock()
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalItems
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalPrice
}

func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) mutate(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.recomputeLocked()
	snap := s.snapshotLocked()
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(snap)
	}
}

func (s *Store) recomputeLocked() {
	total := 0
	price := decimal.Zero
	for _, item := range s.items {
		total += item.Quantity
		price = price.Add(item.LineTotal())
	}
	s.totalItems = total
	s.totalPrice = price
}

func (s *Store) snapshotLocked() domain.CartSnapshot {
	items := make([]domain.CartItem, len(s.items))
	copy(items, s.items)
	return domain.CartSnapshot{
		UserID:     s.userID,
		Items:      items,
		TotalItems: s.totalItems,
		TotalPrice: s.totalPrice,
		UpdatedAt:  time.Now(),
	}
}

func (s *Store) indexLocked(productID string) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}
