package sales

import (
	"errors"
	"sort"
	"sync"
)

// ErrSellerNotFound is returned when a seller with the given ID is not in the directory.
var ErrSellerNotFound = errors.New("seller not found")

// SellerDirectory keeps the sellers last loaded from the backend so that a
// submitted seller id can be checked against the options the user was shown.
type SellerDirectory struct {
	mu sync.RWMutex
	m  map[int64]Seller
}

// NewSellerDirectory instantiates an empty SellerDirectory.
func NewSellerDirectory() *SellerDirectory {
	return &SellerDirectory{
		m: map[int64]Seller{},
	}
}

// Set stores or overwrites a single seller.
func (d *SellerDirectory) Set(seller Seller) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[seller.ID] = seller
}

// Replace drops every stored seller and stores the given list instead.
func (d *SellerDirectory) Replace(sellers []Seller) {
	m := make(map[int64]Seller, len(sellers))
	for _, s := range sellers {
		m[s.ID] = s
	}

	d.mu.Lock()
	d.m = m
	d.mu.Unlock()
}

// Read retrieves a seller by ID.
// Returns ErrSellerNotFound if the seller is not found.
func (d *SellerDirectory) Read(id int64) (Seller, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.m[id]
	if !ok {
		return Seller{}, ErrSellerNotFound
	}
	return s, nil
}

// GetAll returns every stored seller ordered by name, then by id.
func (d *SellerDirectory) GetAll() []Seller {
	d.mu.RLock()
	sellers := make([]Seller, 0, len(d.m))
	for _, s := range d.m {
		sellers = append(sellers, s)
	}
	d.mu.RUnlock()

	sort.Slice(sellers, func(i, j int) bool {
		if sellers[i].Name != sellers[j].Name {
			return sellers[i].Name < sellers[j].Name
		}
		return sellers[i].ID < sellers[j].ID
	})
	return sellers
}

// Len reports how many sellers are stored.
func (d *SellerDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.m)
}
