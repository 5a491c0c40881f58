// Package catalog holds the rental tool catalog. The storefront persisted it
// in browser local storage; here a JSON file plays that role, with an optional
// Postgres repository for shared deployments.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Product is one rentable tool.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	PricePerDay float64 `json:"price_per_day"`
	Image       string  `json:"image,omitempty"`
}

// Store is an in-memory catalog backed by an optional JSON file.
type Store struct {
	mu       sync.RWMutex
	products map[string]Product
	path     string
}

// NewStore loads the catalog from path. A missing or empty path seeds the
// built-in defaults; a malformed file is an error.
func NewStore(path string) (*Store, error) {
	s := &Store{products: make(map[string]Product), path: path}

	if path == "" {
		s.seedDefaults()
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.seedDefaults()
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s, nil
}

// Save writes the catalog back to its JSON file, if one is configured.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}

	s.mu.RLock()
	products := s.all()
	s.mu.RUnlock()

	raw, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

func (s *Store) Get(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Store) Put(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

// All returns every product sorted by id.
func (s *Store) All() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.all()
}

func (s *Store) all() []Product {
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *Store) seedDefaults() {
	for _, p := range defaultProducts {
		s.products[p.ID] = p
	}
}

// defaultProducts seeds a fresh install with the core rental inventory.
var defaultProducts = []Product{
	{ID: "TL-101", Name: "Rotary Hammer Drill", Brand: "Makita", Category: "drilling", PricePerDay: 100},
	{ID: "TL-102", Name: "Cordless Impact Driver", Brand: "DeWalt", Category: "drilling", PricePerDay: 80},
	{ID: "TL-201", Name: "Circular Saw 7.25in", Brand: "Bosch", Category: "cutting", PricePerDay: 120},
	{ID: "TL-202", Name: "Angle Grinder 4.5in", Brand: "Makita", Category: "cutting", PricePerDay: 90},
	{ID: "TL-301", Name: "Concrete Mixer 140L", Brand: "Belle", Category: "concrete", PricePerDay: 350},
	{ID: "TL-302", Name: "Plate Compactor", Brand: "Wacker Neuson", Category: "concrete", PricePerDay: 400},
	{ID: "TL-401", Name: "Extension Ladder 6m", Brand: "Werner", Category: "access", PricePerDay: 60},
	{ID: "TL-402", Name: "Scaffold Tower 4m", Brand: "BoSS", Category: "access", PricePerDay: 250},
	{ID: "TL-501", Name: "Pressure Washer 150bar", Brand: "Karcher", Category: "cleaning", PricePerDay: 150},
	{ID: "TL-502", Name: "Industrial Vacuum", Brand: "Nilfisk", Category: "cleaning", PricePerDay: 70},
}
