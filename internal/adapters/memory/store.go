// Package memory keeps the entity collections in process memory.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/fixtures"
)

// collection is an insertion-ordered map guarded by a RWMutex. Values are deep
// copied on the way in and out so callers never share state with the store.
type collection[T any] struct {
	mu    sync.RWMutex
	order []string
	items map[string]T
	idOf  func(*T) string
}

func newCollection[T any](idOf func(*T) string, seed []T) (*collection[T], error) {
	c := &collection[T]{items: make(map[string]T, len(seed)), idOf: idOf}
	for i := range seed {
		if err := c.put(&seed[i]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *collection[T]) list() ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		v := c.items[id]
		cp, err := clone(&v)
		if err != nil {
			return nil, err
		}
		out = append(out, *cp)
	}
	return out, nil
}

func (c *collection[T]) get(id string) (*T, error) {
	c.mu.RLock()
	v, ok := c.items[id]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrNotFound)
	}
	return clone(&v)
}

func (c *collection[T]) put(v *T) error {
	cp, err := clone(v)
	if err != nil {
		return err
	}
	id := c.idOf(cp)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = *cp
	return nil
}

func clone[T any](v *T) (*T, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("copy record: %w", err)
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("copy record: %w", err)
	}
	return &out, nil
}

// Store holds the three entity collections.
type Store struct {
	Surveys       *SurveyRepo
	LandChanges   *LandChangeRepo
	CivilRequests *CivilRequestRepo
}

// NewStore returns a store seeded from the embedded fixtures.
func NewStore() (*Store, error) {
	seed, err := fixtures.Load()
	if err != nil {
		return nil, err
	}
	return NewStoreFrom(seed)
}

// NewStoreFrom returns a store seeded with the given records.
func NewStoreFrom(seed *fixtures.Seed) (*Store, error) {
	surveys, err := newCollection(func(s *domain.SurveyRecord) string { return s.ID }, seed.Surveys)
	if err != nil {
		return nil, err
	}
	changes, err := newCollection(func(lc *domain.LandChange) string { return lc.ID }, seed.LandChanges)
	if err != nil {
		return nil, err
	}
	requests, err := newCollection(func(cr *domain.CivilRequest) string { return cr.ID }, seed.CivilRequests)
	if err != nil {
		return nil, err
	}
	return &Store{
		Surveys:       &SurveyRepo{c: surveys},
		LandChanges:   &LandChangeRepo{c: changes},
		CivilRequests: &CivilRequestRepo{c: requests},
	}, nil
}

// SurveyRepo implements ports.SurveyRepository.
type SurveyRepo struct {
	c *collection[domain.SurveyRecord]
}

func (r *SurveyRepo) List(ctx context.Context) ([]domain.SurveyRecord, error) { return r.c.list() }

func (r *SurveyRepo) GetByID(ctx context.Context, id string) (*domain.SurveyRecord, error) {
	return r.c.get(id)
}

func (r *SurveyRepo) Save(ctx context.Context, s *domain.SurveyRecord) error { return r.c.put(s) }

// LandChangeRepo implements ports.LandChangeRepository.
type LandChangeRepo struct {
	c *collection[domain.LandChange]
}

func (r *LandChangeRepo) List(ctx context.Context) ([]domain.LandChange, error) { return r.c.list() }

func (r *LandChangeRepo) GetByID(ctx context.Context, id string) (*domain.LandChange, error) {
	return r.c.get(id)
}

func (r *LandChangeRepo) Save(ctx context.Context, lc *domain.LandChange) error { return r.c.put(lc) }

// CivilRequestRepo implements ports.CivilRequestRepository.
type CivilRequestRepo struct {
	c *collection[domain.CivilRequest]
}

func (r *CivilRequestRepo) List(ctx context.Context) ([]domain.CivilRequest, error) {
	return r.c.list()
}

func (r *CivilRequestRepo) GetByID(ctx context.Context, id string) (*domain.CivilRequest, error) {
	return r.c.get(id)
}

func (r *CivilRequestRepo) Save(ctx context.Context, cr *domain.CivilRequest) error {
	return r.c.put(cr)
}
