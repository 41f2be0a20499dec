// README: PropertyMoney service: CRUD over the store with a best-effort read-through cache.
package propertymoney

import (
	"context"
	"errors"
	"fmt"

	"propertyapi/internal/logger"
	"propertyapi/internal/types"
)

var (
	ErrNotFound    = errors.New("property money not found")
	ErrInvalidSort = errors.New("invalid sort property")
)

type Repository interface {
	Create(ctx context.Context, pm *PropertyMoney) error
	Update(ctx context.Context, pm *PropertyMoney) (bool, error)
	Get(ctx context.Context, id int64) (PropertyMoney, bool, error)
	List(ctx context.Context, p types.Pageable) ([]PropertyMoney, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// Cache versions each id: Evict bumps the version and Set is dropped when the
// version it was given is no longer current.
type Cache interface {
	Get(ctx context.Context, id int64) (PropertyMoney, bool, error)
	Version(ctx context.Context, id int64) (int64, error)
	Set(ctx context.Context, pm PropertyMoney, version int64) error
	Evict(ctx context.Context, id int64) error
}

type Service struct {
	store Repository
	cache Cache
	log   logger.Logger
}

// NewService wires the service. cache may be nil, in which case every read goes to the store.
func NewService(store Repository, cache Cache, log logger.Logger) *Service {
	return &Service{store: store, cache: cache, log: log.With("module", "propertymoney")}
}

// Save inserts pm when it has no ID and updates it otherwise. Updating an ID
// the store does not know returns ErrNotFound.
func (s *Service) Save(ctx context.Context, pm PropertyMoney) (PropertyMoney, error) {
	s.log.Debugf("Request to save PropertyMoney : %s", pm)
	if pm.ID == nil {
		if err := s.store.Create(ctx, &pm); err != nil {
			return PropertyMoney{}, fmt.Errorf("create %s: %w", EntityName, err)
		}
		return pm, nil
	}

	ok, err := s.store.Update(ctx, &pm)
	if err != nil {
		return PropertyMoney{}, fmt.Errorf("update %s %d: %w", EntityName, *pm.ID, err)
	}
	if !ok {
		return PropertyMoney{}, ErrNotFound
	}
	s.evict(ctx, *pm.ID)
	return pm, nil
}

func (s *Service) FindAll(ctx context.Context, p types.Pageable) (types.Page[PropertyMoney], error) {
	s.log.Debugf("Request to get all PropertyMonies page=%d size=%d", p.Page, p.Size)
	for _, o := range p.Sort {
		if !IsSortable(o.Property) {
			return types.Page[PropertyMoney]{}, fmt.Errorf("%w: %s", ErrInvalidSort, o.Property)
		}
	}
	content, err := s.store.List(ctx, p)
	if err != nil {
		return types.Page[PropertyMoney]{}, fmt.Errorf("list %s: %w", EntityName, err)
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return types.Page[PropertyMoney]{}, fmt.Errorf("count %s: %w", EntityName, err)
	}
	if content == nil {
		content = []PropertyMoney{}
	}
	if len(content) > p.Size {
		content = content[:p.Size]
	}
	return types.Page[PropertyMoney]{Content: content, Total: total, Pageable: p}, nil
}

// FindOne reports found=false for a missing id; that is not an error.
// The cache version is read before the store so that a Save or Delete landing
// in between wins over this read.
func (s *Service) FindOne(ctx context.Context, id int64) (PropertyMoney, bool, error) {
	s.log.Debugf("Request to get PropertyMoney : %d", id)
	var version int64
	cacheable := false
	if s.cache != nil {
		pm, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.Warnw("cache read failed", "id", id, "error", err)
		} else if ok {
			return pm, true, nil
		}
		if version, err = s.cache.Version(ctx, id); err != nil {
			s.log.Warnw("cache version read failed", "id", id, "error", err)
		} else {
			cacheable = true
		}
	}

	pm, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return PropertyMoney{}, false, fmt.Errorf("get %s %d: %w", EntityName, id, err)
	}
	if !ok {
		return PropertyMoney{}, false, nil
	}
	if cacheable {
		if err := s.cache.Set(ctx, pm, version); err != nil {
			s.log.Warnw("cache write failed", "id", id, "error", err)
		}
	}
	return pm, true, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	s.log.Debugf("Request to delete PropertyMoney : %d", id)
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", EntityName, id, err)
	}
	s.evict(ctx, id)
	return nil
}

func (s *Service) evict(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Evict(ctx, id); err != nil {
		s.log.Warnw("cache evict failed", "id", id, "error", err)
	}
}
