package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// UnknownName is substituted when a reference id cannot be resolved to a
// display name while rendering notifications.
const UnknownName = "N/A"

// ErrNotFound is returned when a catalog row does not exist.
var ErrNotFound = errors.New("catalog entity not found")

// Store is the storage surface the lookup service needs.
type Store interface {
	ListCatalog(ctx context.Context, line ProductLine, kind Kind) ([]Entity, error)
	GetCatalogEntity(ctx context.Context, line ProductLine, kind Kind, id string) (*Entity, error)
}

// Cache is a byte-level cache; errors from it are never fatal.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// Service reads catalog entities for the wizard steps, with a short-TTL
// read-through cache in front of Postgres.
type Service struct {
	store  Store
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewService(store Store, cache Cache, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// List returns the active entities of one kind for one product line, ordered
// for display.
func (s *Service) List(ctx context.Context, line ProductLine, kind Kind) ([]Entity, error) {
	cacheKey := fmt.Sprintf("catalog:%s:%s", line, kind)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var entities []Entity
			if err := json.Unmarshal(cached, &entities); err == nil {
				return entities, nil
			}
		}
	}

	entities, err := s.store.ListCatalog(ctx, line, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s %s: %w", line, kind, err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(entities); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.ttl); err != nil {
				s.logger.Debug("Catalog cache write failed", zap.Error(err))
			}
		}
	}

	return entities, nil
}

// Get returns a single catalog entity by id.
func (s *Service) Get(ctx context.Context, line ProductLine, kind Kind, id string) (*Entity, error) {
	entity, err := s.store.GetCatalogEntity(ctx, line, kind, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %s %s: %w", line, kind, id, err)
	}
	return entity, nil
}

// EntityName resolves a reference id to its display name, degrading to
// UnknownName when the id is empty or the lookup fails. Used while building
// the denormalized notification view, where a missing name must never abort
// the dispatch.
func (s *Service) EntityName(ctx context.Context, line ProductLine, kind Kind, id string) string {
	if id == "" {
		return UnknownName
	}

	entity, err := s.store.GetCatalogEntity(ctx, line, kind, id)
	if err != nil {
		s.logger.Warn("Failed to resolve catalog name",
			zap.String("product_line", string(line)),
			zap.String("kind", string(kind)),
			zap.String("id", id),
			zap.Error(err))
		return UnknownName
	}

	return entity.Name
}
