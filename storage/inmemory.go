package storage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"yacut/types"
)

// InMemoryStorage implements the Storage interface using an in-memory map.
type InMemoryStorage struct {
	urls     map[string]types.URLMap // short ID to mapping
	mu       sync.RWMutex
	capacity int // Maximum number of mappings that can be stored
	lastID   uint
	logger   *zap.Logger
}

// NewInMemoryStorage creates and returns a new InMemoryStorage instance
func NewInMemoryStorage(capacity int, logger *zap.Logger) *InMemoryStorage {
	if capacity <= 0 {
		capacity = 1000 // Default capacity if an invalid value is provided
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryStorage{
		urls:     make(map[string]types.URLMap),
		capacity: capacity,
		logger:   logger,
	}
}

// Create adds a new mapping to the storage.
func (s *InMemoryStorage) Create(ctx context.Context, urlMap *types.URLMap) error {
	return s.CreateBatch(ctx, []*types.URLMap{urlMap})
}

// CreateBatch adds all mappings, or none of them if any short ID is taken
// (in the store or twice within the batch) or capacity would be exceeded.
func (s *InMemoryStorage) CreateBatch(ctx context.Context, urlMaps []*types.URLMap) error {
	select {
	case <-ctx.Done():
		s.logger.Warn("Create operation cancelled", zap.Int("batchSize", len(urlMaps)))
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.urls)+len(urlMaps) > s.capacity {
		s.logger.Error("Storage capacity reached. Cannot create mappings", zap.Int("batchSize", len(urlMaps)))
		return ErrStorageCapacityReached
	}

	seen := make(map[string]struct{}, len(urlMaps))
	for _, m := range urlMaps {
		_, stored := s.urls[m.Short]
		_, repeated := seen[m.Short]
		if stored || repeated {
			s.logger.Warn("Attempt to create duplicate short ID", zap.String("short", m.Short))
			return ErrShortURLExists
		}
		seen[m.Short] = struct{}{}
	}

	now := time.Now().UTC()
	for _, m := range urlMaps {
		s.lastID++
		m.ID = s.lastID
		m.CreatedAt = now
		s.urls[m.Short] = *m
		s.logger.Info("Short URL created successfully",
			zap.String("short", m.Short),
			zap.String("original", m.Original),
			zap.Time("createdAt", m.CreatedAt))
	}
	return nil
}

// FindByShort retrieves the mapping for a given short ID.
func (s *InMemoryStorage) FindByShort(ctx context.Context, short string) (types.URLMap, error) {
	select {
	case <-ctx.Done():
		s.logger.Warn("Read operation cancelled", zap.String("short", short))
		return types.URLMap{}, ctx.Err()
	default:
		s.mu.RLock()
		defer s.mu.RUnlock()

		if urlMap, exists := s.urls[short]; exists {
			return urlMap, nil
		}
		return types.URLMap{}, ErrShortURLNotFound
	}
}

// ExistsByShort reports whether the short ID is stored.
func (s *InMemoryStorage) ExistsByShort(ctx context.Context, short string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
		s.mu.RLock()
		defer s.mu.RUnlock()

		_, exists := s.urls[short]
		return exists, nil
	}
}

// Close is a no-op for the in-memory storage.
func (s *InMemoryStorage) Close() error {
	return nil
}

// Len returns the number of stored mappings.
func (s *InMemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.urls)
}
