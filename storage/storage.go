// Package storage provides interfaces and common errors for URL mapping storage operations.
package storage

import (
	"context"
	"errors"

	"yacut/types"
)

// Common errors returned by storage operations.
var (
	ErrShortURLExists         = errors.New("short URL already exists")
	ErrShortURLNotFound       = errors.New("short URL not found")
	ErrStorageCapacityReached = errors.New("storage capacity reached")
)

// Storage interface defines the methods for URL mapping storage operations.
//
// The store is the only arbiter of short ID uniqueness: Create and CreateBatch
// report ErrShortURLExists whenever the unique constraint rejects an insert.
type Storage interface {
	Create(ctx context.Context, urlMap *types.URLMap) error
	// CreateBatch stores all mappings or none of them.
	CreateBatch(ctx context.Context, urlMaps []*types.URLMap) error
	FindByShort(ctx context.Context, short string) (types.URLMap, error)
	ExistsByShort(ctx context.Context, short string) (bool, error)
	Close() error
}
