package services

import (
	"context"
	"errors"

	"yacut/storage"
	"yacut/types"
	"yacut/urlgen"
)

func handleStorageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrShortURLExists):
		return ErrShortURLExists
	case errors.Is(err, storage.ErrStorageCapacityReached):
		return ErrStorageCapacityReached
	case errors.Is(err, storage.ErrShortURLNotFound):
		return ErrShortURLNotFound
	default:
		return err
	}
}

var (
	ErrShortURLExists         = errors.New("short URL already exists")
	ErrStorageCapacityReached = errors.New("storage capacity reached")
	ErrShortURLNotFound       = errors.New("short URL not found")
	ErrMissingCredentials     = errors.New("disk access token is not configured")
)

type URLService interface {
	// CreateShortURL stores originalURL under customID, or under a generated
	// short ID when customID is blank.
	CreateShortURL(ctx context.Context, originalURL, customID string) (types.URLMap, error)
	GetURLData(ctx context.Context, short string) (types.URLMap, error)
}

type urlService struct {
	store     storage.Storage
	generator *urlgen.Generator
}

func NewURLService(store storage.Storage, generator *urlgen.Generator) URLService {
	return &urlService{store: store, generator: generator}
}

func (s *urlService) CreateShortURL(ctx context.Context, originalURL, customID string) (types.URLMap, error) {
	short, err := s.generator.Validate(ctx, customID, urlgen.ValidateOptions{CheckUnique: true})
	if err != nil {
		return types.URLMap{}, err
	}

	if short == "" {
		short, err = s.generator.Unique(ctx)
		if err != nil {
			return types.URLMap{}, err
		}
	}

	urlMap := &types.URLMap{
		Original: originalURL,
		Short:    short,
	}
	// A concurrent writer may have claimed short since the check; the store decides.
	if err := s.store.Create(ctx, urlMap); err != nil {
		return types.URLMap{}, handleStorageError(err)
	}
	return *urlMap, nil
}

func (s *urlService) GetURLData(ctx context.Context, short string) (types.URLMap, error) {
	urlMap, err := s.store.FindByShort(ctx, short)
	if err != nil {
		return types.URLMap{}, handleStorageError(err)
	}
	return urlMap, nil
}
