package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/cache"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/validation"
)

// ClientStorageService stores small JSON values per account, read through the cache
type ClientStorageService struct {
	repo   storageStore
	cache  cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewClientStorageService creates a new ClientStorageService; a nil cache disables caching
func NewClientStorageService(repo storageStore, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *ClientStorageService {
	if c == nil {
		c = cache.Nop{}
	}
	return &ClientStorageService{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func storageCacheKey(accountID int64, key string) string {
	return fmt.Sprintf("cc:storage:%d:%s", accountID, key)
}

func validateStorageKey(key string) error {
	if !validation.IsValidStorageKey(key) {
		return fmt.Errorf("%w: key must be 1-128 characters of letters, digits, '.', '_', ':' or '-'", apperrors.ErrValidationFailed)
	}
	return nil
}

// Get returns the value stored under key, from the cache when possible
func (s *ClientStorageService) Get(ctx context.Context, accountID int64, key string) (*models.StorageEntry, error) {
	if err := validateStorageKey(key); err != nil {
		return nil, err
	}

	cacheKey := storageCacheKey(accountID, key)
	var cached models.StorageEntry
	err := cache.GetJSON(ctx, s.cache, cacheKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Err(err).Str("key", cacheKey).Msg("Cache read failed, falling back to database")
	}

	// The fence is taken before the database read so a Put landing in between blocks the fill
	fence, fenceErr := s.cache.Fence(ctx, cacheKey)
	if fenceErr != nil {
		s.logger.Warn().Err(fenceErr).Str("key", cacheKey).Msg("Cache fence read failed, skipping fill")
	}

	entry, err := s.repo.Get(ctx, accountID, key)
	if err != nil {
		return nil, err
	}

	if fenceErr == nil {
		stored, err := cache.SetJSONIfFence(ctx, s.cache, cacheKey, fence, entry, s.ttl)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", cacheKey).Msg("Cache fill failed")
		} else if !stored {
			s.logger.Debug().Str("key", cacheKey).Msg("Cache fill skipped after concurrent write")
		}
	}
	return entry, nil
}

// Put stores value under key and invalidates the cached copy
func (s *ClientStorageService) Put(ctx context.Context, accountID int64, key string, value json.RawMessage) (*models.StorageEntry, error) {
	if err := validateStorageKey(key); err != nil {
		return nil, err
	}
	if len(value) == 0 || !json.Valid(value) {
		return nil, fmt.Errorf("%w: value must be valid JSON", apperrors.ErrValidationFailed)
	}

	entry := &models.StorageEntry{AccountID: accountID, Key: key, Value: value}
	if err := s.repo.Put(ctx, entry); err != nil {
		return nil, err
	}

	cacheKey := storageCacheKey(accountID, key)
	if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
		s.logger.Warn().Err(err).Str("key", cacheKey).Msg("Cache invalidation failed")
	}
	return entry, nil
}
