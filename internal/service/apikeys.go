package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rdrlink/shortener/internal/models"
	"github.com/rdrlink/shortener/internal/repository"
)

// APIKeyService issues and validates API keys. A key's ID is the owner
// identity of the links created with it.
type APIKeyService struct {
	repo      APIKeyStore
	scheduler Scheduler
	logger    *zap.Logger
}

// NewAPIKeyService creates a new API key service. Last-used updates run on
// scheduler; a nil scheduler skips them.
func NewAPIKeyService(repo APIKeyStore, scheduler Scheduler, logger *zap.Logger) *APIKeyService {
	return &APIKeyService{repo: repo, scheduler: scheduler, logger: logger}
}

// ValidateKey returns the key record, or nil if the key is unknown or
// inactive.
//
// SECURITY FLOW:
// 1. Hash the provided key (we never store plain keys)
// 2. Look up hash in database
// 3. Return key info (for rate limit, ownership)
func (s *APIKeyService) ValidateKey(ctx context.Context, rawKey string) (*models.APIKey, error) {
	key, err := s.repo.GetByKeyHash(ctx, hashAPIKey(rawKey))
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to validate key: %w", err)
	}

	s.touch(key.ID)
	return key, nil
}

// touch records key usage in the background. Dropped updates only make
// last_used_at lag.
func (s *APIKeyService) touch(id uuid.UUID) {
	if s.scheduler == nil {
		return
	}
	accepted := s.scheduler.Submit(func(ctx context.Context) {
		if err := s.repo.UpdateLastUsed(ctx, id); err != nil {
			s.logger.Warn("failed to update API key usage", zap.String("key_id", id.String()), zap.Error(err))
		}
	})
	if !accepted {
		s.logger.Debug("API key usage update dropped", zap.String("key_id", id.String()))
	}
}

// GenerateKey creates a new API key.
// The raw key is only returned ONCE; afterwards only the hash exists.
func (s *APIKeyService) GenerateKey(ctx context.Context, name string, rateLimit int) (string, *models.APIKey, error) {
	rawKey, err := generateAPIKey()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate key: %w", err)
	}

	key := &models.APIKey{
		KeyHash:   hashAPIKey(rawKey),
		Name:      name,
		RateLimit: rateLimit,
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, key); err != nil {
		return "", nil, fmt.Errorf("failed to save key: %w", err)
	}

	return rawKey, key, nil
}

// generateAPIKey creates a random API key.
// Format: "sk_live_" + 32 random hex chars = 40 chars total
func generateAPIKey() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return "sk_live_" + hex.EncodeToString(bytes), nil
}

// hashAPIKey creates a SHA-256 hash of an API key.
// SHA-256 is sufficient for high-entropy inputs like API keys.
func hashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
