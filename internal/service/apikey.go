package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"fundholdings/internal/models"
	"fundholdings/internal/repository"
)

// APIKeyService owns API-key issuance and verification for the HTTP layer.
type APIKeyService struct {
	Repo repository.Repository
}

func (s *APIKeyService) Create(ctx context.Context, userID, description string) (*models.APIKey, error) {
	item := &models.APIKey{
		KeyID:       uuid.NewString(),
		APIKey:      newKeyValue(),
		UserID:      userID,
		Description: description,
		IsActive:    true,
	}
	if err := s.Repo.InsertAPIKey(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Verify returns the key record for an active API key, touching its
// last_used_at, or nil when the key is unknown or inactive.
func (s *APIKeyService) Verify(ctx context.Context, apiKey string) (*models.APIKey, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	item, err := s.Repo.GetAPIKeyByValue(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if item == nil || !item.IsActive {
		return nil, nil
	}
	if err := s.Repo.TouchAPIKey(ctx, item.KeyID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *APIKeyService) ListByUser(ctx context.Context, userID string) ([]models.APIKey, error) {
	return s.Repo.ListAPIKeysByUser(ctx, userID)
}

func (s *APIKeyService) Deactivate(ctx context.Context, keyID string) (bool, error) {
	return s.Repo.DeactivateAPIKey(ctx, keyID)
}

// newKeyValue generates a 32-character key from a v4 UUID.
func newKeyValue() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
