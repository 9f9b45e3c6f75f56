package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"openmic/internal/domain"
)

// defaultSlotDurationMinutes applies when no default_slot_duration entry is stored.
const defaultSlotDurationMinutes = 10

type configService struct {
	configRepo     domain.ConfigRepository
	contextTimeout time.Duration
}

func NewConfigService(configRepo domain.ConfigRepository, timeout time.Duration) domain.ConfigService {
	return &configService{configRepo: configRepo, contextTimeout: timeout}
}

func (s *configService) ListPublic(ctx context.Context) ([]*domain.Configuration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.configRepo.List(ctx, true)
}

func (s *configService) ListAll(ctx context.Context) ([]*domain.Configuration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.configRepo.List(ctx, false)
}

func (s *configService) Get(ctx context.Context, key domain.ConfigKey) (*domain.Configuration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.configRepo.Get(ctx, key)
}

// Set creates or replaces an entry. Omitted fields keep their stored values; a
// new entry must carry a value.
func (s *configService) Set(ctx context.Context, update domain.ConfigUpdate) (*domain.Configuration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !slices.Contains(domain.ConfigKeys(), update.Key) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownConfigKey, update.Key)
	}
	existing, err := s.configRepo.Get(ctx, update.Key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get config: %w", err)
	}

	cfg := &domain.Configuration{Key: update.Key}
	if existing != nil {
		cfg = existing
	}
	switch {
	case len(update.Value) > 0:
		value, err := domain.DecodeConfigValue(update.Key, update.Value)
		if err != nil {
			return nil, err
		}
		cfg.Value = value
	case existing == nil:
		return nil, fmt.Errorf("%w: value is required", domain.ErrInvalidInput)
	}
	if update.Description != nil {
		cfg.Description = strings.TrimSpace(*update.Description)
	}
	if update.IsPublic != nil {
		cfg.IsPublic = *update.IsPublic
	}
	if update.UpdatedBy != "" {
		by := update.UpdatedBy
		cfg.UpdatedBy = &by
	}
	cfg.UpdatedAt = time.Now()
	if err := s.configRepo.Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}
	return cfg, nil
}

func (s *configService) Delete(ctx context.Context, key domain.ConfigKey) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.configRepo.Delete(ctx, key)
}

func (s *configService) SignupPolicy(ctx context.Context) (domain.SignupPolicy, error) {
	cfg, err := s.Get(ctx, domain.KeySignupPolicy)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultSignupPolicy(), nil
	}
	if err != nil {
		return domain.SignupPolicy{}, err
	}
	policy, ok := cfg.Value.(domain.SignupPolicy)
	if !ok {
		return domain.SignupPolicy{}, fmt.Errorf("config %q holds %T", domain.KeySignupPolicy, cfg.Value)
	}
	return policy, nil
}

func (s *configService) DefaultSlotDuration(ctx context.Context) (int, error) {
	cfg, err := s.Get(ctx, domain.KeyDefaultSlotDuration)
	if errors.Is(err, domain.ErrNotFound) {
		return defaultSlotDurationMinutes, nil
	}
	if err != nil {
		return 0, err
	}
	d, ok := cfg.Value.(domain.DefaultSlotDuration)
	if !ok {
		return 0, fmt.Errorf("config %q holds %T", domain.KeyDefaultSlotDuration, cfg.Value)
	}
	return d.Minutes, nil
}
