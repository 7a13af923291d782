package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/quote-service/internal/domain"
	"github.com/spec-kit/quote-service/internal/persistence"
	"github.com/spec-kit/quote-service/internal/repository"
)

const (
	rateProfileKeyPrefix = "lookup:rate_profile:"
	activeRulesKey       = "lookup:calculation_rules"
)

// LookupSnapshots provides per-operation snapshots of the rate catalog and
// the active calculation rule set. Each call returns a fresh immutable
// value; nothing is held as process-wide mutable state.
type LookupSnapshots interface {
	RateProfileFor(ctx context.Context, organizationID string) (*domain.RateProfile, error)
	ActiveRules(ctx context.Context) ([]domain.QuoteCalculationRule, error)
}

// LookupService backs LookupSnapshots with Postgres, caching serialized
// snapshots in Redis for a bounded TTL. Cache failures fall through to the
// database; staleness is limited to the TTL.
type LookupService struct {
	rates  repository.RateProfileRepository
	rules  repository.CalculationRuleRepository
	cache  *persistence.Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewLookupService constructs the service. Cache may be nil (direct reads).
func NewLookupService(rates repository.RateProfileRepository, rules repository.CalculationRuleRepository, cache *persistence.Redis, ttl time.Duration, logger *zap.Logger) *LookupService {
	return &LookupService{rates: rates, rules: rules, cache: cache, ttl: ttl, logger: logger}
}

// RateProfileFor returns the active rate profile for an organization.
func (s *LookupService) RateProfileFor(ctx context.Context, organizationID string) (*domain.RateProfile, error) {
	key := rateProfileKeyPrefix + organizationID
	var cached domain.RateProfile
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	profile, err := s.rates.GetActiveByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, profile)
	return profile, nil
}

// ActiveRules returns the currently active calculation rules.
func (s *LookupService) ActiveRules(ctx context.Context) ([]domain.QuoteCalculationRule, error) {
	var cached []domain.QuoteCalculationRule
	if s.cacheGet(ctx, activeRulesKey, &cached) {
		return cached, nil
	}

	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, activeRulesKey, rules)
	return rules, nil
}

func (s *LookupService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil || s.cache.Client == nil || s.ttl <= 0 {
		return false
	}
	payload, err := s.cache.Client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		s.logger.Warn("discarding malformed lookup cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *LookupService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cache.Client == nil || s.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("unable to cache lookup snapshot", zap.String("key", key), zap.Error(err))
	}
}
