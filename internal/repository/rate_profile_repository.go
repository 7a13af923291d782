package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/quote-service/internal/domain"
)

// RateProfileRepository reads organization rate tables. Profiles are managed
// by an external admin surface; the engine only reads the active one.
type RateProfileRepository interface {
	GetActiveByOrganization(ctx context.Context, organizationID string) (*domain.RateProfile, error)
}

type rateProfileRepository struct {
	pool *pgxpool.Pool
}

// NewRateProfileRepository builds repository.
func NewRateProfileRepository(pool *pgxpool.Pool) RateProfileRepository {
	return &rateProfileRepository{pool: pool}
}

func (r *rateProfileRepository) GetActiveByOrganization(ctx context.Context, organizationID string) (*domain.RateProfile, error) {
	const query = `
        SELECT id, organization_id, name, hourly_rate_low, hourly_rate_medium, hourly_rate_high, active, created_at
        FROM rate_profiles WHERE organization_id=$1 AND active ORDER BY created_at DESC LIMIT 1`
	var profile domain.RateProfile
	if err := r.pool.QueryRow(ctx, query, organizationID).Scan(
		&profile.ID,
		&profile.OrganizationID,
		&profile.Name,
		&profile.HourlyRateLow,
		&profile.HourlyRateMedium,
		&profile.HourlyRateHigh,
		&profile.Active,
		&profile.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}
