package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/quote-service/internal/domain"
)

// CalculationRuleRepository reads the active rule set used for quote
// auto-generation.
type CalculationRuleRepository interface {
	ListActive(ctx context.Context) ([]domain.QuoteCalculationRule, error)
}

type calculationRuleRepository struct {
	pool *pgxpool.Pool
}

// NewCalculationRuleRepository builds repository.
func NewCalculationRuleRepository(pool *pgxpool.Pool) CalculationRuleRepository {
	return &calculationRuleRepository{pool: pool}
}

func (r *calculationRuleRepository) ListActive(ctx context.Context) ([]domain.QuoteCalculationRule, error) {
	const query = `
        SELECT id, ticket_type_id, ticket_severity_id, business_impact_id,
               estimated_hours_min, estimated_hours_max, effort_level, confidence_level,
               resolution_multiplier, active, activated_at, created_at
        FROM quote_calculation_rules WHERE active ORDER BY activated_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.QuoteCalculationRule
	for rows.Next() {
		var rule domain.QuoteCalculationRule
		if err := rows.Scan(
			&rule.ID,
			&rule.TicketTypeID,
			&rule.TicketSeverityID,
			&rule.BusinessImpactID,
			&rule.EstimatedHoursMinimum,
			&rule.EstimatedHoursMaximum,
			&rule.EffortLevel,
			&rule.ConfidenceLevel,
			&rule.ResolutionMultiplier,
			&rule.Active,
			&rule.ActivatedAt,
			&rule.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}
