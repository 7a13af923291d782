package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/quote-service/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:               "ticket-1",
		OrganizationID:   "org-1",
		TicketTypeID:     "type-bug",
		TicketSeverityID: "sev-high",
		BusinessImpactID: "impact-major",
	}
}

func testProfile() *domain.RateProfile {
	return &domain.RateProfile{
		ID:               "profile-1",
		OrganizationID:   "org-1",
		Name:             "standard",
		HourlyRateLow:    dec("40"),
		HourlyRateMedium: dec("60"),
		HourlyRateHigh:   dec("85"),
		Active:           true,
	}
}

func activeRule(mutate func(*domain.QuoteCalculationRule)) domain.QuoteCalculationRule {
	rule := domain.QuoteCalculationRule{
		ID:                    "rule-1",
		EstimatedHoursMinimum: dec("4"),
		EstimatedHoursMaximum: dec("10"),
		EffortLevel:           domain.EffortLevelHigh,
		ConfidenceLevel:       domain.ConfidenceLevelMedium,
		Active:                true,
		ActivatedAt:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if mutate != nil {
		mutate(&rule)
	}
	return rule
}

func TestCalculateDraft(t *testing.T) {
	calc := NewQuoteCalculator()

	t.Run("derives figures from the matching rule and profile rate", func(t *testing.T) {
		figures, err := calc.CalculateDraft(testTicket(), testProfile(), []domain.QuoteCalculationRule{activeRule(nil)})
		require.NoError(t, err)

		require.True(t, figures.EstimatedHoursMinimum.Equal(dec("4")))
		require.True(t, figures.EstimatedHoursMaximum.Equal(dec("10")))
		require.True(t, figures.HourlyRate.Equal(dec("85")), "high effort uses the high rate column")
		require.True(t, figures.FixedCost.IsZero(), "generated quotes carry no fixed cost")
		require.Equal(t, domain.EffortLevelHigh, figures.EffortLevel)
		require.NotNil(t, figures.ConfidenceLevel)
		require.Equal(t, domain.ConfidenceLevelMedium, *figures.ConfidenceLevel)
		require.True(t, figures.ResolutionMultiplier.Equal(decimal.NewFromInt(1)))

		cost := figures.FixedCost.Add(figures.HourlyRate.Mul(figures.EstimatedHoursMaximum))
		require.True(t, cost.Equal(dec("850")))
	})

	t.Run("no matching rule", func(t *testing.T) {
		typeOther := "type-feature"
		rules := []domain.QuoteCalculationRule{
			activeRule(func(r *domain.QuoteCalculationRule) { r.TicketTypeID = &typeOther }),
		}
		_, err := calc.CalculateDraft(testTicket(), testProfile(), rules)
		require.ErrorIs(t, err, domain.ErrNoApplicableRule)
	})

	t.Run("inactive rules are skipped", func(t *testing.T) {
		rules := []domain.QuoteCalculationRule{
			activeRule(func(r *domain.QuoteCalculationRule) { r.Active = false }),
		}
		_, err := calc.CalculateDraft(testTicket(), testProfile(), rules)
		require.ErrorIs(t, err, domain.ErrNoApplicableRule)
	})

	t.Run("more specific rule wins", func(t *testing.T) {
		typeBug := "type-bug"
		sevHigh := "sev-high"
		rules := []domain.QuoteCalculationRule{
			activeRule(func(r *domain.QuoteCalculationRule) {
				r.ID = "wildcard"
				r.EstimatedHoursMinimum = dec("1")
				r.EstimatedHoursMaximum = dec("2")
				r.EffortLevel = domain.EffortLevelLow
			}),
			activeRule(func(r *domain.QuoteCalculationRule) {
				r.ID = "specific"
				r.TicketTypeID = &typeBug
				r.TicketSeverityID = &sevHigh
			}),
		}
		figures, err := calc.CalculateDraft(testTicket(), testProfile(), rules)
		require.NoError(t, err)
		require.Equal(t, domain.EffortLevelHigh, figures.EffortLevel)
		require.True(t, figures.EstimatedHoursMaximum.Equal(dec("10")))
	})

	t.Run("specificity tie goes to the most recently activated rule", func(t *testing.T) {
		typeBug := "type-bug"
		rules := []domain.QuoteCalculationRule{
			activeRule(func(r *domain.QuoteCalculationRule) {
				r.ID = "older"
				r.TicketTypeID = &typeBug
				r.EffortLevel = domain.EffortLevelLow
			}),
			activeRule(func(r *domain.QuoteCalculationRule) {
				r.ID = "newer"
				r.TicketTypeID = &typeBug
				r.EffortLevel = domain.EffortLevelMedium
				r.ActivatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
			}),
		}
		figures, err := calc.CalculateDraft(testTicket(), testProfile(), rules)
		require.NoError(t, err)
		require.Equal(t, domain.EffortLevelMedium, figures.EffortLevel)
		require.True(t, figures.HourlyRate.Equal(dec("60")))
	})

	t.Run("rule multiplier carries into the figures", func(t *testing.T) {
		multiplier := dec("1.5")
		rules := []domain.QuoteCalculationRule{
			activeRule(func(r *domain.QuoteCalculationRule) { r.ResolutionMultiplier = &multiplier }),
		}
		figures, err := calc.CalculateDraft(testTicket(), testProfile(), rules)
		require.NoError(t, err)
		require.True(t, figures.ResolutionMultiplier.Equal(multiplier))
	})
}
