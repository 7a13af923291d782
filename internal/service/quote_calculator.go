package service

import (
	"github.com/shopspring/decimal"

	"github.com/spec-kit/quote-service/internal/domain"
)

// QuoteCalculator turns ticket attributes into draft quote figures using the
// organization's rate profile and the active calculation rule set. It is
// pure: no I/O, no mutation of its inputs.
type QuoteCalculator struct{}

// NewQuoteCalculator constructs the calculator.
func NewQuoteCalculator() *QuoteCalculator {
	return &QuoteCalculator{}
}

// CalculateDraft selects the best-matching active rule and derives draft
// figures from it. Fixed cost is always 0 for generated quotes; the hourly
// rate comes from the profile's column for the rule's effort level.
func (c *QuoteCalculator) CalculateDraft(ticket *domain.Ticket, profile *domain.RateProfile, rules []domain.QuoteCalculationRule) (domain.QuoteFigures, error) {
	rule := selectRule(ticket, rules)
	if rule == nil {
		return domain.QuoteFigures{}, domain.ErrNoApplicableRule
	}

	confidence := rule.ConfidenceLevel
	multiplier := decimal.NewFromInt(1)
	if rule.ResolutionMultiplier != nil {
		multiplier = *rule.ResolutionMultiplier
	}

	figures := domain.QuoteFigures{
		EstimatedHoursMinimum: rule.EstimatedHoursMinimum,
		EstimatedHoursMaximum: rule.EstimatedHoursMaximum,
		HourlyRate:            profile.HourlyRateFor(rule.EffortLevel),
		FixedCost:             decimal.Zero,
		EffortLevel:           rule.EffortLevel,
		ConfidenceLevel:       &confidence,
		ResolutionMultiplier:  multiplier,
	}
	if err := figures.Validate(); err != nil {
		return domain.QuoteFigures{}, err
	}
	return figures, nil
}

// selectRule picks the matching rule with the most non-wildcard key fields,
// breaking ties by most recent activation.
func selectRule(ticket *domain.Ticket, rules []domain.QuoteCalculationRule) *domain.QuoteCalculationRule {
	var best *domain.QuoteCalculationRule
	for i := range rules {
		rule := &rules[i]
		if !rule.Active || !rule.Matches(ticket) {
			continue
		}
		if best == nil {
			best = rule
			continue
		}
		switch {
		case rule.Specificity() > best.Specificity():
			best = rule
		case rule.Specificity() == best.Specificity() && rule.ActivatedAt.After(best.ActivatedAt):
			best = rule
		}
	}
	return best
}
