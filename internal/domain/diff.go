package domain

import "github.com/shopspring/decimal"

// Revision field identifiers. These are contract values surfaced to API
// consumers in revision history rows, not Go field names.
const (
	FieldEstimatedHoursMinimum = "estimatedHoursMinimum"
	FieldEstimatedHoursMaximum = "estimatedHoursMaximum"
	FieldHourlyRate            = "hourlyRate"
	FieldFixedCost             = "fixedCost"
	FieldEffortLevel           = "quoteEffortLevelId"
	FieldConfidenceLevel       = "quoteConfidenceLevelId"
)

// QuoteChangeSet is a partial update against a quote version. Nil fields are
// carried forward unchanged from the base version.
type QuoteChangeSet struct {
	EstimatedHoursMinimum *decimal.Decimal
	EstimatedHoursMaximum *decimal.Decimal
	HourlyRate            *decimal.Decimal
	FixedCost             *decimal.Decimal
	EffortLevel           *QuoteEffortLevel
	ConfidenceLevel       *QuoteConfidenceLevel
}

// FieldChange records one field transition produced by an update.
type FieldChange struct {
	FieldName string
	OldValue  string
	NewValue  string
}

// ApplyChanges merges a change set onto a base quote, returning the figures
// for the next version plus one FieldChange per field that actually changed.
// Numeric fields compare by value, not by string form, so re-submitting
// "85.00" over "85" records no revision.
func ApplyChanges(base *Quote, changes QuoteChangeSet) (QuoteFigures, []FieldChange) {
	next := base.Figures()
	var changed []FieldChange

	if changes.EstimatedHoursMinimum != nil && !changes.EstimatedHoursMinimum.Equal(next.EstimatedHoursMinimum) {
		changed = append(changed, FieldChange{
			FieldName: FieldEstimatedHoursMinimum,
			OldValue:  next.EstimatedHoursMinimum.String(),
			NewValue:  changes.EstimatedHoursMinimum.String(),
		})
		next.EstimatedHoursMinimum = *changes.EstimatedHoursMinimum
	}
	if changes.EstimatedHoursMaximum != nil && !changes.EstimatedHoursMaximum.Equal(next.EstimatedHoursMaximum) {
		changed = append(changed, FieldChange{
			FieldName: FieldEstimatedHoursMaximum,
			OldValue:  next.EstimatedHoursMaximum.String(),
			NewValue:  changes.EstimatedHoursMaximum.String(),
		})
		next.EstimatedHoursMaximum = *changes.EstimatedHoursMaximum
	}
	if changes.HourlyRate != nil && !changes.HourlyRate.Equal(next.HourlyRate) {
		changed = append(changed, FieldChange{
			FieldName: FieldHourlyRate,
			OldValue:  next.HourlyRate.String(),
			NewValue:  changes.HourlyRate.String(),
		})
		next.HourlyRate = *changes.HourlyRate
	}
	if changes.FixedCost != nil && !changes.FixedCost.Equal(next.FixedCost) {
		changed = append(changed, FieldChange{
			FieldName: FieldFixedCost,
			OldValue:  next.FixedCost.String(),
			NewValue:  changes.FixedCost.String(),
		})
		next.FixedCost = *changes.FixedCost
	}
	if changes.EffortLevel != nil && *changes.EffortLevel != next.EffortLevel {
		changed = append(changed, FieldChange{
			FieldName: FieldEffortLevel,
			OldValue:  string(next.EffortLevel),
			NewValue:  string(*changes.EffortLevel),
		})
		next.EffortLevel = *changes.EffortLevel
	}
	if changes.ConfidenceLevel != nil && !confidenceEqual(next.ConfidenceLevel, changes.ConfidenceLevel) {
		changed = append(changed, FieldChange{
			FieldName: FieldConfidenceLevel,
			OldValue:  confidenceString(next.ConfidenceLevel),
			NewValue:  string(*changes.ConfidenceLevel),
		})
		level := *changes.ConfidenceLevel
		next.ConfidenceLevel = &level
	}

	return next, changed
}

func confidenceEqual(a, b *QuoteConfidenceLevel) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func confidenceString(level *QuoteConfidenceLevel) string {
	if level == nil {
		return ""
	}
	return string(*level)
}
