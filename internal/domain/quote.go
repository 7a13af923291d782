package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteEffortLevel enumerates estimated delivery effort.
type QuoteEffortLevel string

const (
	EffortLevelLow    QuoteEffortLevel = "LOW"
	EffortLevelMedium QuoteEffortLevel = "MEDIUM"
	EffortLevelHigh   QuoteEffortLevel = "HIGH"
)

// QuoteConfidenceLevel enumerates how certain the estimate is. Manual
// quotes may omit it.
type QuoteConfidenceLevel string

const (
	ConfidenceLevelLow    QuoteConfidenceLevel = "LOW"
	ConfidenceLevelMedium QuoteConfidenceLevel = "MEDIUM"
	ConfidenceLevelHigh   QuoteConfidenceLevel = "HIGH"
)

// Quote is one version of a cost/time estimate for a ticket. Versions are
// strictly increasing per ticket starting at 1; superseded versions are
// retained for audit and never deleted.
type Quote struct {
	ID                    string
	TicketID              string
	Version               int
	EstimatedHoursMinimum decimal.Decimal
	EstimatedHoursMaximum decimal.Decimal
	HourlyRate            decimal.Decimal
	FixedCost             decimal.Decimal
	EffortLevel           QuoteEffortLevel
	ConfidenceLevel       *QuoteConfidenceLevel
	ResolutionMultiplier  decimal.Decimal
	CreatedByID           string
	CreatedAt             time.Time
}

// EstimatedCost derives the quoted cost from the upper hour bound so the
// estimate never under-quotes. Always recomputed, never stored.
func (q *Quote) EstimatedCost() decimal.Decimal {
	return q.FixedCost.Add(q.HourlyRate.Mul(q.EstimatedHoursMaximum))
}

// EstimatedResolutionHours derives the expected resolution time from the
// upper hour bound, scaled by the calculation rule's multiplier when one
// applied (1 otherwise). Always recomputed, never stored.
func (q *Quote) EstimatedResolutionHours() decimal.Decimal {
	multiplier := q.ResolutionMultiplier
	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}
	return q.EstimatedHoursMaximum.Mul(multiplier)
}

// Figures returns the independently supplied estimate fields.
func (q *Quote) Figures() QuoteFigures {
	return QuoteFigures{
		EstimatedHoursMinimum: q.EstimatedHoursMinimum,
		EstimatedHoursMaximum: q.EstimatedHoursMaximum,
		HourlyRate:            q.HourlyRate,
		FixedCost:             q.FixedCost,
		EffortLevel:           q.EffortLevel,
		ConfidenceLevel:       q.ConfidenceLevel,
		ResolutionMultiplier:  q.ResolutionMultiplier,
	}
}

// QuoteFigures is the supplied (non-derived) portion of a quote.
type QuoteFigures struct {
	EstimatedHoursMinimum decimal.Decimal
	EstimatedHoursMaximum decimal.Decimal
	HourlyRate            decimal.Decimal
	FixedCost             decimal.Decimal
	EffortLevel           QuoteEffortLevel
	ConfidenceLevel       *QuoteConfidenceLevel
	ResolutionMultiplier  decimal.Decimal
}

// Validate enforces the figure invariants: non-negative money and hours,
// minimum <= maximum, known effort and confidence levels.
func (f QuoteFigures) Validate() error {
	if f.EstimatedHoursMinimum.IsNegative() || f.EstimatedHoursMaximum.IsNegative() {
		return ErrInvalidQuoteFigures
	}
	if f.EstimatedHoursMinimum.GreaterThan(f.EstimatedHoursMaximum) {
		return ErrInvalidQuoteFigures
	}
	if f.HourlyRate.IsNegative() || f.FixedCost.IsNegative() {
		return ErrInvalidQuoteFigures
	}
	if f.ResolutionMultiplier.IsNegative() {
		return ErrInvalidQuoteFigures
	}
	switch f.EffortLevel {
	case EffortLevelLow, EffortLevelMedium, EffortLevelHigh:
	default:
		return ErrInvalidQuoteFigures
	}
	if f.ConfidenceLevel != nil {
		switch *f.ConfidenceLevel {
		case ConfidenceLevelLow, ConfidenceLevelMedium, ConfidenceLevelHigh:
		default:
			return ErrInvalidQuoteFigures
		}
	}
	return nil
}
