package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateProfile is the organization-scoped hourly rate table. Read-only from
// the quote engine's perspective; profiles are activated and deactivated
// rather than edited in place.
type RateProfile struct {
	ID               string
	OrganizationID   string
	Name             string
	HourlyRateLow    decimal.Decimal
	HourlyRateMedium decimal.Decimal
	HourlyRateHigh   decimal.Decimal
	Active           bool
	CreatedAt        time.Time
}

// HourlyRateFor returns the rate for the given effort level.
func (p *RateProfile) HourlyRateFor(effort QuoteEffortLevel) decimal.Decimal {
	switch effort {
	case EffortLevelLow:
		return p.HourlyRateLow
	case EffortLevelHigh:
		return p.HourlyRateHigh
	default:
		return p.HourlyRateMedium
	}
}
