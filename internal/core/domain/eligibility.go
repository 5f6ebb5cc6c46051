package domain

import (
	"math"

	"github.com/google/uuid"
)

type SpendEligibility struct {
	UserID             uuid.UUID `json:"user_id"`
	BrandID            uuid.UUID `json:"brand_id"`
	SpentAmount        float64   `json:"spent_amount"`
	Threshold          float64   `json:"threshold"`
	WindowMonths       int       `json:"window_months"`
	Eligible           bool      `json:"eligible"`
	ProgressPercentage float64   `json:"progress_percentage"`
}

// NewSpendEligibility derives eligibility from a spend total. A non-positive
// threshold is always met.
func NewSpendEligibility(userID, brandID uuid.UUID, spent, threshold float64, windowMonths int) SpendEligibility {
	e := SpendEligibility{
		UserID:       userID,
		BrandID:      brandID,
		SpentAmount:  spent,
		Threshold:    threshold,
		WindowMonths: windowMonths,
	}
	if threshold <= 0 {
		e.Eligible = true
		e.ProgressPercentage = 100
		return e
	}
	e.Eligible = spent >= threshold
	e.ProgressPercentage = math.Max(0, math.Min(100, 100*spent/threshold))
	return e
}
