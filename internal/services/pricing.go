package services

import (
	"math"
	"time"

	"fleetrent/internal/common"
)

// Extensions are sold one to three days at a time.
const (
	MinExtensionDays = 1
	MaxExtensionDays = 3
)

const day = 24 * time.Hour

// DayCount returns the number of billable days between start and end, counting both the start
// and the end calendar day. Partial days round up.
func DayCount(start, end time.Time) int {
	return int(math.Ceil(float64(end.Sub(start))/float64(day))) + 1
}

// RoundCurrency rounds amount to two decimals.
func RoundCurrency(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ComputePrice prices a booking as billable days times the daily rate.
func ComputePrice(dailyRate float64, start, end time.Time) (float64, error) {
	if dailyRate < 0 {
		return 0, common.ValidationError("daily_rate", "cannot be negative")
	}
	days := DayCount(start, end)
	if days <= 0 {
		return 0, common.ValidationError("end_date", "must not be before start date")
	}
	return RoundCurrency(float64(days) * dailyRate), nil
}

// ExtensionPrice prices an extension from its own day count only.
func ExtensionPrice(dailyRate float64, days int) (float64, error) {
	if days < MinExtensionDays || days > MaxExtensionDays {
		return 0, common.ValidationError("days", "extension must be between 1 and 3 days")
	}
	if dailyRate < 0 {
		return 0, common.ValidationError("daily_rate", "cannot be negative")
	}
	return RoundCurrency(float64(days) * dailyRate), nil
}
