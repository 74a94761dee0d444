// Package attribution decides whether a purchase is credited to the store
// that sampled the customer, and computes the resulting commission. It is a
// pure function layer: it reads timestamps, never storage.
package attribution

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reasons explain non-attribution; absence of attribution is a normal
// outcome, never an error.
const (
	ReasonAttributed    = "attributed"
	ReasonNoSample      = "no sample on record"
	ReasonNoStore       = "no attributed store on record"
	ReasonBeforeSample  = "purchase predates sample"
	ReasonOutsideWindow = "purchase outside attribution window"
)

// Decision is the structured outcome of an attribution evaluation.
type Decision struct {
	Attributed       bool   `json:"attributed"`
	Reason           string `json:"reason"`
	DaysToConversion int    `json:"days_to_conversion"`
}

// Evaluate applies the attribution rule: the customer has a sample date and
// an attributed store, and the purchase falls within [0, windowDays] whole
// days of the sample. Both ends are inclusive; day windowDays qualifies,
// day windowDays+1 does not, and a purchase before the sample never does.
func Evaluate(sampleDate *time.Time, attributedStoreID *uuid.UUID, purchaseDate time.Time, windowDays int) Decision {
	if sampleDate == nil {
		return Decision{Reason: ReasonNoSample}
	}
	if attributedStoreID == nil || *attributedStoreID == uuid.Nil {
		return Decision{Reason: ReasonNoStore}
	}

	days := wholeDaysBetween(*sampleDate, purchaseDate)
	if days < 0 {
		return Decision{Reason: ReasonBeforeSample, DaysToConversion: days}
	}
	if days > windowDays {
		return Decision{Reason: ReasonOutsideWindow, DaysToConversion: days}
	}
	return Decision{Attributed: true, Reason: ReasonAttributed, DaysToConversion: days}
}

// Commission computes orderTotal × ratePercent / 100 in cents, rounded to
// the nearest cent.
func Commission(orderTotalCents int, ratePercent int) int {
	total := decimal.NewFromInt(int64(orderTotalCents))
	rate := decimal.NewFromInt(int64(ratePercent)).Div(decimal.NewFromInt(100))
	return int(total.Mul(rate).Round(0).IntPart())
}

// wholeDaysBetween counts calendar-day boundaries between the two instants,
// so a sample at 23:59 and a purchase at 00:01 the next day are one day
// apart.
func wholeDaysBetween(from, to time.Time) int {
	fromDay := truncateToDay(from)
	toDay := truncateToDay(to)
	return int(toDay.Sub(fromDay).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
