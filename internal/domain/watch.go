package domain

import "time"

// Threshold names a band of "days remaining" before a claim filing deadline.
type Threshold string

const (
	ThresholdPassed Threshold = "passed"
	ThresholdDay7   Threshold = "day_7"
	ThresholdDay30  Threshold = "day_30"
	ThresholdDay60  Threshold = "day_60"
)

func (t Threshold) String() string {
	return string(t)
}

// thresholdBand is one entry of the ordered band table. Bands are evaluated
// in order and the first match wins, so exclusivity is a property of the
// table, not of branch ordering at call sites.
type thresholdBand struct {
	name    Threshold
	matches func(remaining int) bool
}

var thresholdBands = []thresholdBand{
	{ThresholdPassed, func(r int) bool { return r <= 0 }},
	{ThresholdDay7, func(r int) bool { return r <= 7 }},
	{ThresholdDay30, func(r int) bool { return r <= 30 }},
	{ThresholdDay60, func(r int) bool { return r <= 60 }},
}

// ClassifyRemaining maps whole days remaining until the deadline to exactly
// one threshold band. ok is false when no band applies (more than 60 days
// out).
func ClassifyRemaining(remaining int) (band Threshold, ok bool) {
	for _, b := range thresholdBands {
		if b.matches(remaining) {
			return b.name, true
		}
	}
	return "", false
}

// DeadlineWatch tracks the filing window for one insurance claim.
// SentFlags is monotonic: once a band's flag is set it never reverts, and
// only the state writer flips it.
type DeadlineWatch struct {
	ID             string
	RecipientID    string
	RecipientEmail string
	PetName        string
	Provider       string
	ReferenceDate  time.Time // service date
	WindowDays     int
	SentFlags      map[Threshold]bool
}

// Deadline is the last filing date: reference date plus the filing window.
func (w *DeadlineWatch) Deadline() time.Time {
	return truncateToDate(w.ReferenceDate).AddDate(0, 0, w.WindowDays)
}

// RemainingDays is the whole-day count from today (date only) to the
// deadline. Negative once the deadline has passed.
func (w *DeadlineWatch) RemainingDays(today time.Time) int {
	d := w.Deadline().Sub(truncateToDate(today))
	return int(d.Hours() / 24)
}

// DueBand returns the threshold band this watch should fire for today, or
// ok=false when no band matches or the matching band was already sent.
func (w *DeadlineWatch) DueBand(today time.Time) (Threshold, bool) {
	band, ok := ClassifyRemaining(w.RemainingDays(today))
	if !ok {
		return "", false
	}
	if w.SentFlags[band] {
		return "", false
	}
	return band, true
}
