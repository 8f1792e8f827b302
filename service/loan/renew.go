package loansvc

import "time"

// A librarian may push a due date out at most four weeks from the
// submission day.
const maxRenewalDays = 28

// Field messages surfaced verbatim on the renewal form.
const (
	MsgRenewalInPast = "Invalid date - renewal in past"
	MsgRenewalTooFar = "Invalid date - renewal more than 4 weeks ahead"
)

// ValidateRenewalDate accepts a candidate due date lying between today
// (inclusive) and today plus four weeks (inclusive). Both arguments are
// treated as calendar dates; time of day and zone are ignored. The
// caller supplies today so the decision stays deterministic.
func ValidateRenewalDate(candidate, today time.Time) error {
	c := dateOnly(candidate)
	now := dateOnly(today)
	if c.Before(now) {
		return makeErr(ErrRenewalInPast)
	}
	if c.After(now.AddDate(0, 0, maxRenewalDays)) {
		return makeErr(ErrRenewalTooFarAhead)
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
