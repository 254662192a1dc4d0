package session

import "time"

const DefaultFullDayTarget = 9 * time.Hour

// Policy holds the attendance rules shared by the ledger, calendar and dashboard.
type Policy struct {
	Location      *time.Location
	FullDayTarget time.Duration
}

func NewPolicy(loc *time.Location, target time.Duration) Policy {
	if loc == nil {
		loc = time.UTC
	}
	if target <= 0 {
		target = DefaultFullDayTarget
	}
	return Policy{Location: loc, FullDayTarget: target}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// DateOf returns the business date of t as midnight UTC, matching how DATE columns are scanned.
func (p Policy) DateOf(t time.Time) time.Time {
	y, m, d := t.In(p.location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the instant the business date begins in the policy time zone.
func (p Policy) StartOfDay(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.location())
}

// EndOfDay returns local midnight following date.
func (p Policy) EndOfDay(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, p.location())
}

func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MeasureAt returns the instant an open session is measured at. A session still open
// past its business day stops accruing at EndOfDay, the instant it is auto closed at.
func (p Policy) MeasureAt(ws WorkSession, now time.Time) time.Time {
	if ws.IsOpen() {
		if end := p.EndOfDay(ws.Date); now.After(end) {
			return end
		}
	}
	return now
}

// Account measures ws at now against the full day target.
func (p Policy) Account(ws WorkSession, now time.Time) Accounting {
	return ws.Account(p.MeasureAt(ws, now), p.FullDayTarget)
}

// IsStale reports whether ws is still open although its business day is over at now.
func (p Policy) IsStale(ws WorkSession, now time.Time) bool {
	return ws.IsOpen() && !now.Before(p.EndOfDay(ws.Date))
}
