package normalize

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/recapd/recap-cli/pkg/payload"
)

// dateOnly is the layout calendar providers use for all-day values.
const dateOnly = "2006-01-02"

// parseInstant parses an RFC 3339 instant, with or without fractional
// seconds.
func parseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing instant %q: %w", s, err)
	}
	return t, nil
}

// parseMailDate parses an RFC 5322 email Date header value.
func parseMailDate(s string) (time.Time, error) {
	t, err := mail.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing mail date %q: %w", s, err)
	}
	return t, nil
}

// parseEventTime normalizes a calendar start/end object. Providers send
// either {"dateTime": instant-with-offset} or {"date": "YYYY-MM-DD"} for
// all-day values; both map to the same Timestamp type with the AllDay flag
// carrying the distinction rather than coercing one form into the other.
func parseEventTime(v payload.Value) (Timestamp, error) {
	if s, ok := v.Get("dateTime").String(); ok {
		t, err := parseInstant(s)
		if err != nil {
			return Timestamp{}, err
		}
		return Timestamp{Time: t}, nil
	}
	if s, ok := v.Get("date").String(); ok {
		t, err := time.Parse(dateOnly, s)
		if err != nil {
			return Timestamp{}, fmt.Errorf("parsing all-day date %q: %w", s, err)
		}
		return Timestamp{Time: t, AllDay: true}, nil
	}
	return Timestamp{}, fmt.Errorf("event time carries neither dateTime nor date")
}

// setDuration computes end - start once, at extraction time, and records it
// in the entity extras. A negative range marks the duration invalid instead
// of emitting a negative number, and the problem lands on the entity's
// error list.
func (e *Entity) setDuration(start, end Timestamp) {
	d := end.Time.Sub(start.Time)
	if d < 0 {
		e.Extras["duration_minutes"] = float64(0)
		e.Extras["duration_valid"] = false
		e.addError(ErrKindTemporalRange, "end", fmt.Errorf("end %s precedes start %s", end.Time, start.Time))
		return
	}
	e.Extras["duration_minutes"] = d.Minutes()
	e.Extras["duration_valid"] = true
}

// inferOperation decides created-vs-updated from the create/update
// timestamps when the payload carries no explicit removal flag: equal
// instants mean the record was just created, anything else is an update.
func inferOperation(createdAt, updatedAt string) Operation {
	if createdAt == "" || updatedAt == "" {
		return OperationUnknown
	}
	ct, err1 := parseInstant(createdAt)
	ut, err2 := parseInstant(updatedAt)
	if err1 != nil || err2 != nil {
		if createdAt == updatedAt {
			return OperationCreated
		}
		return OperationUnknown
	}
	if ct.Equal(ut) {
		return OperationCreated
	}
	return OperationUpdated
}

// responseCounts tallies attendee response statuses into the fixed
// accepted/declined/needsAction/other breakdown.
func responseCounts(attendees []payload.Value) map[string]int {
	counts := map[string]int{
		"accepted":    0,
		"declined":    0,
		"needsAction": 0,
		"other":       0,
	}
	for _, a := range attendees {
		switch a.Get("responseStatus").StringOr("") {
		case "accepted":
			counts["accepted"]++
		case "declined":
			counts["declined"]++
		case "needsAction":
			counts["needsAction"]++
		default:
			counts["other"]++
		}
	}
	return counts
}
