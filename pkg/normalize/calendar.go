package normalize

import (
	"github.com/recapd/recap-cli/pkg/payload"
)

// extractCalendarEvent normalizes a Google Calendar event: id, summary,
// start/end (instant or all-day), organizer, attendees, location, status.
func extractCalendarEvent(e *Entity, body payload.Value) {
	if id, ok := body.Get("id").String(); ok {
		e.SetID(id)
	}

	if summary, ok := body.Get("summary").String(); ok {
		e.Extras["title"] = summary
	}
	if desc, ok := body.Get("description").String(); ok {
		e.Extras["description"] = desc
	}
	if loc, ok := body.Get("location").String(); ok {
		e.Extras["location"] = loc
	}
	if status, ok := body.Get("status").String(); ok {
		e.Extras["status"] = status
	}

	e.setInstant(TimeCreated, "created", body.Get("created"))
	e.setInstant(TimeModified, "updated", body.Get("updated"))
	extractEventWindow(e, body)

	if organizer := body.Get("organizer"); organizer.Present() {
		e.addParticipant(RoleOrganizer,
			organizer.Get("email").StringOr(""),
			organizer.Get("displayName").StringOr(""))
	}
	if creator := body.Get("creator"); creator.Present() {
		e.addParticipant(RoleCreator,
			creator.Get("email").StringOr(""),
			creator.Get("displayName").StringOr(""))
	}
	if attendees, ok := body.Get("attendees").Array(); ok {
		for _, a := range attendees {
			if organizer, _ := a.Get("organizer").Bool(); organizer {
				continue // already captured from the organizer field
			}
			e.addParticipant(RoleAttendee,
				a.Get("email").StringOr(""),
				a.Get("displayName").StringOr(""))
		}
		e.Extras["response_counts"] = responseCounts(attendees)
	}

	if e.Classification.Operation == OperationUnknown {
		if body.Get("status").StringOr("") == "cancelled" {
			e.Classification.Operation = OperationDeleted
		} else {
			e.Classification.Operation = inferOperation(
				body.Get("created").StringOr(""),
				body.Get("updated").StringOr(""))
		}
	}
}

// extractMeeting extends the calendar extraction with conference details:
// solution name and the video entry-point URI.
func extractMeeting(e *Entity, body payload.Value) {
	extractCalendarEvent(e, body)

	conf := body.Get("conferenceData")
	if name, ok := conf.Get("conferenceSolution", "name").String(); ok {
		e.Extras["conference_solution"] = name
	}
	if entries, ok := conf.Get("entryPoints").Array(); ok {
		for _, entry := range entries {
			if entry.Get("entryPointType").StringOr("") == "video" {
				if uri, ok := entry.Get("uri").String(); ok {
					e.Extras["conference_uri"] = uri
				}
				break
			}
		}
	}
}

// extractWorkingLocation normalizes a working-location calendar event. The
// location type comes from workingLocationProperties.type; the summary is
// the user-facing label.
func extractWorkingLocation(e *Entity, body payload.Value) {
	if id, ok := body.Get("id").String(); ok {
		e.SetID(id)
	}

	if summary, ok := body.Get("summary").String(); ok {
		e.Extras["location_label"] = summary
	}
	if locType, ok := body.Get("workingLocationProperties", "type").String(); ok {
		e.Extras["location_type"] = locType
	}
	if status, ok := body.Get("status").String(); ok {
		e.Extras["status"] = status
	}

	e.setInstant(TimeCreated, "created", body.Get("created"))
	extractEventWindow(e, body)

	if creator := body.Get("creator"); creator.Present() {
		e.addParticipant(RoleCreator,
			creator.Get("email").StringOr(""),
			creator.Get("displayName").StringOr(""))
	}

	e.Classification.Operation = inferOperation(
		body.Get("created").StringOr(""),
		body.Get("updated").StringOr(""))
	if e.Classification.Operation == OperationUnknown {
		// Working-location payloads often omit the update timestamp; a
		// create timestamp alone still marks a creation.
		if body.Get("created").Present() {
			e.Classification.Operation = OperationCreated
		}
	}
}

// extractEventWindow parses the start/end window and derives the duration
// once, at extraction time.
func extractEventWindow(e *Entity, body payload.Value) {
	var start, end Timestamp
	var haveStart, haveEnd bool

	if v := body.Get("start"); v.Present() {
		ts, err := parseEventTime(v)
		if err != nil {
			e.addError(ErrKindDecode, "start", err)
		} else {
			start, haveStart = ts, true
			e.setTime(TimeStart, ts)
		}
	}
	if v := body.Get("end"); v.Present() {
		ts, err := parseEventTime(v)
		if err != nil {
			e.addError(ErrKindDecode, "end", err)
		} else {
			end, haveEnd = ts, true
			e.setTime(TimeEnd, ts)
		}
	}

	if haveStart && haveEnd {
		e.Extras["all_day"] = start.AllDay
		e.setDuration(start, end)
	}
}
