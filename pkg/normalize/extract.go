package normalize

import (
	"fmt"

	"github.com/recapd/recap-cli/pkg/payload"
)

// extractor is a pure function from a payload body to a normalized entity.
type extractor func(e *Entity, body payload.Value)

var extractors = map[Shape]extractor{
	ShapeEmail:               extractEmail,
	ShapeAlertEmail:          extractAlertEmail,
	ShapeCalendarEvent:       extractCalendarEvent,
	ShapeMeeting:             extractMeeting,
	ShapeWorkingLocation:     extractWorkingLocation,
	ShapeDriveFile:           extractDriveFile,
	ShapeDriveDeletion:       extractDriveDeletion,
	ShapeContact:             extractContact,
	ShapeCompany:             extractCompany,
	ShapeDeal:                extractDeal,
	ShapeCRMRecord:           extractCRMRecord,
	ShapeTeamsActivity:       extractTeamsActivity,
	ShapeChatCreated:         extractChatCreated,
	ShapeOneDriveFile:        extractOneDriveFile,
	ShapeOutlookMessage:      extractOutlookMessage,
	ShapeOutlookEventRemoval: extractOutlookEventRemoval,
}

// Extract runs the shape extractor for the given classification over the
// payload and returns the normalized entity. Field-level problems degrade
// gracefully onto the entity's error list; only an unknown shape tag is a
// hard error.
func Extract(doc *payload.Doc, c Classification) (*Entity, error) {
	fn, ok := extractors[c.Shape]
	if !ok {
		return nil, fmt.Errorf("no extractor for shape %q: %w", c.Shape, ErrUnrecognizedShape)
	}

	e := &Entity{
		Classification: c,
		Extras:         make(map[string]any),
	}
	fn(e, doc.Unwrap())
	return e, nil
}

// setInstant parses an RFC 3339 field into a named timestamp, leaving it
// absent and recording a decode error when the value does not parse.
func (e *Entity) setInstant(key TimestampKey, field string, v payload.Value) {
	s, ok := v.String()
	if !ok {
		return
	}
	t, err := parseInstant(s)
	if err != nil {
		e.addError(ErrKindDecode, field, err)
		return
	}
	e.setTime(key, Timestamp{Time: t})
}

// addParticipant records a participant. Entries with no identifier are
// skipped rather than recorded with a placeholder.
func (e *Entity) addParticipant(role Role, identifier, displayName string) {
	if identifier == "" {
		return
	}
	e.Participants = append(e.Participants, Participant{
		Role:        role,
		Identifier:  identifier,
		DisplayName: displayName,
	})
}
