// Package normalize turns raw provider webhook payloads into shape-tagged,
// provider-independent entity records. It covers classification (which of
// the known event shapes a payload matches) and extraction (pulling the
// normalized fields and shape-specific derived data out of the payload).
package normalize

import (
	"errors"
	"fmt"
	"time"
)

// Shape identifies one of the known event-payload taxonomies.
type Shape string

const (
	ShapeEmail               Shape = "email"
	ShapeAlertEmail          Shape = "alert_email"
	ShapeCalendarEvent       Shape = "calendar_event"
	ShapeMeeting             Shape = "meeting"
	ShapeWorkingLocation     Shape = "working_location"
	ShapeDriveFile           Shape = "drive_file"
	ShapeDriveDeletion       Shape = "drive_deletion"
	ShapeContact             Shape = "contact"
	ShapeCompany             Shape = "company"
	ShapeDeal                Shape = "deal"
	ShapeCRMRecord           Shape = "crm_record"
	ShapeTeamsActivity       Shape = "teams_activity"
	ShapeChatCreated         Shape = "chat_created"
	ShapeOneDriveFile        Shape = "onedrive_file"
	ShapeOutlookMessage      Shape = "outlook_message"
	ShapeOutlookEventRemoval Shape = "outlook_event_removal"
)

// ArtifactName returns the fixed output artifact name for the shape.
func (s Shape) ArtifactName() string {
	switch s {
	case ShapeEmail:
		return "email_summary.md"
	case ShapeAlertEmail:
		return "system_alert_summary.md"
	case ShapeCalendarEvent:
		return "calendar_event_summary.md"
	case ShapeMeeting:
		return "meeting_summary.md"
	case ShapeWorkingLocation:
		return "working_location_summary.md"
	case ShapeDriveFile:
		return "drive_file_summary.md"
	case ShapeDriveDeletion:
		return "file_deletion_summary.md"
	case ShapeContact:
		return "contact_summary.md"
	case ShapeCompany:
		return "company_summary.md"
	case ShapeDeal:
		return "deal_summary.md"
	case ShapeCRMRecord:
		return "hubspot_record_summary.md"
	case ShapeTeamsActivity:
		return "teams_activity_summary.md"
	case ShapeChatCreated:
		return "teams_chat_created_summary.md"
	case ShapeOneDriveFile:
		return "onedrive_file_summary.md"
	case ShapeOutlookMessage:
		return "outlook_message_summary.md"
	case ShapeOutlookEventRemoval:
		return "event_removal_summary.md"
	default:
		return "summary.md"
	}
}

// Operation is the inferred operation type for the event.
type Operation string

const (
	OperationCreated Operation = "created"
	OperationUpdated Operation = "updated"
	OperationDeleted Operation = "deleted"
	OperationUnknown Operation = "unknown"
)

// Role identifies a participant's relationship to the event.
type Role string

const (
	RoleSender    Role = "sender"
	RoleRecipient Role = "recipient"
	RoleOrganizer Role = "organizer"
	RoleAttendee  Role = "attendee"
	RoleCreator   Role = "creator"
	RoleOwner     Role = "owner"
)

// Participant is one (role, identifier, display name) tuple.
type Participant struct {
	Role        Role   `json:"role"`
	Identifier  string `json:"identifier"`
	DisplayName string `json:"display_name,omitempty"`
}

// TimestampKey names a semantic instant on the entity.
type TimestampKey string

const (
	TimeCreated  TimestampKey = "created"
	TimeModified TimestampKey = "modified"
	TimeSent     TimestampKey = "sent"
	TimeReceived TimestampKey = "received"
	TimeStart    TimestampKey = "start"
	TimeEnd      TimestampKey = "end"
)

// Timestamp is a parsed instant. AllDay marks date-only values; for those,
// Time holds midnight UTC of the date and the all-day flag carries the
// semantics instead of a coerced instant.
type Timestamp struct {
	Time   time.Time `json:"time"`
	AllDay bool      `json:"all_day"`
}

// Classification is the shape tag plus the operation and severity hints
// derived alongside it.
type Classification struct {
	Shape       Shape     `json:"shape"`
	Operation   Operation `json:"operation"`
	Severity    string    `json:"severity,omitempty"`
	DetectedVia string    `json:"detected_via,omitempty"`
	Confidence  float32   `json:"confidence,omitempty"`
}

// Entity is the normalized stage-1 output. Exactly one shape tag is set and
// that tag determines which Extras keys are populated.
type Entity struct {
	// ID is the provider-assigned identifier. Nil means the payload carried
	// no identity field; it is never defaulted to "" because an empty string
	// looks valid to downstream matching.
	ID *string `json:"id,omitempty"`

	Classification Classification             `json:"classification"`
	Timestamps     map[TimestampKey]Timestamp `json:"timestamps,omitempty"`
	Participants   []Participant              `json:"participants,omitempty"`

	// Content is the decoded textual body when the payload carries one.
	// Decoding happens once, in the extractor.
	Content *string `json:"content,omitempty"`

	// Extras holds shape-specific derived fields. Keys are fixed per shape.
	Extras map[string]any `json:"extras,omitempty"`

	// Errors lists recoverable field-level problems hit during extraction.
	Errors []FieldError `json:"errors,omitempty"`
}

// Identity returns the provider ID, or "" and false when absent.
func (e *Entity) Identity() (string, bool) {
	if e.ID == nil {
		return "", false
	}
	return *e.ID, true
}

// SetID records the provider identity.
func (e *Entity) SetID(id string) {
	e.ID = &id
}

// SetContent records the decoded body.
func (e *Entity) SetContent(body string) {
	e.Content = &body
}

// At returns the named timestamp, if present.
func (e *Entity) At(key TimestampKey) (Timestamp, bool) {
	ts, ok := e.Timestamps[key]
	return ts, ok
}

// setTime records a semantic timestamp.
func (e *Entity) setTime(key TimestampKey, ts Timestamp) {
	if e.Timestamps == nil {
		e.Timestamps = make(map[TimestampKey]Timestamp)
	}
	e.Timestamps[key] = ts
}

// addError records a recoverable field-level error.
func (e *Entity) addError(kind ErrorKind, field string, err error) {
	e.Errors = append(e.Errors, FieldError{Kind: kind, Field: field, Message: err.Error()})
}

// ErrorKind categorizes recoverable extraction errors.
type ErrorKind string

const (
	// ErrKindDecode marks a field that failed transport decoding.
	ErrKindDecode ErrorKind = "field_decode_error"
	// ErrKindTemporalRange marks an end timestamp preceding its start.
	ErrKindTemporalRange ErrorKind = "invalid_temporal_range"
)

// FieldError is a recoverable, field-scoped extraction error. The entity
// proceeds with the field absent.
type FieldError struct {
	Kind    ErrorKind `json:"kind"`
	Field   string    `json:"field"`
	Message string    `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
}

// ErrUnrecognizedShape is returned when a payload matches no classifier
// predicate. The pipeline does not guess.
var ErrUnrecognizedShape = errors.New("payload matches no known event shape")
