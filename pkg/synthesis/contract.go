// Package synthesis renders the human-readable report from a normalized
// entity. It owns the per-shape field-priority contracts and prompt
// templates and calls an external text-generation service for the prose;
// the package only defines what must appear and in what order, never the
// wording.
package synthesis

import (
	"github.com/recapd/recap-cli/pkg/normalize"
)

// FieldPriorityContract names the fields that must appear first in the
// rendered report, in order. The ordering is a correctness requirement of
// the report, not a stylistic suggestion.
type FieldPriorityContract struct {
	// Lead fields, rendered before everything else.
	Lead []string
	// Headline describes what the report opens with, in the terms the
	// generation service understands.
	Headline string
}

// contracts maps each shape to its priority contract. Derived from what
// each provider's consumers need to identify the event at a glance.
var contracts = map[normalize.Shape]FieldPriorityContract{
	normalize.ShapeEmail: {
		Lead:     []string{"from", "subject"},
		Headline: "sender and subject",
	},
	normalize.ShapeAlertEmail: {
		Lead:     []string{"alert_type", "alert_level", "alert_project"},
		Headline: "alert type, severity, and affected system",
	},
	normalize.ShapeCalendarEvent: {
		Lead:     []string{"title", "start", "end"},
		Headline: "event title and date/time",
	},
	normalize.ShapeMeeting: {
		Lead:     []string{"title", "start", "end"},
		Headline: "meeting title, date/time, and attendees",
	},
	normalize.ShapeWorkingLocation: {
		Lead:     []string{"location_label", "location_type", "start"},
		Headline: "working location and date range",
	},
	normalize.ShapeDriveFile: {
		Lead:     []string{"file_name", "mime_type", "operation"},
		Headline: "file name, type, and operation",
	},
	normalize.ShapeDriveDeletion: {
		Lead:     []string{"id", "operation"},
		Headline: "deleted file id and operation",
	},
	normalize.ShapeContact: {
		Lead:     []string{"record_type", "name", "operation"},
		Headline: "record type, contact name, and operation",
	},
	normalize.ShapeCompany: {
		Lead:     []string{"record_type", "name", "operation"},
		Headline: "record type, company name, and operation",
	},
	normalize.ShapeDeal: {
		Lead:     []string{"record_type", "deal_name", "deal_stage"},
		Headline: "record type, deal name, and stage",
	},
	normalize.ShapeCRMRecord: {
		Lead:     []string{"inferred_type", "primary_identifier", "operation"},
		Headline: "record type and primary identifier",
	},
	normalize.ShapeTeamsActivity: {
		Lead:     []string{"activity_type", "initiator"},
		Headline: "activity type and initiator",
	},
	normalize.ShapeChatCreated: {
		Lead:     []string{"chat_type", "participants"},
		Headline: "chat type and participants",
	},
	normalize.ShapeOneDriveFile: {
		Lead:     []string{"file_name", "operation"},
		Headline: "file name and operation",
	},
	normalize.ShapeOutlookMessage: {
		Lead:     []string{"from", "subject", "recipients"},
		Headline: "sender, subject, and recipients",
	},
	normalize.ShapeOutlookEventRemoval: {
		Lead:     []string{"id", "operation"},
		Headline: "removed event id and operation",
	},
}

// ContractFor returns the field-priority contract for the shape. Every
// known shape has one; unknown shapes get an empty contract.
func ContractFor(shape normalize.Shape) FieldPriorityContract {
	return contracts[shape]
}
