package normalize

import (
	"testing"

	"github.com/recapd/recap-cli/pkg/payload"
)

func mustParse(t *testing.T, raw string) *payload.Doc {
	t.Helper()
	doc, err := payload.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func TestClassify_ShapeFingerprints(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Shape
	}{
		{
			name: "drive deletion from removed+fileId",
			raw:  `{"result": {"kind": "drive#change", "removed": true, "fileId": "XXXXXXXXXXXX", "time": "2023-05-08T09:29:25.032Z", "changeType": "file"}}`,
			want: ShapeDriveDeletion,
		},
		{
			name: "outlook event removal from odata type",
			raw:  `{"result": {"@odata.type": "#Microsoft.Graph.Event", "id": "AQMkABCD"}}`,
			want: ShapeOutlookEventRemoval,
		},
		{
			name: "working location from eventType",
			raw:  `{"result": {"eventType": "workingLocation", "id": "wl1", "summary": "Casa", "start": {"date": "2025-09-03"}, "end": {"date": "2025-09-04"}}}`,
			want: ShapeWorkingLocation,
		},
		{
			name: "meeting from attendees plus conferenceData",
			raw:  `{"result": {"id": "m1", "summary": "Sync", "start": {"dateTime": "2025-02-14T15:00:00-03:00"}, "end": {"dateTime": "2025-02-14T16:00:00-03:00"}, "attendees": [{"email": "a@x.com"}], "conferenceData": {"conferenceSolution": {"name": "Zoom Meeting"}}}}`,
			want: ShapeMeeting,
		},
		{
			name: "calendar event without conference data",
			raw:  `{"result": {"id": "c1", "summary": "Review", "start": {"dateTime": "2025-02-14T15:00:00-03:00"}, "end": {"dateTime": "2025-02-14T16:00:00-03:00"}}}`,
			want: ShapeCalendarEvent,
		},
		{
			name: "calendar event with attendees but no conference data",
			raw:  `{"result": {"id": "c2", "summary": "Review", "start": {"dateTime": "2025-02-14T15:00:00-03:00"}, "end": {"dateTime": "2025-02-14T16:00:00-03:00"}, "attendees": [{"email": "a@x.com"}]}}`,
			want: ShapeCalendarEvent,
		},
		{
			name: "alert email from X-AlertService header",
			raw:  `{"result": {"id": "a1", "payload": {"headers": [{"name": "Subject", "value": "PAYMENT-GATEWAY-PROD - ConnectionError"}, {"name": "X-AlertService-Project", "value": "payment-gateway"}]}}}`,
			want: ShapeAlertEmail,
		},
		{
			name: "alert email from alert-service sender",
			raw:  `{"result": {"id": "a2", "payload": {"headers": [{"name": "From", "value": "AlertService <noreply@md.alertservice.com>"}, {"name": "Subject", "value": "New critical issue"}]}}}`,
			want: ShapeAlertEmail,
		},
		{
			name: "generic email without alert markers",
			raw:  `{"result": {"id": "e1", "payload": {"headers": [{"name": "From", "value": "Jane <jane@example.com>"}, {"name": "Subject", "value": "Plans"}]}}}`,
			want: ShapeEmail,
		},
		{
			name: "deal from dealstage property",
			raw:  `{"result": {"id": "d1", "properties": {"dealstage": "presentation", "dealname": "Big Deal", "amount": "5000"}}}`,
			want: ShapeDeal,
		},
		{
			name: "contact from firstname property",
			raw:  `{"result": {"id": "12345678901", "properties": {"firstname": "Alex", "lastname": "Thompson", "email": "alex@example.com"}}}`,
			want: ShapeContact,
		},
		{
			name: "company from domain property",
			raw:  `{"result": {"id": "78924563147", "properties": {"name": "VelocityWorks", "domain": "velocityworks.com", "industry": "COMPUTER_SOFTWARE"}}}`,
			want: ShapeCompany,
		},
		{
			name: "generic crm record from bare properties",
			raw:  `{"result": {"id": "r1", "properties": {"custom_field": "value"}}}`,
			want: ShapeCRMRecord,
		},
		{
			name: "chat created from chatType",
			raw:  `{"result": {"id": "ch1", "chatType": "oneOnOne", "createdDateTime": "2025-07-17T18:15:41.055Z"}}`,
			want: ShapeChatCreated,
		},
		{
			name: "teams activity from activityType",
			raw:  `{"result": {"id": "ta1", "activityType": "memberAdded", "teamId": "t1"}}`,
			want: ShapeTeamsActivity,
		},
		{
			name: "onedrive file from parentReference",
			raw:  `{"result": {"id": "od1", "name": "Q4.xlsx", "parentReference": {"path": "/drive/root:/Docs"}, "file": {"mimeType": "application/vnd.ms-excel"}}}`,
			want: ShapeOneDriveFile,
		},
		{
			name: "drive file from mimeType plus parents",
			raw:  `{"result": {"id": "df1", "name": "notes.txt", "mimeType": "text/plain", "parents": ["folder1"]}}`,
			want: ShapeDriveFile,
		},
		{
			name: "outlook message from toRecipients",
			raw:  `{"result": {"id": "om1", "subject": "Hello", "toRecipients": [{"emailAddress": {"address": "to@example.com"}}]}}`,
			want: ShapeOutlookMessage,
		},
		{
			name: "bare payload without result envelope",
			raw:  `{"removed": true, "fileId": "YYYY", "time": "2023-05-08T09:29:25.032Z"}`,
			want: ShapeDriveDeletion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(mustParse(t, tt.raw))
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got.Shape != tt.want {
				t.Errorf("Classify() = %q (via %s), want %q", got.Shape, got.DetectedVia, tt.want)
			}
		})
	}
}

func TestClassify_PredicateOrder(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Shape
		reason string
	}{
		{
			name:   "deal beats contact when both property sets present",
			raw:    `{"result": {"id": "x", "properties": {"dealname": "D", "firstname": "A", "email": "a@x.com"}}}`,
			want:   ShapeDeal,
			reason: "deal properties take precedence in the CRM group",
		},
		{
			name:   "contact beats company when both property sets present",
			raw:    `{"result": {"id": "x", "properties": {"email": "a@x.com", "domain": "x.com"}}}`,
			want:   ShapeContact,
			reason: "contact properties outrank company properties",
		},
		{
			name:   "alert markers beat generic email",
			raw:    `{"result": {"id": "x", "payload": {"headers": [{"name": "From", "value": "boss@example.com"}, {"name": "X-Alert-Level", "value": "critical"}]}}}`,
			want:   ShapeAlertEmail,
			reason: "alert predicate is evaluated before the generic email predicate",
		},
		{
			name:   "meeting beats calendar event when conference data present",
			raw:    `{"result": {"id": "x", "summary": "S", "start": {"date": "2025-01-01"}, "end": {"date": "2025-01-02"}, "attendees": [], "conferenceData": {}}}`,
			want:   ShapeMeeting,
			reason: "attendees+conferenceData is evaluated before summary+start+end",
		},
		{
			name:   "working location beats calendar event",
			raw:    `{"result": {"id": "x", "eventType": "workingLocation", "summary": "Casa", "start": {"date": "2025-09-03"}, "end": {"date": "2025-09-04"}}}`,
			want:   ShapeWorkingLocation,
			reason: "eventType fingerprint precedes generic calendar fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(mustParse(t, tt.raw))
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got.Shape != tt.want {
				t.Errorf("Classify() = %q, want %q (%s)", got.Shape, tt.want, tt.reason)
			}
		})
	}
}

func TestClassify_UnrecognizedShape(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"empty result", `{"result": {}}`},
		{"unrelated fields", `{"result": {"foo": "bar", "count": 3}}`},
		{"removed without fileId", `{"result": {"removed": true}}`},
		{"odata type not an event", `{"result": {"@odata.type": "#Microsoft.Graph.Message"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(mustParse(t, tt.raw))
			if err == nil {
				t.Fatal("Classify() expected error, got nil")
			}
		})
	}
}
