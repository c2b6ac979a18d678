package normalize

import (
	"reflect"
	"testing"
)

// classifyAndExtract runs the full classification+extraction path for a raw
// payload, failing the test on any hard error.
func classifyAndExtract(t *testing.T, raw string) *Entity {
	t.Helper()
	doc := mustParse(t, raw)
	c, err := Classify(doc)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	e, err := Extract(doc, c)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	return e
}

func TestExtract_DriveDeletion(t *testing.T) {
	e := classifyAndExtract(t, `{"result": {"kind": "drive#change", "removed": true, "fileId": "XXXXXXXXXXXX", "time": "2023-05-08T09:29:25.032Z", "type": "file", "changeType": "file"}}`)

	if e.Classification.Shape != ShapeDriveDeletion {
		t.Fatalf("shape = %q, want drive_deletion", e.Classification.Shape)
	}
	id, ok := e.Identity()
	if !ok || id != "XXXXXXXXXXXX" {
		t.Errorf("identity = %q (%v), want XXXXXXXXXXXX", id, ok)
	}
	if e.Classification.Operation != OperationDeleted {
		t.Errorf("operation = %q, want deleted", e.Classification.Operation)
	}
	if _, ok := e.Extras["file_name"]; ok {
		t.Error("deletion notice must not invent a file name")
	}
	if ts, ok := e.At(TimeModified); !ok || ts.Time.IsZero() {
		t.Error("change time should be recorded")
	}
}

func TestExtract_MeetingDuration(t *testing.T) {
	e := classifyAndExtract(t, `{"result": {
		"id": "meeting123",
		"summary": "GTM Sync",
		"start": {"dateTime": "2025-02-14T15:00:00-03:00"},
		"end": {"dateTime": "2025-02-14T16:00:00-03:00"},
		"attendees": [
			{"email": "user1@example.com", "responseStatus": "accepted"},
			{"email": "user2@example.com", "organizer": true, "responseStatus": "accepted"},
			{"email": "user3@example.com", "responseStatus": "declined"},
			{"email": "user4@example.com", "responseStatus": "needsAction"},
			{"email": "user5@example.com", "responseStatus": "tentative"}
		],
		"conferenceData": {
			"conferenceSolution": {"name": "Zoom Meeting"},
			"entryPoints": [{"entryPointType": "video", "uri": "https://zoom.us/j/123456789"}]
		},
		"created": "2024-11-06T14:14:40.000Z",
		"status": "confirmed"
	}}`)

	if e.Classification.Shape != ShapeMeeting {
		t.Fatalf("shape = %q, want meeting", e.Classification.Shape)
	}
	if got := e.Extras["duration_minutes"]; got != float64(60) {
		t.Errorf("duration_minutes = %v, want 60", got)
	}
	if got := e.Extras["duration_valid"]; got != true {
		t.Errorf("duration_valid = %v, want true", got)
	}
	if got := e.Extras["all_day"]; got != false {
		t.Errorf("all_day = %v, want false", got)
	}
	if got := e.Extras["conference_solution"]; got != "Zoom Meeting" {
		t.Errorf("conference_solution = %v, want Zoom Meeting", got)
	}
	if got := e.Extras["conference_uri"]; got != "https://zoom.us/j/123456789" {
		t.Errorf("conference_uri = %v", got)
	}

	counts, ok := e.Extras["response_counts"].(map[string]int)
	if !ok {
		t.Fatalf("response_counts missing: %v", e.Extras["response_counts"])
	}
	want := map[string]int{"accepted": 2, "declined": 1, "needsAction": 1, "other": 1}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("response_counts = %v, want %v", counts, want)
	}
}

func TestExtract_AllDayEvent(t *testing.T) {
	e := classifyAndExtract(t, `{"result": {
		"id": "wl1",
		"eventType": "workingLocation",
		"summary": "Casa",
		"created": "2025-03-24T13:52:31.000Z",
		"creator": {"email": "user@example.com", "self": true},
		"start": {"date": "2025-09-03"},
		"end": {"date": "2025-09-04"},
		"status": "confirmed",
		"workingLocationProperties": {"homeOffice": {}, "type": "homeOffice"}
	}}`)

	if e.Classification.Shape != ShapeWorkingLocation {
		t.Fatalf("shape = %q, want working_location", e.Classification.Shape)
	}
	if got := e.Extras["duration_minutes"]; got != float64(24*60) {
		t.Errorf("duration_minutes = %v, want 1440", got)
	}
	if got := e.Extras["all_day"]; got != true {
		t.Errorf("all_day = %v, want true", got)
	}
	start, ok := e.At(TimeStart)
	if !ok || !start.AllDay {
		t.Errorf("start = %+v (%v), want all-day timestamp", start, ok)
	}
	if got := e.Extras["location_type"]; got != "homeOffice" {
		t.Errorf("location_type = %v, want homeOffice", got)
	}
	if got := e.Extras["location_label"]; got != "Casa" {
		t.Errorf("location_label = %v, want Casa", got)
	}
}

func TestExtract_NegativeDurationMarkedInvalid(t *testing.T) {
	e := classifyAndExtract(t, `{"result": {
		"id": "c1",
		"summary": "Backwards",
		"start": {"dateTime": "2025-02-14T16:00:00-03:00"},
		"end": {"dateTime": "2025-02-14T15:00:00-03:00"}
	}}`)

	if got := e.Extras["duration_valid"]; got != false {
		t.Errorf("duration_valid = %v, want false", got)
	}
	if got := e.Extras["duration_minutes"]; got != float64(0) {
		t.Errorf("duration_minutes = %v, want 0, never negative", got)
	}
	found := false
	for _, fe := range e.Errors {
		if fe.Kind == ErrKindTemporalRange {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want an invalid_temporal_range entry", e.Errors)
	}
}

func TestExtract_EmailBodyDecoding(t *testing.T) {
	// "hello" / "<b>hi</b>" in URL-safe base64.
	const plainB64 = "aGVsbG8="
	const htmlB64 = "PGI-aGk8L2I-"

	tests := []struct {
		name  string
		parts string
		want  string
	}{
		{
			name:  "plain part preferred over html",
			parts: `[{"mimeType": "text/html", "body": {"data": "` + htmlB64 + `"}}, {"mimeType": "text/plain", "body": {"data": "` + plainB64 + `"}}]`,
			want:  "hello",
		},
		{
			name:  "html fallback when no plain part",
			parts: `[{"mimeType": "text/html", "body": {"data": "` + htmlB64 + `"}}]`,
			want:  "<b>hi</b>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := classifyAndExtract(t, `{"result": {"id": "e1", "payload": {"headers": [{"name": "From", "value": "jane@example.com"}], "parts": `+tt.parts+`}}}`)
			if e.Content == nil {
				t.Fatal("content absent, want decoded body")
			}
			if *e.Content != tt.want {
				t.Errorf("content = %q, want %q", *e.Content, tt.want)
			}
			if len(e.Errors) != 0 {
				t.Errorf("unexpected errors: %v", e.Errors)
			}
		})
	}
}

func TestExtract_BodyDecodeFailureIsRecoverable(t *testing.T) {
	e := classifyAndExtract(t, `{"result": {"id": "e1", "snippet": "preview text", "payload": {
		"headers": [{"name": "From", "value": "jane@example.com"}],
		"parts": [{"mimeType": "text/plain", "body": {"data": "!!!not base64!!!"}}]
	}}}`)

	if e.Content != nil {
		t.Errorf("content = %q, want absent after decode failure", *e.Content)
	}
	if len(e.Errors) == 0 {
		t.Fatal("decode failure should be recorded on the entity")
	}
	if e.Errors[0].Kind != ErrKindDecode {
		t.Errorf("error kind = %q, want field_decode_error", e.Errors[0].Kind)
	}
	// Extraction still succeeded; the snippet remains usable.
	if got := e.Extras["snippet"]; got != "preview text" {
		t.Errorf("snippet = %v, want preview text", got)
	}
}

func TestExtract_AlertEmail(t *testing.T) {
	e := classifyAndExtract(t, `{"result": {
		"id": "sample123456789abcdef",
		"snippet": "Critical alert from payment-gateway.",
		"payload": {"headers": [
			{"name": "Subject", "value": "PAYMENT-GATEWAY-PROD - ConnectionError: Database connection pool exhausted"},
			{"name": "From", "value": "AlertService <noreply@md.alertservice.com>"},
			{"name": "X-AlertService-Project", "value": "payment-gateway"},
			{"name": "X-Alert-Level", "value": "Critical"},
			{"name": "Date", "value": "Wed, 15 Dec 2024 18:30:15 +0000"}
		]}
	}}`)

	if e.Classification.Shape != ShapeAlertEmail {
		t.Fatalf("shape = %q, want alert_email", e.Classification.Shape)
	}
	if got := e.Extras["alert_project"]; got != "payment-gateway" {
		t.Errorf("alert_project = %v", got)
	}
	if e.Classification.Severity != "critical" {
		t.Errorf("severity = %q, want critical", e.Classification.Severity)
	}
	if ts, ok := e.At(TimeSent); !ok || ts.Time.IsZero() {
		t.Error("Date header should populate the sent timestamp")
	}
	if len(e.Participants) == 0 || e.Participants[0].Role != RoleSender {
		t.Errorf("participants = %v, want alert service as sender", e.Participants)
	}
	if e.Participants[0].Identifier != "noreply@md.alertservice.com" {
		t.Errorf("sender = %q", e.Participants[0].Identifier)
	}
}

func TestExtract_Contact(t *testing.T) {
	e := classifyAndExtract(t, `{"result": {
		"id": "12345678901",
		"properties": {
			"firstname": "Alex", "lastname": "Thompson",
			"email": "alex.thompson@example.com",
			"jobtitle": "VP of Engineering",
			"lifecyclestage": "lead",
			"lead_score_06_11_2025": "82",
			"hs_email_open": "5", "hs_email_delivered": "8"
		},
		"createdAt": "2024-09-12T11:45:30.789Z",
		"updatedAt": "2024-12-22T13:20:45.567Z",
		"archived": false
	}}`)

	if e.Classification.Shape != ShapeContact {
		t.Fatalf("shape = %q, want contact", e.Classification.Shape)
	}
	if got := e.Extras["name"]; got != "Alex Thompson" {
		t.Errorf("name = %v", got)
	}
	if got := e.Extras["lead_score"]; got != "82" {
		t.Errorf("lead_score = %v, want 82", got)
	}
	if e.Classification.Operation != OperationUpdated {
		t.Errorf("operation = %q, want updated (createdAt != updatedAt)", e.Classification.Operation)
	}
	if _, ok := e.Extras["properties"].(map[string]any); !ok {
		t.Error("raw properties map should be preserved in extras")
	}
}

func TestExtract_CompanyTechnologyStack(t *testing.T) {
	e := classifyAndExtract(t, `{"result": {
		"id": "78924563147",
		"properties": {
			"name": "VelocityWorks Inc",
			"domain": "velocityworks.com",
			"industry": "COMPUTER_SOFTWARE",
			"web_technologies": "react;aws;docker"
		},
		"createdAt": "2024-11-22T14:25:33.156Z",
		"updatedAt": "2024-11-22T14:25:33.156Z"
	}}`)

	if e.Classification.Shape != ShapeCompany {
		t.Fatalf("shape = %q, want company", e.Classification.Shape)
	}
	tech, ok := e.Extras["technologies"].([]string)
	if !ok || !reflect.DeepEqual(tech, []string{"react", "aws", "docker"}) {
		t.Errorf("technologies = %v, want [react aws docker]", e.Extras["technologies"])
	}
	if e.Classification.Operation != OperationCreated {
		t.Errorf("operation = %q, want created (createdAt == updatedAt)", e.Classification.Operation)
	}
}

func TestExtract_DealSeverityFromStage(t *testing.T) {
	e := classifyAndExtract(t, `{"result": {
		"id": "d42",
		"properties": {"dealname": "Enterprise rollout", "dealstage": "contractsent", "amount": "125000"}
	}}`)

	if e.Classification.Shape != ShapeDeal {
		t.Fatalf("shape = %q, want deal", e.Classification.Shape)
	}
	if e.Classification.Severity != "contractsent" {
		t.Errorf("severity = %q, want contractsent", e.Classification.Severity)
	}
	if got := e.Extras["amount"]; got != "125000" {
		t.Errorf("amount = %v", got)
	}
}

func TestExtract_MissingIdentityStaysAbsent(t *testing.T) {
	e := classifyAndExtract(t, `{"result": {"chatType": "group", "topic": "Launch planning"}}`)

	if _, ok := e.Identity(); ok {
		t.Error("identity should be absent when the payload carries no id")
	}
	if e.ID != nil {
		t.Errorf("ID = %q, want nil, never an empty-string default", *e.ID)
	}
	if got := e.Extras["chat_type"]; got != "group" {
		t.Errorf("chat_type = %v", got)
	}
}

func TestExtract_ChatCreatedNullTopic(t *testing.T) {
	e := classifyAndExtract(t, `{"result": {
		"id": "chat1",
		"chatType": "oneOnOne",
		"createdDateTime": "2025-07-17T18:15:41.055Z",
		"topic": null,
		"webUrl": "https://teams.microsoft.com/l/chat/1"
	}}`)

	if _, ok := e.Extras["topic"]; ok {
		t.Error("explicit null topic should stay absent from extras")
	}
	if got := e.Extras["web_url"]; got != "https://teams.microsoft.com/l/chat/1" {
		t.Errorf("web_url = %v", got)
	}
	if e.Classification.Operation != OperationCreated {
		t.Errorf("operation = %q, want created", e.Classification.Operation)
	}
}

func TestExtract_OutlookMessage(t *testing.T) {
	e := classifyAndExtract(t, `{"result": {
		"id": "om1",
		"subject": "Budget review",
		"importance": "high",
		"bodyPreview": "Attached is the budget",
		"conversationId": "conv42",
		"hasAttachments": true,
		"from": {"emailAddress": {"name": "Pat Doe", "address": "pat@example.com"}},
		"toRecipients": [{"emailAddress": {"name": "Sam Roe", "address": "sam@example.com"}}],
		"ccRecipients": [{"emailAddress": {"address": "cc@example.com"}}],
		"body": {"contentType": "text", "content": "Attached is the budget for Q3."},
		"sentDateTime": "2025-03-01T09:00:00Z",
		"receivedDateTime": "2025-03-01T09:00:05Z"
	}}`)

	if e.Classification.Shape != ShapeOutlookMessage {
		t.Fatalf("shape = %q, want outlook_message", e.Classification.Shape)
	}
	if e.Content == nil || *e.Content != "Attached is the budget for Q3." {
		t.Errorf("content = %v", e.Content)
	}
	if e.Classification.Severity != "high" {
		t.Errorf("severity = %q, want high", e.Classification.Severity)
	}
	var senders, recipients int
	for _, p := range e.Participants {
		switch p.Role {
		case RoleSender:
			senders++
		case RoleRecipient:
			recipients++
		}
	}
	if senders != 1 || recipients != 2 {
		t.Errorf("participants = %v, want 1 sender and 2 recipients", e.Participants)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	const raw = `{"result": {
		"id": "meeting123",
		"summary": "Sync",
		"start": {"dateTime": "2025-02-14T15:00:00-03:00"},
		"end": {"dateTime": "2025-02-14T16:00:00-03:00"},
		"attendees": [{"email": "a@x.com", "responseStatus": "accepted"}],
		"conferenceData": {"conferenceSolution": {"name": "Zoom Meeting"}}
	}}`

	doc := mustParse(t, raw)
	c, err := Classify(doc)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	first, err := Extract(doc, c)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	second, err := Extract(doc, c)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction is not idempotent:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestExtract_OutlookEventRemoval(t *testing.T) {
	e := classifyAndExtract(t, `{"result": {
		"@odata.type": "#Microsoft.Graph.Event",
		"@odata.id": "Users/ab12/Events/AQMk123",
		"@odata.etag": "W/\"XyZ123\"",
		"id": "AQMk123"
	}}`)

	if e.Classification.Shape != ShapeOutlookEventRemoval {
		t.Fatalf("shape = %q, want outlook_event_removal", e.Classification.Shape)
	}
	if e.Classification.Operation != OperationDeleted {
		t.Errorf("operation = %q, want deleted", e.Classification.Operation)
	}
	if id, ok := e.Identity(); !ok || id != "AQMk123" {
		t.Errorf("identity = %q (%v)", id, ok)
	}
	if got := e.Extras["odata_etag"]; got != `W/"XyZ123"` {
		t.Errorf("odata_etag = %v, want W/\"XyZ123\"", got)
	}
}
