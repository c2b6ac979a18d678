package normalize

import (
	"strings"

	"github.com/recapd/recap-cli/pkg/payload"
)

// shapePredicate is one entry in the ordered classification policy. The
// fingerprint reports whether the payload body matches the shape; via is the
// label recorded on the classification for observability.
type shapePredicate struct {
	shape Shape
	via   string
	match func(body payload.Value) bool
}

// shapePredicates is evaluated in order; the first match wins. Shapes are
// mutually exclusive by payload fingerprint, and precedence between
// near-overlapping fingerprints (alert email vs. generic email, meeting vs.
// calendar event) is fixed here rather than left to inference.
var shapePredicates = []shapePredicate{
	{ShapeDriveDeletion, "removed+fileId", func(b payload.Value) bool {
		removed, _ := b.Get("removed").Bool()
		return removed && b.Get("fileId").Present() && !b.Get("name").Present()
	}},
	{ShapeOutlookEventRemoval, "odata.type=Event", func(b payload.Value) bool {
		odataType, ok := b.Get("@odata.type").String()
		if !ok || !strings.HasSuffix(odataType, "Event") {
			return false
		}
		return !b.Get("summary").Present() && !b.Get("start").Present()
	}},
	{ShapeWorkingLocation, "eventType=workingLocation", func(b payload.Value) bool {
		return b.Get("eventType").StringOr("") == "workingLocation"
	}},
	{ShapeMeeting, "attendees+conferenceData", func(b payload.Value) bool {
		return b.Get("attendees").Present() && b.Get("conferenceData").Present()
	}},
	{ShapeCalendarEvent, "summary+start+end", func(b payload.Value) bool {
		return b.Get("summary").Present() && b.Get("start").Present() && b.Get("end").Present()
	}},
	{ShapeAlertEmail, "alert headers", func(b payload.Value) bool {
		headers := mailHeaders(b)
		return headers != nil && hasAlertMarkers(headers)
	}},
	{ShapeEmail, "payload.headers", func(b payload.Value) bool {
		return mailHeaders(b) != nil
	}},
	{ShapeDeal, "properties.dealstage", func(b payload.Value) bool {
		props := b.Get("properties")
		if !props.Present() {
			return false
		}
		return props.Get("dealstage").Present() || props.Get("dealname").Present()
	}},
	{ShapeContact, "properties.firstname", func(b payload.Value) bool {
		props := b.Get("properties")
		if !props.Present() {
			return false
		}
		return props.Get("firstname").Present() || props.Get("email").Present()
	}},
	{ShapeCompany, "properties.domain", func(b payload.Value) bool {
		props := b.Get("properties")
		if !props.Present() {
			return false
		}
		return props.Get("domain").Present() || props.Get("industry").Present()
	}},
	{ShapeCRMRecord, "properties", func(b payload.Value) bool {
		_, ok := b.Get("properties").Object()
		return ok
	}},
	{ShapeChatCreated, "chatType", func(b payload.Value) bool {
		return b.Get("chatType").Present()
	}},
	{ShapeTeamsActivity, "activityType", func(b payload.Value) bool {
		return b.Get("activityType").Present()
	}},
	{ShapeOneDriveFile, "parentReference+file", func(b payload.Value) bool {
		if !b.Get("parentReference").Present() {
			return false
		}
		return b.Get("file").Present() || b.Get("folder").Present()
	}},
	{ShapeDriveFile, "mimeType+parents", func(b payload.Value) bool {
		return b.Get("mimeType").Present() && b.Get("parents").Present()
	}},
	{ShapeOutlookMessage, "toRecipients", func(b payload.Value) bool {
		return b.Get("toRecipients").Present()
	}},
}

// alertSenderPatterns are substrings of the From header that mark an
// automated alert-service sender.
var alertSenderPatterns = []string{
	"alertservice",
	"pagerduty",
	"opsgenie",
	"sentry.io",
}

// mailHeaders returns the indexed payload.headers table for mail-style
// payloads, nil when the payload has none.
func mailHeaders(body payload.Value) payload.Headers {
	return payload.IndexPairs(body.Get("payload", "headers"), "name", "value")
}

// hasAlertMarkers reports whether the headers identify an automated system
// alert: any X-Alert-* header, or a From value matching a known alert
// service sender.
func hasAlertMarkers(headers payload.Headers) bool {
	for name := range headers {
		if strings.HasPrefix(name, "X-Alert") {
			return true
		}
	}
	if from, ok := headers.Get("From"); ok {
		fromLower := strings.ToLower(from)
		for _, pattern := range alertSenderPatterns {
			if strings.Contains(fromLower, pattern) {
				return true
			}
		}
	}
	return false
}

// Rule describes one entry of the classification policy for display.
type Rule struct {
	Priority    int
	Shape       Shape
	Fingerprint string
}

// Rules returns the classification policy in evaluation order.
func Rules() []Rule {
	rules := make([]Rule, len(shapePredicates))
	for i, p := range shapePredicates {
		rules[i] = Rule{Priority: i + 1, Shape: p.shape, Fingerprint: p.via}
	}
	return rules
}

// Classify inspects the payload envelope and decides which event shape it
// matches. It returns ErrUnrecognizedShape when no predicate matches.
func Classify(doc *payload.Doc) (Classification, error) {
	body := doc.Unwrap()
	for _, p := range shapePredicates {
		if p.match(body) {
			return Classification{
				Shape:       p.shape,
				Operation:   OperationUnknown,
				DetectedVia: p.via,
				Confidence:  1.0,
			}, nil
		}
	}
	return Classification{}, ErrUnrecognizedShape
}
