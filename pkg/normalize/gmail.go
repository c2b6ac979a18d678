package normalize

import (
	"net/mail"
	"strings"

	"github.com/recapd/recap-cli/pkg/payload"
)

// extractEmail normalizes a Gmail message payload: result.id,
// result.payload.headers[] name/value pairs, result.payload.parts[] body
// parts, result.snippet.
func extractEmail(e *Entity, body payload.Value) {
	if id, ok := body.Get("id").String(); ok {
		e.SetID(id)
	}

	headers := mailHeaders(body)

	if from, ok := headers.Get("From"); ok {
		addr, name := splitMailbox(from)
		e.addParticipant(RoleSender, addr, name)
		e.Extras["from"] = from
	}
	if to, ok := headers.Get("To"); ok {
		for _, mb := range splitAddressList(to) {
			addr, name := splitMailbox(mb)
			e.addParticipant(RoleRecipient, addr, name)
		}
		e.Extras["to"] = to
	}
	if subject, ok := headers.Get("Subject"); ok {
		e.Extras["subject"] = subject
	}
	if msgID, ok := headers.Get("Message-ID"); ok {
		e.Extras["message_id_header"] = msgID
	}
	if date, ok := headers.Get("Date"); ok {
		if t, err := parseMailDate(date); err == nil {
			e.setTime(TimeSent, Timestamp{Time: t})
		} else {
			e.addError(ErrKindDecode, "Date", err)
		}
	}

	if snippet, ok := body.Get("snippet").String(); ok {
		e.Extras["snippet"] = snippet
	}

	e.decodeBodyParts(body.Get("payload", "parts"))

	// A delivered message is always a creation event.
	e.Classification.Operation = OperationCreated
}

// extractAlertEmail normalizes a system-alert email. Beyond the common mail
// fields it pulls the X-Alert-* headers, which identify the originating
// service, alert category, and severity.
func extractAlertEmail(e *Entity, body payload.Value) {
	extractEmail(e, body)

	headers := mailHeaders(body)
	if project, ok := headers.Get("X-AlertService-Project"); ok {
		e.Extras["alert_project"] = project
	}
	if alertType, ok := headers.Get("X-Alert-Type"); ok {
		e.Extras["alert_type"] = alertType
	}
	if level, ok := headers.Get("X-Alert-Level"); ok {
		e.Extras["alert_level"] = level
		e.Classification.Severity = strings.ToLower(level)
	}
	if from, ok := headers.Get("From"); ok {
		e.Extras["alert_service"] = from
	}
}

// splitMailbox splits "Display Name <addr@host>" into address and display
// name, tolerating bare addresses.
func splitMailbox(s string) (addr, name string) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return strings.TrimSpace(s), ""
	}
	return parsed.Address, parsed.Name
}

// splitAddressList splits a comma-separated recipient header. Malformed
// lists degrade to a single mailbox rather than dropping the field.
func splitAddressList(s string) []string {
	parsed, err := mail.ParseAddressList(s)
	if err != nil {
		return []string{s}
	}
	out := make([]string, len(parsed))
	for i, a := range parsed {
		out[i] = a.String()
	}
	return out
}
