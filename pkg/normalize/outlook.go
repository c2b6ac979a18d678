package normalize

import (
	"github.com/recapd/recap-cli/pkg/payload"
)

// extractOutlookMessage normalizes an Outlook message: id, subject,
// from/sender, recipient lists, body, sent/received instants, importance,
// conversation threading.
func extractOutlookMessage(e *Entity, body payload.Value) {
	if id, ok := body.Get("id").String(); ok {
		e.SetID(id)
	}

	if subject, ok := body.Get("subject").String(); ok {
		e.Extras["subject"] = subject
	}
	if preview, ok := body.Get("bodyPreview").String(); ok {
		e.Extras["body_preview"] = preview
	}
	if importance, ok := body.Get("importance").String(); ok {
		e.Extras["importance"] = importance
		e.Classification.Severity = importance
	}
	if convID, ok := body.Get("conversationId").String(); ok {
		e.Extras["conversation_id"] = convID
	}
	if has, ok := body.Get("hasAttachments").Bool(); ok {
		e.Extras["has_attachments"] = has
	}

	e.setInstant(TimeSent, "sentDateTime", body.Get("sentDateTime"))
	e.setInstant(TimeReceived, "receivedDateTime", body.Get("receivedDateTime"))

	if from := body.Get("from", "emailAddress"); from.Present() {
		e.addParticipant(RoleSender,
			from.Get("address").StringOr(""),
			from.Get("name").StringOr(""))
	}
	addGraphRecipients(e, body.Get("toRecipients"), RoleRecipient)
	addGraphRecipients(e, body.Get("ccRecipients"), RoleRecipient)
	addGraphRecipients(e, body.Get("bccRecipients"), RoleRecipient)

	// The message body content type is declared alongside the content; a
	// plain body lands in Content as-is, decoding already done provider-side.
	if content, ok := body.Get("body", "content").String(); ok {
		e.SetContent(content)
		if ct, ok := body.Get("body", "contentType").String(); ok {
			e.Extras["body_content_type"] = ct
		}
	}

	e.Classification.Operation = OperationCreated
}

// extractOutlookEventRemoval normalizes a Graph event-removal notice. The
// payload carries only OData metadata and the event id; everything else
// stays absent.
func extractOutlookEventRemoval(e *Entity, body payload.Value) {
	if id, ok := body.Get("id").String(); ok {
		e.SetID(id)
	}
	if ot, ok := body.Get("@odata.type").String(); ok {
		e.Extras["odata_type"] = ot
	}
	if oid, ok := body.Get("@odata.id").String(); ok {
		e.Extras["odata_id"] = oid
	}
	if etag, ok := body.Get("@odata.etag").String(); ok {
		e.Extras["odata_etag"] = etag
	}

	e.Classification.Operation = OperationDeleted
}

// addGraphRecipients appends Graph-style {emailAddress:{name,address}}
// recipient entries.
func addGraphRecipients(e *Entity, v payload.Value, role Role) {
	arr, ok := v.Array()
	if !ok {
		return
	}
	for _, r := range arr {
		addr := r.Get("emailAddress")
		e.addParticipant(role,
			addr.Get("address").StringOr(""),
			addr.Get("name").StringOr(""))
	}
}
