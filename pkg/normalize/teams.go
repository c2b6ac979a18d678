package normalize

import (
	"github.com/recapd/recap-cli/pkg/payload"
)

// extractTeamsActivity normalizes a Microsoft Teams activity notification:
// id, activityType, team/channel identifiers, initiating user.
func extractTeamsActivity(e *Entity, body payload.Value) {
	if id, ok := body.Get("id").String(); ok {
		e.SetID(id)
	}

	if at, ok := body.Get("activityType").String(); ok {
		e.Extras["activity_type"] = at
	}
	if teamID, ok := body.Get("teamId").String(); ok {
		e.Extras["team_id"] = teamID
	}
	if channelID, ok := body.Get("channelId").String(); ok {
		e.Extras["channel_id"] = channelID
	}

	e.setInstant(TimeCreated, "createdDateTime", body.Get("createdDateTime"))

	if from := body.Get("from", "user"); from.Present() {
		e.addParticipant(RoleCreator,
			from.Get("id").StringOr(""),
			from.Get("displayName").StringOr(""))
	}
	if recipient := body.Get("recipient", "user"); recipient.Present() {
		e.addParticipant(RoleRecipient,
			recipient.Get("id").StringOr(""),
			recipient.Get("displayName").StringOr(""))
	}

	e.Classification.Operation = OperationCreated
}

// extractChatCreated normalizes a Teams chat-creation event: chatType,
// createdDateTime, topic, web URL, visibility.
func extractChatCreated(e *Entity, body payload.Value) {
	if id, ok := body.Get("id").String(); ok {
		e.SetID(id)
	}

	if ct, ok := body.Get("chatType").String(); ok {
		e.Extras["chat_type"] = ct
	}
	// Topic is null for one-on-one chats; only a real string lands in extras.
	if topic, ok := body.Get("topic").String(); ok {
		e.Extras["topic"] = topic
	}
	if url, ok := body.Get("webUrl").String(); ok {
		e.Extras["web_url"] = url
	}
	if hidden, ok := body.Get("isHiddenForAllMembers").Bool(); ok {
		e.Extras["hidden"] = hidden
	}
	if tenant, ok := body.Get("tenantId").String(); ok {
		e.Extras["tenant_id"] = tenant
	}

	e.setInstant(TimeCreated, "createdDateTime", body.Get("createdDateTime"))
	e.setInstant(TimeModified, "lastUpdatedDateTime", body.Get("lastUpdatedDateTime"))

	if members, ok := body.Get("members").Array(); ok {
		for _, m := range members {
			e.addParticipant(RoleAttendee,
				m.Get("email").StringOr(""),
				m.Get("displayName").StringOr(""))
		}
	}

	e.Classification.Operation = OperationCreated
}
