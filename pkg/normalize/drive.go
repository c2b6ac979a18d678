package normalize

import (
	"github.com/recapd/recap-cli/pkg/payload"
)

// extractDriveFile normalizes a Google Drive file operation: id, name,
// mimeType, createdTime/modifiedTime, size, parents, owners.
func extractDriveFile(e *Entity, body payload.Value) {
	if id, ok := body.Get("id").String(); ok {
		e.SetID(id)
	}

	if name, ok := body.Get("name").String(); ok {
		e.Extras["file_name"] = name
	}
	if mt, ok := body.Get("mimeType").String(); ok {
		e.Extras["mime_type"] = mt
	}
	if size, ok := body.Get("size").String(); ok {
		e.Extras["size"] = size
	}

	e.setInstant(TimeCreated, "createdTime", body.Get("createdTime"))
	e.setInstant(TimeModified, "modifiedTime", body.Get("modifiedTime"))

	if parents, ok := body.Get("parents").Array(); ok {
		ids := make([]string, 0, len(parents))
		for _, p := range parents {
			if id, ok := p.String(); ok {
				ids = append(ids, id)
			}
		}
		e.Extras["parents"] = ids
	}

	if owners, ok := body.Get("owners").Array(); ok {
		for _, o := range owners {
			e.addParticipant(RoleOwner,
				o.Get("emailAddress").StringOr(""),
				o.Get("displayName").StringOr(""))
		}
	}

	e.Classification.Operation = inferOperation(
		body.Get("createdTime").StringOr(""),
		body.Get("modifiedTime").StringOr(""))
}

// extractDriveDeletion normalizes a Drive change notice for a removed file.
// The payload is minimal: removed flag, fileId, change time. Name and type
// stay absent; a deletion notice does not carry them.
func extractDriveDeletion(e *Entity, body payload.Value) {
	if id, ok := body.Get("fileId").String(); ok {
		e.SetID(id)
	}

	e.setInstant(TimeModified, "time", body.Get("time"))

	if ct, ok := body.Get("changeType").String(); ok {
		e.Extras["change_type"] = ct
	}

	e.Classification.Operation = OperationDeleted
}
