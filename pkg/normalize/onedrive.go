package normalize

import (
	"github.com/recapd/recap-cli/pkg/payload"
)

// extractOneDriveFile normalizes a OneDrive drive-item notification: id,
// name, size, createdDateTime/lastModifiedDateTime, webUrl, file-vs-folder,
// parent path, created-by and modified-by users.
func extractOneDriveFile(e *Entity, body payload.Value) {
	if id, ok := body.Get("id").String(); ok {
		e.SetID(id)
	}

	if name, ok := body.Get("name").String(); ok {
		e.Extras["file_name"] = name
	}
	if size, ok := body.Get("size").Float(); ok {
		e.Extras["size"] = int64(size)
	}
	if url, ok := body.Get("webUrl").String(); ok {
		e.Extras["web_url"] = url
	}
	e.Extras["is_folder"] = body.Get("folder").Present()
	if mt, ok := body.Get("file", "mimeType").String(); ok {
		e.Extras["mime_type"] = mt
	}
	if path, ok := body.Get("parentReference", "path").String(); ok {
		e.Extras["parent_path"] = path
	}

	e.setInstant(TimeCreated, "createdDateTime", body.Get("createdDateTime"))
	e.setInstant(TimeModified, "lastModifiedDateTime", body.Get("lastModifiedDateTime"))

	if user := body.Get("createdBy", "user"); user.Present() {
		e.addParticipant(RoleCreator,
			userIdentifier(user),
			user.Get("displayName").StringOr(""))
	}
	if user := body.Get("lastModifiedBy", "user"); user.Present() {
		e.addParticipant(RoleOwner,
			userIdentifier(user),
			user.Get("displayName").StringOr(""))
	}

	e.Classification.Operation = inferOperation(
		body.Get("createdDateTime").StringOr(""),
		body.Get("lastModifiedDateTime").StringOr(""))
}

// userIdentifier prefers the email over the opaque directory id for Graph
// identity objects.
func userIdentifier(user payload.Value) string {
	if email, ok := user.Get("email").String(); ok {
		return email
	}
	return user.Get("id").StringOr("")
}
