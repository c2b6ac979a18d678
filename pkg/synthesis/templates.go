package synthesis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/recapd/recap-cli/pkg/normalize"
)

// PromptData holds everything the prompt template needs: the shape label,
// the priority contract, and the normalized entity rendered as JSON. The
// raw payload never reaches this stage.
type PromptData struct {
	ShapeLabel string
	Headline   string
	LeadFields string
	Entity     string
}

const promptTemplateText = `You are writing a concise markdown summary of a {{.ShapeLabel}} event.

REQUIREMENTS:
- Open the summary with the {{.Headline}}, prominently displayed at the top.
- The fields {{.LeadFields}} must appear before any other detail, in that order.
- Cover every populated field of the record below; omit absent fields entirely.
- Do not invent values for fields the record does not carry.
- If the record lists extraction errors, note the affected fields as unavailable.

RECORD (normalized JSON):
{{.Entity}}

Respond with the markdown document only.`

var promptTemplate = template.Must(template.New("summary").Parse(promptTemplateText))

// shapeLabels give each shape a human wording for the prompt.
var shapeLabels = map[normalize.Shape]string{
	normalize.ShapeEmail:               "new email",
	normalize.ShapeAlertEmail:          "critical system alert email",
	normalize.ShapeCalendarEvent:       "calendar event",
	normalize.ShapeMeeting:             "meeting with conference details",
	normalize.ShapeWorkingLocation:     "working location",
	normalize.ShapeDriveFile:           "Google Drive file operation",
	normalize.ShapeDriveDeletion:       "Google Drive file deletion",
	normalize.ShapeContact:             "CRM contact record",
	normalize.ShapeCompany:             "CRM company record",
	normalize.ShapeDeal:                "CRM deal record",
	normalize.ShapeCRMRecord:           "CRM record",
	normalize.ShapeTeamsActivity:       "Microsoft Teams activity",
	normalize.ShapeChatCreated:         "Microsoft Teams chat creation",
	normalize.ShapeOneDriveFile:        "OneDrive file operation",
	normalize.ShapeOutlookMessage:      "Outlook message",
	normalize.ShapeOutlookEventRemoval: "Outlook calendar event removal",
}

// BuildPrompt renders the synthesis prompt for a normalized entity.
func BuildPrompt(entity *normalize.Entity) (string, error) {
	shape := entity.Classification.Shape
	contract := ContractFor(shape)

	encoded, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding entity: %w", err)
	}

	label, ok := shapeLabels[shape]
	if !ok {
		label = string(shape)
	}

	data := PromptData{
		ShapeLabel: label,
		Headline:   contract.Headline,
		LeadFields: strings.Join(contract.Lead, ", "),
		Entity:     string(encoded),
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}
