package normalize

import (
	"strings"

	"github.com/recapd/recap-cli/pkg/payload"
)

// extractCRMCommon pulls the fields every HubSpot record shares: id,
// createdAt/updatedAt, archived flag, and the raw properties map. The raw
// map is preserved unmodified in extras so the report stage can fall back
// when the type inference was a guess.
func extractCRMCommon(e *Entity, body payload.Value) payload.Value {
	if id, ok := body.Get("id").String(); ok {
		e.SetID(id)
	}

	e.setInstant(TimeCreated, "createdAt", body.Get("createdAt"))
	e.setInstant(TimeModified, "updatedAt", body.Get("updatedAt"))

	if archived, ok := body.Get("archived").Bool(); ok {
		e.Extras["archived"] = archived
	}

	props := body.Get("properties")
	if raw, ok := props.Object(); ok {
		e.Extras["properties"] = raw
	}

	if archived, _ := body.Get("archived").Bool(); archived {
		e.Classification.Operation = OperationDeleted
	} else {
		e.Classification.Operation = inferOperation(
			body.Get("createdAt").StringOr(""),
			body.Get("updatedAt").StringOr(""))
	}

	return props
}

// extractContact normalizes a HubSpot contact record, deriving the
// engagement metrics the report leads with.
func extractContact(e *Entity, body payload.Value) {
	props := extractCRMCommon(e, body)

	first := props.Get("firstname").StringOr("")
	last := props.Get("lastname").StringOr("")
	email := props.Get("email").StringOr("")
	e.addParticipant(RoleOwner, email, strings.TrimSpace(first+" "+last))

	copyProp(e, props, "email", "email")
	copyProp(e, props, "jobtitle", "job_title")
	copyProp(e, props, "company", "company")
	copyProp(e, props, "lifecyclestage", "lifecycle_stage")
	copyProp(e, props, "hs_email_open", "email_opens")
	copyProp(e, props, "hs_email_delivered", "email_delivered")
	if name := strings.TrimSpace(first + " " + last); name != "" {
		e.Extras["name"] = name
	}
	if score := leadScore(props); score != "" {
		e.Extras["lead_score"] = score
	}
}

// extractCompany normalizes a HubSpot company record. The web_technologies
// property is a ;-separated list and is split into the technology stack.
func extractCompany(e *Entity, body payload.Value) {
	props := extractCRMCommon(e, body)

	copyProp(e, props, "name", "name")
	copyProp(e, props, "domain", "domain")
	copyProp(e, props, "industry", "industry")
	copyProp(e, props, "numberofemployees", "employees")
	copyProp(e, props, "annualrevenue", "annual_revenue")
	copyProp(e, props, "lifecyclestage", "lifecycle_stage")

	if tech, ok := props.Get("web_technologies").String(); ok && tech != "" {
		e.Extras["technologies"] = strings.Split(tech, ";")
	}
}

// extractDeal normalizes a HubSpot deal record. The deal stage doubles as
// the priority hint on the classification.
func extractDeal(e *Entity, body payload.Value) {
	props := extractCRMCommon(e, body)

	copyProp(e, props, "dealname", "deal_name")
	copyProp(e, props, "dealstage", "deal_stage")
	copyProp(e, props, "amount", "amount")
	copyProp(e, props, "closedate", "close_date")
	copyProp(e, props, "pipeline", "pipeline")

	if stage, ok := props.Get("dealstage").String(); ok {
		e.Classification.Severity = stage
	}
}

// extractCRMRecord normalizes a HubSpot record whose type could not be
// pinned down. The classification carries a confidence-ordered guess from
// whichever identifying properties are present; the untouched properties
// map in extras lets the report stage fall back.
func extractCRMRecord(e *Entity, body payload.Value) {
	props := extractCRMCommon(e, body)

	inferred, primary := inferRecordType(props)
	e.Extras["inferred_type"] = inferred
	if primary != "" {
		e.Extras["primary_identifier"] = primary
	}
	e.Classification.Confidence = 0.5
}

// inferRecordType guesses the record type from which identifying properties
// are present, in confidence order, and returns the guess plus the primary
// identifier that drove it.
func inferRecordType(props payload.Value) (string, string) {
	if name, ok := props.Get("dealname").String(); ok {
		return "deal", name
	}
	if email, ok := props.Get("email").String(); ok {
		return "contact", email
	}
	if domain, ok := props.Get("domain").String(); ok {
		return "company", domain
	}
	if name, ok := props.Get("name").String(); ok {
		return "unknown", name
	}
	return "unknown", ""
}

// leadScore finds a lead-score property. HubSpot date-stamps these
// (lead_score_06_11_2025), so the lookup scans the raw keys; the
// last-sorting key wins when several are present.
func leadScore(props payload.Value) string {
	raw, ok := props.Object()
	if !ok {
		return ""
	}
	bestKey := ""
	for key := range raw {
		if !strings.HasPrefix(key, "lead_score") || strings.HasSuffix(key, "_threshold") {
			continue
		}
		if key > bestKey {
			bestKey = key
		}
	}
	if bestKey == "" {
		return ""
	}
	return props.Get(bestKey).StringOr("")
}

// copyProp copies a string property into the entity extras under the
// normalized key, leaving the key absent when the property is missing.
func copyProp(e *Entity, props payload.Value, prop, key string) {
	if s, ok := props.Get(prop).String(); ok {
		e.Extras[key] = s
	}
}
