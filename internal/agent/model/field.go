package model

import "sort"

// Field names one piece of information gathered about the client.
type Field string

const (
	FieldCompanySize       Field = "company_size"
	FieldPainPoint         Field = "pain_point"
	FieldContactInfo       Field = "contact_info"
	FieldClientName        Field = "client_name"
	FieldUrgency           Field = "urgency"
	FieldBudgetRange       Field = "budget_range"
	FieldRole              Field = "role"
	FieldPreferredChannel  Field = "preferred_channel"
	FieldTimeline          Field = "timeline"
	FieldCurrentTools      Field = "current_tools"
	FieldBusinessType      Field = "business_type"
	FieldPainImpact        Field = "pain_impact"
	FieldDesiredOutcome    Field = "desired_outcome"
	FieldValueAcknowledged Field = "value_acknowledged"
	FieldHighInterest      Field = "high_interest"
)

// KnownFields is every field the extractor can produce.
var KnownFields = []Field{
	FieldCompanySize, FieldPainPoint, FieldContactInfo, FieldClientName,
	FieldUrgency, FieldBudgetRange, FieldRole, FieldPreferredChannel,
	FieldTimeline, FieldCurrentTools, FieldBusinessType, FieldPainImpact,
	FieldDesiredOutcome, FieldValueAcknowledged, FieldHighInterest,
}

// IsKnownField reports whether f is produced by the extractor.
func IsKnownField(f Field) bool {
	for _, k := range KnownFields {
		if k == f {
			return true
		}
	}
	return false
}

// ExtractedData holds the values pulled out of user messages. Zero values
// mean "absent"; a field is never stored empty.
type ExtractedData struct {
	CompanySize       int    `json:"company_size,omitempty"`
	PainPoint         string `json:"pain_point,omitempty"`
	ContactInfo       string `json:"contact_info,omitempty"`
	ClientName        string `json:"client_name,omitempty"`
	Urgency           string `json:"urgency,omitempty"`
	BudgetRange       string `json:"budget_range,omitempty"`
	Role              string `json:"role,omitempty"`
	PreferredChannel  string `json:"preferred_channel,omitempty"`
	Timeline          string `json:"timeline,omitempty"`
	CurrentTools      string `json:"current_tools,omitempty"`
	BusinessType      string `json:"business_type,omitempty"`
	PainImpact        string `json:"pain_impact,omitempty"`
	DesiredOutcome    string `json:"desired_outcome,omitempty"`
	ValueAcknowledged bool   `json:"value_acknowledged,omitempty"`
	HighInterest      bool   `json:"high_interest,omitempty"`
}

// Get returns the value of f and whether it is set.
func (d ExtractedData) Get(f Field) (any, bool) {
	switch f {
	case FieldCompanySize:
		return d.CompanySize, d.CompanySize > 0
	case FieldValueAcknowledged:
		return d.ValueAcknowledged, d.ValueAcknowledged
	case FieldHighInterest:
		return d.HighInterest, d.HighInterest
	}
	s := d.str(f)
	if s == nil {
		return nil, false
	}
	return *s, *s != ""
}

// Has reports whether f holds a non-empty value.
func (d ExtractedData) Has(f Field) bool {
	_, ok := d.Get(f)
	return ok
}

// Fields returns the set fields in a stable order.
func (d ExtractedData) Fields() []Field {
	var out []Field
	for _, f := range KnownFields {
		if d.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// IsEmpty reports whether no field is set.
func (d ExtractedData) IsEmpty() bool {
	return len(d.Fields()) == 0
}

// Missing returns the fields of required that are not yet set.
func (d ExtractedData) Missing(required []Field) []Field {
	var out []Field
	for _, f := range required {
		if !d.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Merge copies every set field of other into d. Empty values never
// overwrite; when allowed is non-nil only fields in it are copied.
func (d *ExtractedData) Merge(other ExtractedData, allowed map[Field]struct{}) {
	for _, f := range other.Fields() {
		if allowed != nil {
			if _, ok := allowed[f]; !ok {
				continue
			}
		}
		switch f {
		case FieldCompanySize:
			d.CompanySize = other.CompanySize
		case FieldValueAcknowledged:
			d.ValueAcknowledged = true
		case FieldHighInterest:
			d.HighInterest = true
		default:
			*d.str(f) = *other.str(f)
		}
	}
}

// AsMap renders the set fields as a plain map, used for prompt rendering.
func (d ExtractedData) AsMap() map[string]any {
	out := make(map[string]any)
	for _, f := range d.Fields() {
		v, _ := d.Get(f)
		out[string(f)] = v
	}
	return out
}

// FieldSet builds a lookup set from a list of fields.
func FieldSet(fields ...[]Field) map[Field]struct{} {
	out := make(map[Field]struct{})
	for _, list := range fields {
		for _, f := range list {
			out[f] = struct{}{}
		}
	}
	return out
}

// SortedFields returns the members of a field set in lexical order.
func SortedFields(set map[Field]struct{}) []Field {
	out := make([]Field, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (d *ExtractedData) str(f Field) *string {
	switch f {
	case FieldPainPoint:
		return &d.PainPoint
	case FieldContactInfo:
		return &d.ContactInfo
	case FieldClientName:
		return &d.ClientName
	case FieldUrgency:
		return &d.Urgency
	case FieldBudgetRange:
		return &d.BudgetRange
	case FieldRole:
		return &d.Role
	case FieldPreferredChannel:
		return &d.PreferredChannel
	case FieldTimeline:
		return &d.Timeline
	case FieldCurrentTools:
		return &d.CurrentTools
	case FieldBusinessType:
		return &d.BusinessType
	case FieldPainImpact:
		return &d.PainImpact
	case FieldDesiredOutcome:
		return &d.DesiredOutcome
	}
	return nil
}
