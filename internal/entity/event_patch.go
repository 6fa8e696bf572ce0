package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// EventPatch is the body of PUT /:id. Only non-nil fields are written, nested
// objects are merged field by field. _id and createdAt cannot be patched.
type EventPatch struct {
	Title        *string `json:"title,omitempty"`
	HostName     *string `json:"hostName,omitempty"`
	HostEmail    *string `json:"hostEmail,omitempty"`
	HostWechatID *string `json:"hostWechatId,omitempty"`
	Description  *string `json:"description,omitempty"`

	Location *LocationPatch `json:"location,omitempty"`

	DateTime *time.Time `json:"dateTime,omitempty"`
	Duration *int       `json:"duration,omitempty"`

	MaxCapacity       *int `json:"maxCapacity,omitempty"`
	CurrentEnrollment *int `json:"currentEnrollment,omitempty"`

	SuggestedAgeRange *AgeRangePatch `json:"suggestedAgeRange,omitempty"`

	Subject    *string     `json:"subject,omitempty"`
	SkillLevel *SkillLevel `json:"skillLevel,omitempty"`

	MaterialsProvided *bool     `json:"materialsProvided,omitempty"`
	RequiredMaterials *[]string `json:"requiredMaterials,omitempty"`
	AdditionalNotes   *string   `json:"additionalNotes,omitempty"`

	Participants *[]Participant `json:"participants,omitempty"`

	Status *EventStatus `json:"status,omitempty"`
}

type LocationPatch struct {
	Address *string `json:"address,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	ZipCode *string `json:"zipCode,omitempty"`
}

type AgeRangePatch struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// Apply merges the patch into e in place.
func (p *EventPatch) Apply(e *Event) {
	for _, f := range p.fields() {
		f.apply(e)
	}
}

// SetFields returns the $set document for the patch, keyed by dotted paths.
func (p *EventPatch) SetFields() bson.M {
	set := bson.M{}
	for _, f := range p.fields() {
		set[f.path] = f.value
	}
	return set
}

func (p *EventPatch) IsEmpty() bool {
	return len(p.fields()) == 0
}

type patchField struct {
	path  string
	value any
	apply func(*Event)
}

func (p *EventPatch) fields() []patchField {
	var out []patchField
	add := func(path string, value any, apply func(*Event)) {
		out = append(out, patchField{path: path, value: value, apply: apply})
	}

	if v := p.Title; v != nil {
		add("title", *v, func(e *Event) { e.Title = *v })
	}
	if v := p.HostName; v != nil {
		add("hostName", *v, func(e *Event) { e.HostName = *v })
	}
	if v := p.HostEmail; v != nil {
		add("hostEmail", *v, func(e *Event) { e.HostEmail = *v })
	}
	if v := p.HostWechatID; v != nil {
		add("hostWechatId", *v, func(e *Event) { e.HostWechatID = *v })
	}
	if v := p.Description; v != nil {
		add("description", *v, func(e *Event) { e.Description = *v })
	}
	if l := p.Location; l != nil {
		if v := l.Address; v != nil {
			add("location.address", *v, func(e *Event) { e.Location.Address = *v })
		}
		if v := l.City; v != nil {
			add("location.city", *v, func(e *Event) { e.Location.City = *v })
		}
		if v := l.State; v != nil {
			add("location.state", *v, func(e *Event) { e.Location.State = *v })
		}
		if v := l.ZipCode; v != nil {
			add("location.zipCode", *v, func(e *Event) { e.Location.ZipCode = *v })
		}
	}
	if v := p.DateTime; v != nil {
		add("dateTime", *v, func(e *Event) { e.DateTime = *v })
	}
	if v := p.Duration; v != nil {
		add("duration", *v, func(e *Event) { e.Duration = *v })
	}
	if v := p.MaxCapacity; v != nil {
		add("maxCapacity", *v, func(e *Event) { e.MaxCapacity = *v })
	}
	if v := p.CurrentEnrollment; v != nil {
		add("currentEnrollment", *v, func(e *Event) { e.CurrentEnrollment = *v })
	}
	if r := p.SuggestedAgeRange; r != nil {
		if v := r.Min; v != nil {
			add("suggestedAgeRange.min", *v, func(e *Event) { n := *v; e.SuggestedAgeRange.Min = &n })
		}
		if v := r.Max; v != nil {
			add("suggestedAgeRange.max", *v, func(e *Event) { n := *v; e.SuggestedAgeRange.Max = &n })
		}
	}
	if v := p.Subject; v != nil {
		add("subject", *v, func(e *Event) { e.Subject = *v })
	}
	if v := p.SkillLevel; v != nil {
		add("skillLevel", *v, func(e *Event) { e.SkillLevel = *v })
	}
	if v := p.MaterialsProvided; v != nil {
		add("materialsProvided", *v, func(e *Event) { e.MaterialsProvided = *v })
	}
	if v := p.RequiredMaterials; v != nil {
		materials := *v
		if materials == nil {
			materials = []string{}
		}
		add("requiredMaterials", materials, func(e *Event) { e.RequiredMaterials = materials })
	}
	if v := p.AdditionalNotes; v != nil {
		add("additionalNotes", *v, func(e *Event) { e.AdditionalNotes = *v })
	}
	if v := p.Participants; v != nil {
		participants := *v
		if participants == nil {
			participants = []Participant{}
		}
		add("participants", participants, func(e *Event) { e.Participants = participants })
	}
	if v := p.Status; v != nil {
		add("status", *v, func(e *Event) { e.Status = *v })
	}
	return out
}
