package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type SkillLevel string

const (
	SkillLevelBeginner     SkillLevel = "beginner"
	SkillLevelIntermediate SkillLevel = "intermediate"
	SkillLevelAdvanced     SkillLevel = "advanced"
)

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusCancelled EventStatus = "cancelled"
)

type Location struct {
	Address string `bson:"address" json:"address" validate:"required"`
	City    string `bson:"city" json:"city" validate:"required"`
	State   string `bson:"state" json:"state" validate:"required"`
	ZipCode string `bson:"zipCode" json:"zipCode" validate:"required"`
}

// AgeRange bounds are nil when the client omitted them; validation rejects that.
type AgeRange struct {
	Min *int `bson:"min" json:"min" validate:"required,gte=0"`
	Max *int `bson:"max" json:"max" validate:"required,gte=0"`
}

// NewAgeRange returns a fully populated range.
func NewAgeRange(lo, hi int) AgeRange {
	return AgeRange{Min: &lo, Max: &hi}
}

// Event is one hosted teaching session. Participants are embedded so that
// registration and cancellation are single-document writes.
type Event struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title        string        `bson:"title" json:"title" validate:"required"`
	HostName     string        `bson:"hostName" json:"hostName" validate:"required"`
	HostEmail    string        `bson:"hostEmail" json:"hostEmail" validate:"required"`
	HostWechatID string        `bson:"hostWechatId" json:"hostWechatId" validate:"required"`
	Description  string        `bson:"description" json:"description" validate:"required"`

	Location Location `bson:"location" json:"location"`

	DateTime time.Time `bson:"dateTime" json:"dateTime" validate:"required"`
	Duration int       `bson:"duration" json:"duration" validate:"gt=0"`

	MaxCapacity       int `bson:"maxCapacity" json:"maxCapacity" validate:"gt=0"`
	CurrentEnrollment int `bson:"currentEnrollment" json:"currentEnrollment" validate:"gte=0"`

	SuggestedAgeRange AgeRange `bson:"suggestedAgeRange" json:"suggestedAgeRange"`

	Subject    string     `bson:"subject" json:"subject" validate:"required"`
	SkillLevel SkillLevel `bson:"skillLevel" json:"skillLevel" validate:"oneof=beginner intermediate advanced"`

	MaterialsProvided bool     `bson:"materialsProvided" json:"materialsProvided"`
	RequiredMaterials []string `bson:"requiredMaterials" json:"requiredMaterials"`
	AdditionalNotes   string   `bson:"additionalNotes,omitempty" json:"additionalNotes,omitempty"`

	Participants []Participant `bson:"participants" json:"participants" validate:"dive"`

	Status      EventStatus `bson:"status" json:"status" validate:"oneof=upcoming cancelled"`
	LastUpdated time.Time   `bson:"lastUpdated" json:"lastUpdated"`
	CreatedAt   time.Time   `bson:"createdAt" json:"createdAt"`
}

// ApplyDefaults fills the fields that have a schema default and normalizes
// nil slices so the stored document always carries arrays.
func (e *Event) ApplyDefaults() {
	if e.SkillLevel == "" {
		e.SkillLevel = SkillLevelBeginner
	}
	if e.Status == "" {
		e.Status = EventStatusUpcoming
	}
	if e.RequiredMaterials == nil {
		e.RequiredMaterials = []string{}
	}
	if e.Participants == nil {
		e.Participants = []Participant{}
	}
	for i := range e.Participants {
		if e.Participants[i].RegisteredAt.IsZero() {
			e.Participants[i].RegisteredAt = time.Now().UTC()
		}
	}
}

func (e *Event) IsFull() bool {
	return e.CurrentEnrollment >= e.MaxCapacity
}

// EventFilter holds the optional search parameters. Nil means "not supplied".
type EventFilter struct {
	Subject   string
	City      string
	State     string
	MinAge    *int
	MaxAge    *int
	StartDate *time.Time
	EndDate   *time.Time
}
