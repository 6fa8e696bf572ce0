package entity

import "time"

type LifecycleType string

const (
	LifecycleEventCreated          LifecycleType = "event.created"
	LifecycleEventUpdated          LifecycleType = "event.updated"
	LifecycleEventDeleted          LifecycleType = "event.deleted"
	LifecycleParticipantRegistered LifecycleType = "participant.registered"
	LifecycleParticipantCancelled  LifecycleType = "participant.cancelled"
)

// LifecycleRecord is one entry of the event change feed.
type LifecycleRecord struct {
	ID                string        `json:"id"`
	Type              LifecycleType `json:"type"`
	EventID           string        `json:"eventId"`
	ParentEmail       string        `json:"parentEmail,omitempty"`
	CurrentEnrollment int           `json:"currentEnrollment"`
	MaxCapacity       int           `json:"maxCapacity"`
	OccurredAt        time.Time     `json:"occurredAt"`
}
