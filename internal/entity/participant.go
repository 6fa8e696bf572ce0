package entity

import (
	"strings"
	"time"
)

type Participant struct {
	ParentName     string    `bson:"parentName" json:"parentName" validate:"required"`
	ParentEmail    string    `bson:"parentEmail" json:"parentEmail" validate:"required"`
	ParentWechatID string    `bson:"parentWechatId" json:"parentWechatId" validate:"required"`
	ChildName      string    `bson:"childName" json:"childName" validate:"required"`
	ChildAge       *int      `bson:"childAge" json:"childAge" validate:"required,gte=0"`
	Notes          string    `bson:"notes,omitempty" json:"notes,omitempty"`
	RegisteredAt   time.Time `bson:"registeredAt" json:"registeredAt"`
}

// RegistrationRequest is the body of POST /:id/register.
type RegistrationRequest struct {
	ParentName     string `json:"parentName"`
	ParentEmail    string `json:"parentEmail"`
	ParentWechatID string `json:"parentWechatId"`
	// ParentPhone is accepted for clients that send a phone number as the
	// contact instead of a WeChat id.
	ParentPhone string `json:"parentPhone"`
	ChildName   string `json:"childName"`
	ChildAge    *int   `json:"childAge"`
	Notes       string `json:"notes"`
}

// Participant builds the record to append, stamped with registeredAt.
func (r RegistrationRequest) Participant(now time.Time) Participant {
	contact := strings.TrimSpace(r.ParentWechatID)
	if contact == "" {
		contact = strings.TrimSpace(r.ParentPhone)
	}
	return Participant{
		ParentName:     r.ParentName,
		ParentEmail:    r.ParentEmail,
		ParentWechatID: contact,
		ChildName:      r.ChildName,
		ChildAge:       r.ChildAge,
		Notes:          r.Notes,
		RegisteredAt:   now,
	}
}
