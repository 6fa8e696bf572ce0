package entity

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserRole string

const (
	UserRoleParent  UserRole = "parent"
	UserRoleTeacher UserRole = "teacher"
	UserRoleAdmin   UserRole = "admin"
)

type TeachingProfile struct {
	Bio               string   `bson:"bio,omitempty" json:"bio,omitempty"`
	Expertise         []string `bson:"expertise,omitempty" json:"expertise,omitempty"`
	Certifications    []string `bson:"certifications,omitempty" json:"certifications,omitempty"`
	YearsOfExperience int      `bson:"yearsOfExperience,omitempty" json:"yearsOfExperience,omitempty" validate:"gte=0"`
}

type Child struct {
	Name         string   `bson:"name,omitempty" json:"name,omitempty"`
	Age          int      `bson:"age,omitempty" json:"age,omitempty" validate:"gte=0"`
	SpecialNeeds string   `bson:"specialNeeds,omitempty" json:"specialNeeds,omitempty"`
	Interests    []string `bson:"interests,omitempty" json:"interests,omitempty"`
}

type Address struct {
	Street  string `bson:"street" json:"street" validate:"required"`
	City    string `bson:"city" json:"city" validate:"required"`
	State   string `bson:"state" json:"state" validate:"required"`
	ZipCode string `bson:"zipCode" json:"zipCode" validate:"required"`
}

type NotificationPreferences struct {
	Email bool `bson:"email" json:"email"`
	SMS   bool `bson:"sms" json:"sms"`
}

type Preferences struct {
	MaxTravelDistance       *float64                `bson:"maxTravelDistance,omitempty" json:"maxTravelDistance,omitempty"`
	PreferredSubjects       []string                `bson:"preferredSubjects,omitempty" json:"preferredSubjects,omitempty"`
	NotificationPreferences NotificationPreferences `bson:"notificationPreferences" json:"notificationPreferences"`
}

// User is an account for a parent, teacher or admin. Teachers fill
// TeachingProfile, parents fill Children.
type User struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email       string        `bson:"email" json:"email" validate:"required,email"`
	Password    string        `bson:"password" json:"-" validate:"required"`
	FirstName   string        `bson:"firstName" json:"firstName" validate:"required"`
	LastName    string        `bson:"lastName" json:"lastName" validate:"required"`
	PhoneNumber string        `bson:"phoneNumber" json:"phoneNumber" validate:"required"`
	Role        UserRole      `bson:"role" json:"role" validate:"required,oneof=parent teacher admin"`

	TeachingProfile *TeachingProfile `bson:"teachingProfile,omitempty" json:"teachingProfile,omitempty"`
	Children        []Child          `bson:"children,omitempty" json:"children,omitempty" validate:"dive"`

	Address     Address     `bson:"address" json:"address"`
	Preferences Preferences `bson:"preferences" json:"preferences"`

	HostedEvents     []bson.ObjectID `bson:"hostedEvents" json:"hostedEvents"`
	RegisteredEvents []bson.ObjectID `bson:"registeredEvents" json:"registeredEvents"`
	WaitlistedEvents []bson.ObjectID `bson:"waitlistedEvents" json:"waitlistedEvents"`

	IsActive  bool      `bson:"isActive" json:"isActive"`
	LastLogin time.Time `bson:"lastLogin" json:"lastLogin"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CreateUserRequest carries the plain-text password; it is hashed before
// the User is stored.
type CreateUserRequest struct {
	Email           string              `json:"email"`
	Password        string              `json:"password"`
	FirstName       string              `json:"firstName"`
	LastName        string              `json:"lastName"`
	PhoneNumber     string              `json:"phoneNumber"`
	Role            UserRole            `json:"role"`
	TeachingProfile *TeachingProfile    `json:"teachingProfile,omitempty"`
	Children        []Child             `json:"children,omitempty"`
	Address         Address             `json:"address"`
	Preferences     *PreferencesRequest `json:"preferences,omitempty"`
}

// PreferencesRequest tracks which notification flags the client sent so
// that each omitted flag falls back to its own default.
type PreferencesRequest struct {
	MaxTravelDistance       *float64 `json:"maxTravelDistance,omitempty"`
	PreferredSubjects       []string `json:"preferredSubjects,omitempty"`
	NotificationPreferences *struct {
		Email *bool `json:"email"`
		SMS   *bool `json:"sms"`
	} `json:"notificationPreferences,omitempty"`
}

// Preferences resolves the request against the defaults: email on, sms off.
func (r *PreferencesRequest) Preferences() Preferences {
	p := Preferences{NotificationPreferences: NotificationPreferences{Email: true}}
	if r == nil {
		return p
	}
	p.MaxTravelDistance = r.MaxTravelDistance
	p.PreferredSubjects = r.PreferredSubjects
	if n := r.NotificationPreferences; n != nil {
		if n.Email != nil {
			p.NotificationPreferences.Email = *n.Email
		}
		if n.SMS != nil {
			p.NotificationPreferences.SMS = *n.SMS
		}
	}
	return p
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser builds the stored record with defaults applied. The password is
// left empty for the caller to fill with a hash.
func (r CreateUserRequest) NewUser(now time.Time) *User {
	u := &User{
		Email:            NormalizeEmail(r.Email),
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		PhoneNumber:      r.PhoneNumber,
		Role:             r.Role,
		TeachingProfile:  r.TeachingProfile,
		Children:         r.Children,
		Address:          r.Address,
		Preferences:      r.Preferences.Preferences(),
		HostedEvents:     []bson.ObjectID{},
		RegisteredEvents: []bson.ObjectID{},
		WaitlistedEvents: []bson.ObjectID{},
		IsActive:         true,
		LastLogin:        now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return u
}
