package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Seat modes and entitlement modes.
const (
	ModeVerified             = "verified"
	ModePaidExecutiveEd      = "paid-executive-education"
	ModePaidBootcamp         = "paid-bootcamp"
	RestrictionB2BEnterprise = "custom-b2b-enterprise"
)

// Seat is the run-level purchasable offer, draft/official paired like its run.
type Seat struct {
	UUID            uuid.UUID       `json:"uuid"`
	CourseRunUUID   uuid.UUID       `json:"course_run_uuid"`
	Type            string          `json:"type"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
	RestrictionType *string         `json:"restriction_type,omitempty"`
	Draft           bool            `json:"draft"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseEntitlement is the course-level offer shared by all variants. Only
// non-restricted variants may write its price.
type CourseEntitlement struct {
	UUID       uuid.UUID       `json:"uuid"`
	CourseUUID uuid.UUID       `json:"course_uuid"`
	Mode       string          `json:"mode"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
	Draft      bool            `json:"draft"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
