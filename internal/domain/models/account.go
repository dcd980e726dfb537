package models

import (
	"time"
)

// DefaultRemindCycleDays is the reminder horizon applied to new accounts.
const DefaultRemindCycleDays = 7

// Account is a registered user. Authentication credential handling lives
// behind the identity resolver; the core only threads account ids.
type Account struct {
	ID            string    `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	Name          string    `json:"name" db:"name"`
	Image         string    `json:"image" db:"image"`
	SocialType    string    `json:"social_type" db:"social_type"`
	DeliveryToken *string   `json:"delivery_token,omitempty" db:"delivery_token"`
	RemindCycle   int       `json:"remind_cycle" db:"remind_cycle"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
