package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sex is stored as a plain string; one representation everywhere.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

func (s Sex) Valid() bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

// Address is optional on v1 records and mandatory on v2 creates.
type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

type User struct {
	ID          uuid.UUID `json:"id" gorm:"type:text;primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Sex         Sex       `json:"sex" gorm:"type:text;not null"`
	Email       string    `json:"email" gorm:"index;not null"`
	BirthDate   time.Time `json:"birthDate" gorm:"not null"`
	Nationality string    `json:"nationality" gorm:"not null"`
	Birthplace  string    `json:"birthplace" gorm:"not null"`
	CPF         string    `json:"cpf" gorm:"uniqueIndex;not null"`

	Address *Address `json:"address,omitempty" gorm:"embedded;embeddedPrefix:address_"`

	// Auth fields; empty for users created through the v1 API.
	PasswordHash          string     `json:"-"`
	RefreshToken          string     `json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasAddress reports whether the record carries a usable address. GORM may
// materialize the embedded pointer with zero values when the columns are empty.
func (u *User) HasAddress() bool {
	return u.Address != nil && u.Address.Street != ""
}

const (
	UserEventCreated = "user.created"
	UserEventUpdated = "user.updated"
	UserEventDeleted = "user.deleted"
)

// UserEvent is broadcast over the events feed after a successful mutation.
type UserEvent struct {
	Type   string    `json:"type"`
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	At     time.Time `json:"at"`
}
