package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/rafaeltorres/user-registry/internal/domain"
)

// FieldError is a user-correctable validation failure on a single field,
// rendered as part of a 400 response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const birthDateLayout = "2006-01-02"

var postalCodeRe = regexp.MustCompile(`^\d{5}-?\d{3}$`)

// ProfileFields are the common user fields shared by both API versions.
// BirthDate is the raw request value in YYYY-MM-DD form.
type ProfileFields struct {
	Name        string
	Sex         string
	Email       string
	BirthDate   string
	Nationality string
	Birthplace  string
}

type AddressFields struct {
	Street     string
	Number     string
	Complement string
	District   string
	City       string
	State      string
	PostalCode string
}

// ParseBirthDate parses and range-checks a birth date: not in the future,
// year no earlier than 1900.
func ParseBirthDate(value string) (time.Time, error) {
	t, err := time.Parse(birthDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be a date in YYYY-MM-DD format")
	}
	if t.After(time.Now()) {
		return time.Time{}, fmt.Errorf("must not be in the future")
	}
	if t.Year() < 1900 {
		return time.Time{}, fmt.Errorf("year must be 1900 or later")
	}
	return t, nil
}

// ValidateProfile checks the common user fields and returns the parsed birth
// date alongside the failures, so callers never parse the date twice. The
// returned time is zero whenever the birth date itself failed.
func ValidateProfile(f ProfileFields) (time.Time, []FieldError) {
	var errs []FieldError
	var birthDate time.Time

	if err := textRange(f.Name, 3, 200); err != "" {
		errs = append(errs, FieldError{Field: "name", Message: err})
	}
	if !domain.Sex(f.Sex).Valid() {
		errs = append(errs, FieldError{Field: "sex", Message: "must be one of male, female or other"})
	}
	if err := validEmail(f.Email); err != "" {
		errs = append(errs, FieldError{Field: "email", Message: err})
	}
	if f.BirthDate == "" {
		errs = append(errs, FieldError{Field: "birthDate", Message: "is required"})
	} else if t, err := ParseBirthDate(f.BirthDate); err != nil {
		errs = append(errs, FieldError{Field: "birthDate", Message: err.Error()})
	} else {
		birthDate = t
	}
	if err := textRange(f.Nationality, 2, 100); err != "" {
		errs = append(errs, FieldError{Field: "nationality", Message: err})
	}
	if err := textRange(f.Birthplace, 2, 100); err != "" {
		errs = append(errs, FieldError{Field: "birthplace", Message: err})
	}

	return birthDate, errs
}

func ValidateAddress(f AddressFields) []FieldError {
	var errs []FieldError

	if err := textRange(f.Street, 3, 200); err != "" {
		errs = append(errs, FieldError{Field: "address.street", Message: err})
	}
	if f.Number == "" {
		errs = append(errs, FieldError{Field: "address.number", Message: "is required"})
	} else if len(f.Number) > 20 {
		errs = append(errs, FieldError{Field: "address.number", Message: "must have at most 20 characters"})
	}
	if len(f.Complement) > 100 {
		errs = append(errs, FieldError{Field: "address.complement", Message: "must have at most 100 characters"})
	}
	if err := textRange(f.District, 2, 100); err != "" {
		errs = append(errs, FieldError{Field: "address.district", Message: err})
	}
	if err := textRange(f.City, 2, 100); err != "" {
		errs = append(errs, FieldError{Field: "address.city", Message: err})
	}
	if len(f.State) != 2 {
		errs = append(errs, FieldError{Field: "address.state", Message: "must be a 2-letter state code"})
	}
	if !postalCodeRe.MatchString(f.PostalCode) {
		errs = append(errs, FieldError{Field: "address.postalCode", Message: "must match 12345-678 or 12345678"})
	}

	return errs
}

func ValidatePassword(password string) []FieldError {
	if len(password) < 6 || len(password) > 100 {
		return []FieldError{{Field: "password", Message: "must have between 6 and 100 characters"}}
	}
	return nil
}

func validEmail(email string) string {
	if email == "" {
		return "is required"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "must be a valid email address"
	}
	return ""
}

func textRange(value string, min, max int) string {
	if strings.TrimSpace(value) == "" {
		return "is required"
	}
	if n := len([]rune(value)); n < min || n > max {
		return fmt.Sprintf("must have between %d and %d characters", min, max)
	}
	return ""
}
