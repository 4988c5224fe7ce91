package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rafaeltorres/user-registry/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RandomCPF generates a checksum-valid CPF for fixtures.
func RandomCPF() string {
	digits := make([]int, 11)
	for i := 0; i < 9; i++ {
		digits[i] = rand.Intn(10)
	}
	digits[9] = cpfCheckDigit(digits[:9], 10)
	digits[10] = cpfCheckDigit(digits[:10], 11)

	out := make([]byte, 11)
	for i, d := range digits {
		out[i] = byte('0' + d)
	}
	return string(out)
}

func cpfCheckDigit(digits []int, startWeight int) int {
	sum := 0
	for i, d := range digits {
		sum += d * (startWeight - i)
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name           string
	email          string
	cpf            string
	password       string
	birthDate      time.Time
	address        *domain.Address
	refreshToken   string
	refreshExpires time.Time
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		name:      fmt.Sprintf("Test User %s", suffix),
		email:     fmt.Sprintf("user_%s@example.com", suffix),
		cpf:       RandomCPF(),
		birthDate: time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC),
	}
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithCPF(cpf string) *UserBuilder {
	b.cpf = cpf
	return b
}

// WithPassword makes the user loginable
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithAddress() *UserBuilder {
	b.address = &domain.Address{
		Street:     "Rua das Flores",
		Number:     "123",
		District:   "Centro",
		City:       "Curitiba",
		State:      "PR",
		PostalCode: "80010-000",
	}
	return b
}

func (b *UserBuilder) WithRefreshToken(token string, expiresAt time.Time) *UserBuilder {
	b.refreshToken = token
	b.refreshExpires = expiresAt
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	user := &domain.User{
		ID:          uuid.New(),
		Name:        b.name,
		Sex:         domain.SexOther,
		Email:       b.email,
		BirthDate:   b.birthDate,
		Nationality: "Brasileira",
		Birthplace:  "Curitiba",
		CPF:         b.cpf,
		Address:     b.address,
	}

	if b.password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		user.PasswordHash = string(hash)
	}

	if b.refreshToken != "" {
		user.RefreshToken = b.refreshToken
		expires := b.refreshExpires
		user.RefreshTokenExpiresAt = &expires
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

// Login authenticates against the test server and returns the token pair
func Login(t *testing.T, ts *TestServer, email, password string) AuthResponse {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed with status %d", resp.StatusCode)
	}

	var result AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return result
}
