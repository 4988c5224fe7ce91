package validation_test

import (
	"strings"
	"testing"

	"github.com/rafaeltorres/user-registry/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCPF_Valid(t *testing.T) {
	tests := []struct {
		name string
		cpf  string
	}{
		{"plain digits", "11144477735"},
		{"another known value", "12345678909"},
		{"third known value", "52998224725"},
		{"conventional formatting", "111.444.777-35"},
		{"surrounding whitespace", "  12345678909  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, validation.ValidateCPF(tt.cpf))
		})
	}
}

func TestValidateCPF_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cpf  string
	}{
		{"empty", ""},
		{"too short", "1114447773"},
		{"too long", "111444777355"},
		{"non-digit character", "11144477a35"},
		{"all zeros", "00000000000"},
		{"all ones", "11111111111"},
		{"all nines formatted", "999.999.999-99"},
		{"first check digit flipped", "11144477725"},
		{"second check digit flipped", "11144477734"},
		{"both check digits swapped", "11144477753"},
		{"body digit flipped", "21144477735"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateCPF(tt.cpf)
			require.Error(t, err)
			assert.ErrorIs(t, err, validation.ErrInvalidCPF)
		})
	}
}

func TestValidateCPF_RepeatedDigits(t *testing.T) {
	for d := '0'; d <= '9'; d++ {
		cpf := strings.Repeat(string(d), 11)
		assert.ErrorIs(t, validation.ValidateCPF(cpf), validation.ErrInvalidCPF, "cpf %s", cpf)
	}
}

func TestValidateCPF_Deterministic(t *testing.T) {
	inputs := []string{"11144477735", "11144477734", "111.444.777-35", "00000000000"}
	for _, cpf := range inputs {
		first := validation.ValidateCPF(cpf)
		for i := 0; i < 10; i++ {
			again := validation.ValidateCPF(cpf)
			assert.Equal(t, first == nil, again == nil, "result changed for %s", cpf)
		}
	}
}

func TestNormalizeCPF(t *testing.T) {
	assert.Equal(t, "11144477735", validation.NormalizeCPF("111.444.777-35"))
	assert.Equal(t, "11144477735", validation.NormalizeCPF(" 11144477735 "))
	assert.Equal(t, "11144477735", validation.NormalizeCPF("11144477735"))
}
