package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAadhaar(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		input   string
		valid   bool
		message string
	}{
		{"accepts 12 digits", "123456789012", true, "Aadhaar number is valid"},
		{"rejects empty", "", false, "Aadhaar number is required"},
		{"rejects short", "12345", false, "Aadhaar number must be exactly 12 digits"},
		{"rejects long", "1234567890123", false, "Aadhaar number must be exactly 12 digits"},
		{"rejects non-digits", "12345678901a", false, "Aadhaar number must be exactly 12 digits"},
		{"rejects digits with spaces", "1234 5678 9012", false, "Aadhaar number must be exactly 12 digits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Aadhaar(tt.input)
			assert.Equal(t, tt.valid, result.Valid)
			assert.Equal(t, tt.message, result.Message)
			assert.Equal(t, "aadhaar_number", result.FieldName)
			assert.Equal(t, "aadhaar", result.CheckType)
		})
	}
}

func TestName(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"accepts plain name", "Jane Doe", true},
		{"accepts dots", "J. R. Enterprises", true},
		{"rejects empty", "", false},
		{"rejects whitespace only", "   ", false},
		{"rejects single character", "J", false},
		{"rejects over 255 characters", strings.Repeat("a", 256), false},
		{"rejects digits", "Jane Doe 2", false},
		{"rejects symbols", "Jane & Co", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Name("entrepreneur_name", tt.input)
			assert.Equal(t, tt.valid, result.Valid, result.Message)
			assert.Equal(t, "entrepreneur_name", result.FieldName)
		})
	}

	t.Run("canonical form is trimmed", func(t *testing.T) {
		result := v.Name("pan_name", "  Jane Doe  ")
		assert.True(t, result.Valid)
		assert.Equal(t, "Jane Doe", result.Canonical)
	})
}

func TestPAN(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"accepts upper case", "ABCDE1234F", true},
		{"accepts lower case", "abcde1234f", true},
		{"rejects empty", "", false},
		{"rejects short", "ABCDE1234", false},
		{"rejects long", "ABCDE1234FG", false},
		{"rejects wrong shape", "1234EABCDF", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.PAN(tt.input)
			assert.Equal(t, tt.valid, result.Valid, result.Message)
		})
	}

	t.Run("canonical form is upper-cased", func(t *testing.T) {
		result := v.PAN("abcde1234f")
		assert.True(t, result.Valid)
		assert.Equal(t, "ABCDE1234F", result.Canonical)
	})
}

func TestOTP(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"accepts 6 digits", "123456", true},
		{"rejects empty", "", false},
		{"rejects short", "12345", false},
		{"rejects long", "1234567", false},
		{"rejects letters", "12345a", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.OTP(tt.input)
			assert.Equal(t, tt.valid, result.Valid, result.Message)
		})
	}
}

func TestGSTIN(t *testing.T) {
	v := New()

	t.Run("absent value is valid", func(t *testing.T) {
		result := v.GSTIN("")
		assert.True(t, result.Valid)
		assert.Empty(t, result.Canonical)
	})

	t.Run("accepts and canonicalizes a valid GSTIN", func(t *testing.T) {
		result := v.GSTIN("22aaaaa0000a1z5")
		assert.True(t, result.Valid)
		assert.Equal(t, "22AAAAA0000A1Z5", result.Canonical)
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		for _, bad := range []string{"22AAAAA0000A1X5", "AAAAA0000A1Z5", "22AAAAA0000A1Z55"} {
			result := v.GSTIN(bad)
			assert.False(t, result.Valid, bad)
		}
	})
}
