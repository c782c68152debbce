package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "udyam/pkg/domain-errors"
)

// TestParseRegistrationID_Invariants validates the parsing invariant:
// registration ids must be positive decimal integers.
func TestParseRegistrationID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseRegistrationID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects non-numeric input", func(t *testing.T) {
		_, err := ParseRegistrationID("abc")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects zero and negatives", func(t *testing.T) {
		for _, s := range []string{"0", "-1"} {
			_, err := ParseRegistrationID(s)
			require.Error(t, err, s)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})

	t.Run("accepts positive integers", func(t *testing.T) {
		id, err := ParseRegistrationID("42")
		require.NoError(t, err)
		assert.Equal(t, RegistrationID(42), id)
		assert.Equal(t, "42", id.String())
		assert.False(t, id.IsNil())
	})
}
