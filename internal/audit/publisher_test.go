package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"udyam/pkg/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisher_SyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, discardLogger())
	defer pub.Close()

	entry := Entry{
		RegistrationID: domain.RegistrationID(1),
		FieldName:      "aadhaar_number",
		CheckType:      CheckAadhaar,
		Valid:          true,
	}
	require.NoError(t, pub.Emit(context.Background(), entry))

	entries, err := pub.List(context.Background(), domain.RegistrationID(1))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, CheckAadhaar, entries[0].CheckType)
	assert.NotZero(t, entries[0].EventID)
	assert.False(t, entries[0].At.IsZero())
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, discardLogger(), WithAsyncBuffer(100))

	for range 10 {
		entry := Entry{
			RegistrationID: domain.RegistrationID(7),
			FieldName:      "pan_number",
			CheckType:      CheckPAN,
			Valid:          false,
			Message:        "PAN must be in format: ABCDE1234F",
		}
		require.NoError(t, pub.Emit(context.Background(), entry))
	}

	// Close must drain all buffered entries.
	pub.Close()

	entries, err := store.ListByRegistration(context.Background(), domain.RegistrationID(7))
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}

type recordingSink struct {
	published [][]byte
	fail      bool
}

func (s *recordingSink) Publish(_ context.Context, _, value []byte) error {
	if s.fail {
		return errors.New("broker unavailable")
	}
	s.published = append(s.published, value)
	return nil
}

func TestPublisher_SinkFanOut(t *testing.T) {
	store := NewInMemoryStore()
	sink := &recordingSink{}
	pub := NewPublisher(store, discardLogger(), WithSink(sink))
	defer pub.Close()

	require.NoError(t, pub.Emit(context.Background(), Entry{
		RegistrationID: domain.RegistrationID(3),
		FieldName:      "otp_code",
		CheckType:      CheckOTP,
		Valid:          true,
	}))

	require.Len(t, sink.published, 1)
	assert.Contains(t, string(sink.published[0]), `"check_type":"otp"`)
}

func TestPublisher_SinkFailureDoesNotLoseEntry(t *testing.T) {
	store := NewInMemoryStore()
	sink := &recordingSink{fail: true}
	pub := NewPublisher(store, discardLogger(), WithSink(sink))
	defer pub.Close()

	require.NoError(t, pub.Emit(context.Background(), Entry{
		RegistrationID: domain.RegistrationID(4),
		FieldName:      "gstin",
		CheckType:      CheckGSTIN,
		Valid:          false,
		Message:        "GSTIN must be in format: 22AAAAA0000A1Z5",
	}))

	entries, err := store.ListByRegistration(context.Background(), domain.RegistrationID(4))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
