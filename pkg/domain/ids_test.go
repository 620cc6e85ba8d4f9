package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sitewatch/pkg/domain-errors"
)

func TestParseSessionID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseSessionID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseSessionID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseSessionID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseSessionID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, valid.String(), id.String())
		assert.False(t, id.IsNil())
	})
}

func TestParseIDs_RoundTrip(t *testing.T) {
	t.Run("entry id", func(t *testing.T) {
		id := NewEntryID()
		parsed, err := ParseEntryID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})

	t.Run("alert id", func(t *testing.T) {
		id := NewAlertID()
		parsed, err := ParseAlertID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})

	t.Run("event id", func(t *testing.T) {
		id := NewEventID()
		parsed, err := ParseEventID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})
}

func TestIDs_JSONEncoding(t *testing.T) {
	// IDs must render as canonical UUID strings, not byte arrays.
	id := NewAlertID()
	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"`+id.String()+`"`, string(data))

	var decoded AlertID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)
}
