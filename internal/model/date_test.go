package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateWireFormat(t *testing.T) {
	d := NewDate(time.Date(2026, time.March, 7, 15, 30, 0, 0, time.UTC))

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"07/03/2026"`, string(raw))

	var parsed Date
	require.NoError(t, json.Unmarshal([]byte(`"07/03/2026"`), &parsed))
	assert.True(t, parsed.Equal(d.Time))

	var zero Date
	raw, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))

	require.NoError(t, json.Unmarshal([]byte("null"), &parsed))
	assert.True(t, parsed.IsZero())

	err = json.Unmarshal([]byte(`"2026-03-07"`), &parsed)
	assert.Error(t, err)
}

func TestNewTransferIDMonotonic(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewTransferID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
