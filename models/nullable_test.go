package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullable_Unmarshal(t *testing.T) {
	var body struct {
		Description Nullable[string] `json:"description"`
		DueDate     Nullable[string] `json:"due_date"`
		Position    Nullable[int]    `json:"position"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"description":null,"position":3}`), &body))

	assert.True(t, body.Description.Set)
	assert.False(t, body.Description.Valid)
	assert.Nil(t, body.Description.Ptr())

	assert.False(t, body.DueDate.Set)

	assert.True(t, body.Position.Set)
	assert.True(t, body.Position.Valid)
	assert.Equal(t, 3, *body.Position.Ptr())
}

func TestNullable_Marshal(t *testing.T) {
	out, err := json.Marshal(map[string]Nullable[string]{"a": NewNullable("x"), "b": Null[string]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"x","b":null}`, string(out))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2024-03-01T10:00:00Z")
	require.NoError(t, err)

	_, err = ParseDate("March 1st")
	require.Error(t, err)
}
