package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskDisposition(t *testing.T) {
	d, err := ParseTaskDisposition("")
	require.NoError(t, err)
	assert.Equal(t, TasksUnassign, d.Mode)

	d, err = ParseTaskDisposition("delete")
	require.NoError(t, err)
	assert.Equal(t, TasksDelete, d.Mode)

	id := uuid.New()
	d, err = ParseTaskDisposition(id.String())
	require.NoError(t, err)
	assert.Equal(t, TasksMove, d.Mode)
	assert.Equal(t, id, d.Target)

	_, err = ParseTaskDisposition("elsewhere")
	require.Error(t, err)
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, StatusBlocked.Valid())
	assert.False(t, TaskStatus("done").Valid())
	assert.True(t, PriorityUrgent.Valid())
	assert.False(t, Priority("critical").Valid())
	assert.True(t, ProjectOnHold.Valid())
	assert.False(t, ProjectStatus("paused").Valid())
	assert.True(t, ViewCalendar.Valid())
	assert.False(t, ViewType("gantt").Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("owner").Valid())
}

func TestTaskPatch_IsEmpty(t *testing.T) {
	var p TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.True(t, p.IsEmpty())

	require.NoError(t, json.Unmarshal([]byte(`{"section_id":null}`), &p))
	assert.False(t, p.IsEmpty())
	assert.True(t, p.SectionID.Set)
	assert.False(t, p.SectionID.Valid)
}

func TestUserPasswordNotSerialized(t *testing.T) {
	out, err := json.Marshal(User{Email: "a@b.c", Password: "hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hash")
}

func TestAccess(t *testing.T) {
	admin, member := RoleAdmin, RoleMember

	tests := []struct {
		name    string
		access  Access
		canRead bool
		isAdmin bool
	}{
		{"missing", Access{}, false, false},
		{"stranger", Access{Exists: true}, false, false},
		{"owner", Access{Exists: true, Owner: true}, true, true},
		{"admin", Access{Exists: true, Role: &admin}, true, true},
		{"member", Access{Exists: true, Role: &member}, true, false},
		{"workspace member", Access{Exists: true, ViaWorkspace: true}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.canRead, tt.access.CanRead())
			assert.Equal(t, tt.isAdmin, tt.access.IsAdmin())
		})
	}
}
