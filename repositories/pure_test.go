package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

func TestPlanReorder(t *testing.T) {
	tests := []struct {
		name                   string
		current, target, count int
		wantPos                int
		wantShift              *ReorderShift
	}{
		{"move up", 3, 1, 4, 1, &ReorderShift{From: 1, To: 2, Delta: 1}},
		{"move down", 0, 2, 4, 2, &ReorderShift{From: 1, To: 2, Delta: -1}},
		{"same slot", 2, 2, 4, 2, nil},
		{"clamped high", 0, 10, 3, 2, &ReorderShift{From: 1, To: 2, Delta: -1}},
		{"clamped low", 2, -5, 3, 0, &ReorderShift{From: 0, To: 1, Delta: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, shift := PlanReorder(tt.current, tt.target, tt.count)
			assert.Equal(t, tt.wantPos, pos)
			assert.Equal(t, tt.wantShift, shift)
		})
	}
}

// applyReorder simulates PlanReorder over a dense list of positions.
func applyReorder(positions []int, moved, target int) []int {
	pos, shift := PlanReorder(positions[moved], target, len(positions))
	out := append([]int(nil), positions...)
	if shift != nil {
		for i, p := range positions {
			if i != moved && p >= shift.From && p <= shift.To {
				out[i] = p + shift.Delta
			}
		}
	}
	out[moved] = pos
	return out
}

func TestPlanReorder_KeepsPositionsDense(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for moved := 0; moved < n; moved++ {
			for target := -1; target <= n; target++ {
				positions := make([]int, n)
				for i := range positions {
					positions[i] = i
				}
				got := applyReorder(positions, moved, target)
				seen := map[int]bool{}
				for _, p := range got {
					assert.True(t, p >= 0 && p < n, "position %d out of range", p)
					assert.False(t, seen[p], "duplicate position %d", p)
					seen[p] = true
				}
			}
		}
	}
}

func TestNestReplies(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	top := []models.Comment{{ID: p1}, {ID: p2}}
	replies := []models.Comment{
		{ID: uuid.New(), ParentID: &p2, Content: "a"},
		{ID: uuid.New(), ParentID: &p1, Content: "b"},
		{ID: uuid.New(), ParentID: &p2, Content: "c"},
	}

	got := nestReplies(top, replies)
	assert.Len(t, got[0].Replies, 1)
	assert.Equal(t, "b", got[0].Replies[0].Content)
	assert.Len(t, got[1].Replies, 2)
	assert.Equal(t, "a", got[1].Replies[0].Content)
	assert.Equal(t, "c", got[1].Replies[1].Content)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% \_done\\`, escapeLike(`100% _done\`))
}
