package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetBuilder(t *testing.T) {
	var b setBuilder
	assert.True(t, b.empty())

	b.add("name", "Roadmap")
	b.addExpr("position", "(SELECT %s + 1)", 4)
	b.addRaw("updated_at = NOW()")

	query, args := b.build("sections", "id", "abc", "id, name")
	assert.Equal(t, "UPDATE sections SET name = $1, position = (SELECT $2 + 1), updated_at = NOW() WHERE id = $3 RETURNING id, name", query)
	assert.Equal(t, []any{"Roadmap", 4, "abc"}, args)
}
