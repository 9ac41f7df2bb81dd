package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSetClauseStableOrder(t *testing.T) {
	set, args := buildSetClause(map[string]any{
		"logo_url": "http://x/y.png",
		"api_id":   int64(39),
	}, 2)

	assert.Equal(t, "api_id = $2, logo_url = $3", set)
	assert.Equal(t, []any{int64(39), "http://x/y.png"}, args)
}

func TestBuildSetClauseEmpty(t *testing.T) {
	set, args := buildSetClause(nil, 2)
	assert.Empty(t, set)
	assert.Nil(t, args)
}
