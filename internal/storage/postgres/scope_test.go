package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hongminglow/eros-desk/internal/models"
)

func TestScopeConditions(t *testing.T) {
	tests := []struct {
		name      string
		scope     models.DataScope
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "unrestricted",
			scope:     models.UnrestrictedScope(),
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "owner",
			scope:     models.OwnedBy("c1"),
			wantWhere: " WHERE creator_id = $1",
			wantArgs:  []any{"c1"},
		},
		{
			name:      "created by",
			scope:     models.CreatedBy("u1"),
			wantWhere: " WHERE created_by_id = $1",
			wantArgs:  []any{"u1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conds, args := scopeConditions(tt.scope, "creator_id", "created_by_id", nil)
			assert.Equal(t, tt.wantWhere, where(conds))
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestScopeConditionsCombined(t *testing.T) {
	owner, creator := "c1", "u1"
	conds, args := scopeConditions(models.DataScope{OwnerID: &owner, CreatedByID: &creator}, "id", "created_by_id", nil)
	assert.Equal(t, " WHERE id = $1 AND created_by_id = $2", where(conds))
	assert.Equal(t, []any{"c1", "u1"}, args)
}

func TestScopeConditionsAfterBoundArgs(t *testing.T) {
	conds, args := scopeConditions(models.CreatedBy("u1"), "creator_id", "created_by_id", []any{"DONE", "t1"})
	conds = append([]string{"id = $2"}, conds...)
	assert.Equal(t, " WHERE id = $2 AND created_by_id = $3", where(conds))
	assert.Equal(t, []any{"DONE", "t1", "u1"}, args)
}
