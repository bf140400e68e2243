package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		build func() QueryBuilder
		query string
		args  []interface{}
	}{
		{
			name: "select with filters",
			build: func() QueryBuilder {
				return NewQueryBuilder("public").
					Select("id", "status").
					From("runs").
					Where("contract = ?", "zero").
					And("status = ?", "PENDING").
					OrderBy("created_at", false).
					Limit(10)
			},
			query: "SELECT id, status FROM public.runs WHERE contract = ? AND status = ? ORDER BY created_at DESC LIMIT ?",
			args:  []interface{}{"zero", "PENDING", 10},
		},
		{
			name: "groups keep argument order",
			build: func() QueryBuilder {
				return NewQueryBuilder("").
					Select("id").
					From("runs").
					Where("contract = ?", "zero").
					AndGroup(func(qb QueryBuilder) {
						qb.Where("status = ?", "FAILED").Or("status = ?", "ERRORED")
					}).
					And("candidate = ?", "correct")
			},
			query: "SELECT id FROM runs WHERE contract = ? AND (status = ? OR status = ?) AND candidate = ?",
			args:  []interface{}{"zero", "FAILED", "ERRORED", "correct"},
		},
		{
			name: "empty group dropped",
			build: func() QueryBuilder {
				return NewQueryBuilder("").
					Select("id").
					From("runs").
					AndGroup(func(QueryBuilder) {}).
					Where("status = ?", "PENDING")
			},
			query: "SELECT id FROM runs WHERE status = ?",
			args:  []interface{}{"PENDING"},
		},
		{
			name: "upsert",
			build: func() QueryBuilder {
				return NewQueryBuilder("public").
					Insert("contract", "active").
					Into("contract_overrides").
					Values("zero", true).
					OnConflict("contract").
					SetExclude("active")
			},
			query: "INSERT INTO public.contract_overrides (contract, active) VALUES (?, ?) ON CONFLICT (contract) DO UPDATE SET active = EXCLUDED.active",
			args:  []interface{}{"zero", true},
		},
		{
			name: "multi-row insert ignoring conflicts",
			build: func() QueryBuilder {
				return NewQueryBuilder("").
					Insert("a", "b").
					Into("t").
					Values(1, 2).
					Values(3, 4).
					OnConflict("a")
			},
			query: "INSERT INTO t (a, b) VALUES (?, ?), (?, ?) ON CONFLICT (a) DO NOTHING",
			args:  []interface{}{1, 2, 3, 4},
		},
		{
			name: "insert width mismatch",
			build: func() QueryBuilder {
				return NewQueryBuilder("").Insert("a", "b").Into("t").Values(1)
			},
		},
		{
			name: "update",
			build: func() QueryBuilder {
				return NewQueryBuilder("public").
					Update("runs", UpdateData{"status": "CANCELLED", "error": nil}).
					Where("id = ?", "abc")
			},
			query: "UPDATE public.runs SET error = ?, status = ? WHERE id = ?",
			args:  []interface{}{nil, "CANCELLED", "abc"},
		},
		{
			name: "delete",
			build: func() QueryBuilder {
				return NewQueryBuilder("").Delete("contract_overrides").Where("contract = ?", "zero")
			},
			query: "DELETE FROM contract_overrides WHERE contract = ?",
			args:  []interface{}{"zero"},
		},
		{
			name: "delete without condition",
			build: func() QueryBuilder {
				return NewQueryBuilder("").Delete("contract_overrides")
			},
		},
		{
			name: "select without table",
			build: func() QueryBuilder {
				return NewQueryBuilder("").Select("id")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := tt.build().Build()
			assert.Equal(t, tt.query, query)
			if tt.query == "" {
				assert.Empty(t, args)
				return
			}
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestInsertRowsWidth(t *testing.T) {
	assert.Equal(t, 0, InsertRows{}.Width())
	assert.Equal(t, 2, InsertRows{{1, 2}, {3, 4}}.Width())
	assert.Equal(t, -1, InsertRows{{1, 2}, {3}}.Width())
}
