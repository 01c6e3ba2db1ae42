package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataprofhq/engine/pkg/apperrors"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

func mustDialect(t *testing.T, wtype warehouse.Type) *warehouse.Dialect {
	t.Helper()
	d, err := warehouse.DialectFor(wtype)
	require.NoError(t, err)
	return d
}

func TestRenderFilter(t *testing.T) {
	tests := []struct {
		name   string
		wtype  warehouse.Type
		filter *warehouse.Filter
		want   string
	}{
		{
			name:   "nil filter renders empty",
			wtype:  warehouse.Postgres,
			filter: nil,
			want:   "",
		},
		{
			name:   "integer equality",
			wtype:  warehouse.Postgres,
			filter: &warehouse.Filter{Field: "age", Operator: warehouse.OpEq, Value: 18},
			want:   `"age" = 18`,
		},
		{
			name:   "string comparison",
			wtype:  warehouse.Postgres,
			filter: &warehouse.Filter{Field: "status", Operator: warehouse.OpNeq, Value: "archived"},
			want:   `"status" != 'archived'`,
		},
		{
			name:   "like pattern",
			wtype:  warehouse.Postgres,
			filter: &warehouse.Filter{Field: "email", Operator: warehouse.OpLike, Value: "%@example.com"},
			want:   `"email" LIKE '%@example.com'`,
		},
		{
			name:   "ilike on postgres",
			wtype:  warehouse.Postgres,
			filter: &warehouse.Filter{Field: "name", Operator: warehouse.OpILike, Value: "ann%"},
			want:   `"name" ILIKE 'ann%'`,
		},
		{
			name:  "in list",
			wtype: warehouse.Postgres,
			filter: &warehouse.Filter{
				Field:    "region",
				Operator: warehouse.OpIn,
				Values:   []any{"us", "eu", 3},
			},
			want: `"region" IN ('us', 'eu', 3)`,
		},
		{
			name:   "bigquery backtick field and backslash escape",
			wtype:  warehouse.BigQuery,
			filter: &warehouse.Filter{Field: "name", Operator: warehouse.OpEq, Value: "O'Brien"},
			want:   "`name` = 'O\\'Brien'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderFilter(mustDialect(t, tt.wtype), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderFilter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		wtype   warehouse.Type
		filter  *warehouse.Filter
		wantErr error
	}{
		{
			name:    "empty field",
			wtype:   warehouse.Postgres,
			filter:  &warehouse.Filter{Field: "", Operator: warehouse.OpEq, Value: 1},
			wantErr: apperrors.ErrMalformedFilter,
		},
		{
			name:    "ilike unsupported on bigquery",
			wtype:   warehouse.BigQuery,
			filter:  &warehouse.Filter{Field: "name", Operator: warehouse.OpILike, Value: "a%"},
			wantErr: apperrors.ErrUnsupportedOperator,
		},
		{
			name:    "unknown operator",
			wtype:   warehouse.Postgres,
			filter:  &warehouse.Filter{Field: "age", Operator: warehouse.Operator("BETWEEN"), Value: 1},
			wantErr: apperrors.ErrUnsupportedOperator,
		},
		{
			name:    "in with no values",
			wtype:   warehouse.Postgres,
			filter:  &warehouse.Filter{Field: "region", Operator: warehouse.OpIn},
			wantErr: apperrors.ErrMalformedFilter,
		},
		{
			name:    "injection attempt rejected",
			wtype:   warehouse.Postgres,
			filter:  &warehouse.Filter{Field: "status", Operator: warehouse.OpEq, Value: "x' OR '1'='1"},
			wantErr: apperrors.ErrUnsafeFilterValue,
		},
		{
			name:    "injection in list value rejected",
			wtype:   warehouse.Postgres,
			filter:  &warehouse.Filter{Field: "status", Operator: warehouse.OpIn, Values: []any{"ok", "1; DROP TABLE users--"}},
			wantErr: apperrors.ErrUnsafeFilterValue,
		},
		{
			name:    "unsupported literal type",
			wtype:   warehouse.Postgres,
			filter:  &warehouse.Filter{Field: "meta", Operator: warehouse.OpEq, Value: map[string]int{"a": 1}},
			wantErr: apperrors.ErrMalformedFilter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderFilter(mustDialect(t, tt.wtype), tt.filter)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
