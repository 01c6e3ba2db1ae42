// Package sqlgen builds dialect-specific aggregate SELECT statements.
//
// Build is a pure function: there is no builder object and no state
// retained between calls, so two calls with identical inputs produce
// byte-identical SQL and concurrent callers never interfere.
package sqlgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dataprofhq/engine/pkg/apperrors"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

// Aggregate is one named aggregate expression in a query. The alias must
// be unique within the query; COUNT(*) is requested with Star (counts all
// rows, NULLs included) as opposed to COUNT(column) which skips NULLs.
// Expr, when set, replaces the column as the function argument and must
// already be rendered for the target dialect.
type Aggregate struct {
	Func  warehouse.AggFunc
	Alias string
	Star  bool
	Expr  string
}

// Dimension adds a leading grouped select expression (bucket number,
// grouped value, extracted year). The query gains a GROUP BY over it.
type Dimension struct {
	Expr  string
	Alias string
}

// Spec is the full input to Build. All fields are read-only inputs; Build
// never mutates them.
type Spec struct {
	Column     warehouse.ColumnRef
	Warehouse  warehouse.Type
	Filter     *warehouse.Filter
	Aggregates []Aggregate
	Dimension  *Dimension
	OrderBy    string // alias to order by; empty for no ORDER BY
	Descending bool
	Limit      int // 0 for no LIMIT
}

// CompiledQuery is an immutable dialect-specific SELECT. It carries no
// connection or session state; executing it is the adapter's business.
type CompiledQuery struct {
	sql     string
	aliases []string
	wtype   warehouse.Type
}

// SQL returns the statement text.
func (q *CompiledQuery) SQL() string { return q.sql }

// Aliases returns the result aliases in select order. The slice is a copy;
// callers cannot alter the query through it.
func (q *CompiledQuery) Aliases() []string {
	out := make([]string, len(q.aliases))
	copy(out, q.aliases)
	return out
}

// Warehouse returns the dialect this query was compiled for.
func (q *CompiledQuery) Warehouse() warehouse.Type { return q.wtype }

var aliasPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Build compiles a Spec into a CompiledQuery. Errors: unknown warehouse,
// empty aggregate list, invalid or colliding aliases, unsupported
// aggregate function or filter operator, malformed filter.
func Build(spec Spec) (*CompiledQuery, error) {
	d, err := warehouse.DialectFor(spec.Warehouse)
	if err != nil {
		return nil, err
	}
	if len(spec.Aggregates) == 0 {
		return nil, apperrors.ErrNoAggregates
	}

	var (
		selects []string
		aliases []string
		seen    = make(map[string]struct{})
	)

	addAlias := func(alias string) error {
		if !aliasPattern.MatchString(alias) {
			return fmt.Errorf("%w: %q", apperrors.ErrInvalidAlias, alias)
		}
		if _, dup := seen[alias]; dup {
			return fmt.Errorf("%w: %q", apperrors.ErrDuplicateAlias, alias)
		}
		seen[alias] = struct{}{}
		aliases = append(aliases, alias)
		return nil
	}

	if spec.Dimension != nil {
		if err := addAlias(spec.Dimension.Alias); err != nil {
			return nil, err
		}
		selects = append(selects, fmt.Sprintf("%s AS %s", spec.Dimension.Expr, spec.Dimension.Alias))
	}

	quotedCol := d.QuoteIdent(spec.Column.Column)
	for _, agg := range spec.Aggregates {
		if !d.SupportsAggregate(agg.Func) {
			return nil, fmt.Errorf("%w: aggregate %s on %s", apperrors.ErrUnsupportedOperator, agg.Func, spec.Warehouse)
		}
		if err := addAlias(agg.Alias); err != nil {
			return nil, err
		}
		selects = append(selects, fmt.Sprintf("%s AS %s", renderAggregate(d, agg, quotedCol), agg.Alias))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selects, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(d.QualifiedTable(spec.Column.Schema, spec.Column.Table))

	where, err := RenderFilter(d, spec.Filter)
	if err != nil {
		return nil, err
	}
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if spec.Dimension != nil {
		sb.WriteString(" GROUP BY 1")
	}
	if spec.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(spec.OrderBy)
		if spec.Descending {
			sb.WriteString(" DESC")
		}
	}
	if spec.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", spec.Limit))
	}

	return &CompiledQuery{
		sql:     sb.String(),
		aliases: aliases,
		wtype:   spec.Warehouse,
	}, nil
}

func renderAggregate(d *warehouse.Dialect, agg Aggregate, quotedCol string) string {
	arg := quotedCol
	switch {
	case agg.Star:
		arg = "*"
	case agg.Expr != "":
		arg = agg.Expr
	}
	if agg.Func == warehouse.AggCountDistinct {
		return fmt.Sprintf("COUNT(DISTINCT %s)", arg)
	}
	return fmt.Sprintf("%s(%s)", agg.Func, arg)
}
