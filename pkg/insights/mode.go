package insights

import (
	"fmt"

	"github.com/dataprofhq/engine/pkg/apperrors"
	"github.com/dataprofhq/engine/pkg/sqlgen"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

const (
	aliasModeValue = "mode_value"
	aliasModeFreq  = "mode_freq"
)

var modeSupport = allWarehouses

// ModeValue finds the most frequent value in a column by grouping on the
// column and keeping the highest count. Zero rows (empty input) parse to
// a null insight.
type ModeValue struct {
	query *sqlgen.CompiledQuery
}

// NewModeValue builds a ModeValue insight for one column.
func NewModeValue(ref warehouse.ColumnRef, wtype warehouse.Type, filter *warehouse.Filter) (*ModeValue, error) {
	if err := requireSupport(MetricMode, modeSupport, wtype); err != nil {
		return nil, err
	}
	d, err := warehouse.DialectFor(wtype)
	if err != nil {
		return nil, err
	}
	q, err := sqlgen.Build(sqlgen.Spec{
		Column:    ref,
		Warehouse: wtype,
		Filter:    filter,
		Dimension: &sqlgen.Dimension{Expr: d.QuoteIdent(ref.Column), Alias: aliasModeValue},
		Aggregates: []sqlgen.Aggregate{
			{Func: warehouse.AggCount, Alias: aliasModeFreq, Star: true},
		},
		OrderBy:    aliasModeFreq,
		Descending: true,
		Limit:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", MetricMode, err)
	}
	return &ModeValue{query: q}, nil
}

func (i *ModeValue) Key() MetricKey                     { return MetricMode }
func (i *ModeValue) GenerateSQL() *sqlgen.CompiledQuery { return i.query }
func (i *ModeValue) ChartType() ChartType               { return ChartNone }

func (i *ModeValue) ParseResults(rows []map[string]any) (InsightValue, error) {
	if len(rows) == 0 {
		return InsightValue{Key: MetricMode, Kind: KindNull, Value: nil}, nil
	}
	if len(rows) > 1 {
		return InsightValue{}, fmt.Errorf("%w: %s expected at most 1 row, got %d", apperrors.ErrResultShape, MetricMode, len(rows))
	}
	raw, err := rowValue(MetricMode, rows[0], aliasModeValue)
	if err != nil {
		return InsightValue{}, err
	}
	if raw == nil {
		return InsightValue{Key: MetricMode, Kind: KindNull, Value: nil}, nil
	}
	if f, err := coerceFloat64(raw); err == nil {
		return InsightValue{Key: MetricMode, Kind: KindNumber, Value: f}, nil
	}
	return InsightValue{Key: MetricMode, Kind: KindText, Value: coerceString(raw)}, nil
}

var _ ColumnInsight = (*ModeValue)(nil)
