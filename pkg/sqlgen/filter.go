package sqlgen

import (
	"fmt"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/dataprofhq/engine/pkg/apperrors"
	"github.com/dataprofhq/engine/pkg/warehouse"
)

// RenderFilter translates a structured filter into a dialect-correct
// predicate fragment (without the WHERE keyword). A nil filter renders to
// the empty string. Operators outside the dialect's supported set are an
// error, never a silent drop, and string operands are screened for SQL
// injection patterns before being rendered as literals.
func RenderFilter(d *warehouse.Dialect, f *warehouse.Filter) (string, error) {
	if f == nil {
		return "", nil
	}
	if f.Field == "" {
		return "", fmt.Errorf("%w: empty field", apperrors.ErrMalformedFilter)
	}
	if !d.SupportsOperator(f.Operator) {
		return "", fmt.Errorf("%w: %q on %s", apperrors.ErrUnsupportedOperator, f.Operator, d.Type())
	}

	field := d.QuoteIdent(f.Field)

	if f.Operator == warehouse.OpIn {
		if len(f.Values) == 0 {
			return "", fmt.Errorf("%w: IN requires at least one value", apperrors.ErrMalformedFilter)
		}
		literals := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			lit, err := renderOperand(d, f.Field, v)
			if err != nil {
				return "", err
			}
			literals = append(literals, lit)
		}
		return fmt.Sprintf("%s IN (%s)", field, strings.Join(literals, ", ")), nil
	}

	lit, err := renderOperand(d, f.Field, f.Value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", field, f.Operator, lit), nil
}

func renderOperand(d *warehouse.Dialect, field string, v any) (string, error) {
	if s, ok := v.(string); ok {
		if isSQLi, _ := libinjection.IsSQLi(s); isSQLi {
			return "", fmt.Errorf("%w: field %q", apperrors.ErrUnsafeFilterValue, field)
		}
	}
	lit, err := d.QuoteLiteral(v)
	if err != nil {
		return "", err
	}
	return lit, nil
}
