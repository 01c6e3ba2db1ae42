package apperrors

import "errors"

var (
	// Construction errors. These block query generation entirely.
	ErrUnknownWarehouse     = errors.New("unknown warehouse type")
	ErrUnsupportedWarehouse = errors.New("warehouse type not supported for this insight")
	ErrUnknownColumnType    = errors.New("column type has no semantic mapping")

	// Filter translation errors.
	ErrUnsupportedOperator = errors.New("filter operator not supported by dialect")
	ErrMalformedFilter     = errors.New("malformed filter")
	ErrUnsafeFilterValue   = errors.New("filter value failed injection screening")

	// Query builder errors.
	ErrNoAggregates   = errors.New("query requires at least one aggregate expression")
	ErrDuplicateAlias = errors.New("duplicate aggregate alias")
	ErrInvalidAlias   = errors.New("aggregate alias is not a valid identifier")

	// Parse and merge errors.
	ErrResultShape         = errors.New("result rows do not match expected shape")
	ErrMergeLengthMismatch = errors.New("result set count does not match query count")
	ErrDuplicateMetricKey  = errors.New("metric key already present in profile")
)
