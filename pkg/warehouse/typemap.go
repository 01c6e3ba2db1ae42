package warehouse

// Native-type translation tables, keyed by lowercased type names as the
// backend catalogs report them (information_schema for Postgres and
// Snowflake, table metadata for BigQuery).

var postgresTypes = map[string]SemanticType{
	"smallint":         SemanticNumeric,
	"integer":          SemanticNumeric,
	"bigint":           SemanticNumeric,
	"numeric":          SemanticNumeric,
	"decimal":          SemanticNumeric,
	"real":             SemanticNumeric,
	"double precision": SemanticNumeric,
	"money":            SemanticNumeric,

	"character varying": SemanticString,
	"varchar":           SemanticString,
	"character":         SemanticString,
	"char":              SemanticString,
	"text":              SemanticString,
	"uuid":              SemanticString,

	"date":                        SemanticDatetime,
	"timestamp without time zone": SemanticDatetime,
	"timestamp with time zone":    SemanticDatetime,
	"timestamp":                   SemanticDatetime,
	"time without time zone":      SemanticDatetime,
	"time with time zone":         SemanticDatetime,

	"boolean": SemanticBoolean,
}

var bigqueryTypes = map[string]SemanticType{
	"int64":      SemanticNumeric,
	"integer":    SemanticNumeric,
	"numeric":    SemanticNumeric,
	"bignumeric": SemanticNumeric,
	"float64":    SemanticNumeric,
	"float":      SemanticNumeric,

	"string": SemanticString,

	"date":      SemanticDatetime,
	"datetime":  SemanticDatetime,
	"timestamp": SemanticDatetime,
	"time":      SemanticDatetime,

	"bool":    SemanticBoolean,
	"boolean": SemanticBoolean,
}

var snowflakeTypes = map[string]SemanticType{
	"number":           SemanticNumeric,
	"decimal":          SemanticNumeric,
	"numeric":          SemanticNumeric,
	"int":              SemanticNumeric,
	"integer":          SemanticNumeric,
	"bigint":           SemanticNumeric,
	"smallint":         SemanticNumeric,
	"float":            SemanticNumeric,
	"float4":           SemanticNumeric,
	"float8":           SemanticNumeric,
	"double":           SemanticNumeric,
	"double precision": SemanticNumeric,
	"real":             SemanticNumeric,

	"varchar":   SemanticString,
	"char":      SemanticString,
	"character": SemanticString,
	"string":    SemanticString,
	"text":      SemanticString,

	"date":          SemanticDatetime,
	"datetime":      SemanticDatetime,
	"time":          SemanticDatetime,
	"timestamp":     SemanticDatetime,
	"timestamp_ltz": SemanticDatetime,
	"timestamp_ntz": SemanticDatetime,
	"timestamp_tz":  SemanticDatetime,

	"boolean": SemanticBoolean,
}
