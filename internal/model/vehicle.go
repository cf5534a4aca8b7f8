// Package model holds the flat vehicle record type shared across the pipeline.
package model

// Well-known vehicle field keys. The record field set itself is whatever the
// CSV and the upstream source provide; only these keys carry pipeline meaning.
const (
	KeyRNR        = "rnr"         // mandatory first report column
	KeyKurzname   = "kurzname"    // reconciliation identifier, unique upstream
	KeyHU         = "hu"          // inspection date; required field and recency source
	KeyGruppe     = "gruppe"      // report grouping/sort field
	KeyLabelIDs   = "labelIds"    // comma-separated label identifiers
	KeyLabelColor = "_labelColor" // derived: resolved color of the first label
)

// Vehicle is a flat string-keyed record. The field set is not fixed; rows
// keep whatever columns the source supplied.
type Vehicle map[string]string

// Get returns the value for key, or "" when the key is absent.
func (v Vehicle) Get(key string) string {
	return v[key]
}

// Has reports whether the record carries a non-empty value for key.
func (v Vehicle) Has(key string) bool {
	return v[key] != ""
}

// Clone returns an independent copy of the record.
func (v Vehicle) Clone() Vehicle {
	out := make(Vehicle, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// MergePolicy selects how authoritative fields are applied during
// reconciliation.
type MergePolicy int

const (
	// FillMissing applies an authoritative value only when the user record's
	// field is absent or empty. User-supplied data always wins when present.
	FillMissing MergePolicy = iota
	// OverwriteAll applies every authoritative value, replacing user data.
	OverwriteAll
)

// String returns the policy name for logging.
func (p MergePolicy) String() string {
	switch p {
	case FillMissing:
		return "fill-missing"
	case OverwriteAll:
		return "overwrite-all"
	default:
		return "unknown"
	}
}
