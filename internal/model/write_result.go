package model

// WriteResult describes the outcome of a single-row scoped write.
type WriteResult int

const (
	// WriteNoMatchingRow means the filter matched nothing: the row is missing
	// or belongs to another user.
	WriteNoMatchingRow WriteResult = iota
	// WriteUpdated means exactly one row was inserted, updated or deleted.
	WriteUpdated
)

// String implements fmt.Stringer.
func (r WriteResult) String() string {
	if r == WriteUpdated {
		return "updated"
	}
	return "no_matching_row"
}

// WriteResultFromRows maps an affected row count to a WriteResult.
func WriteResultFromRows(rows int64) WriteResult {
	if rows > 0 {
		return WriteUpdated
	}
	return WriteNoMatchingRow
}
