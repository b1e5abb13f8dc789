package match

// Snapshot is a consistent read of one view.
type Snapshot struct {
	Records  []Record
	Present  bool
	HasError bool
}

// Repository holds the latest fetched records per view plus an error flag.
// Implementations return copies; callers never see shared slices.
type Repository interface {
	Get(view View) ([]Record, bool)
	Set(view View, records []Record)
	SetError(view View, hasError bool)
	HasError(view View) bool
	Snapshot(view View) Snapshot
}
