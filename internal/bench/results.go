package bench

// IndexState records whether the secondary index set existed in the store
// when a measurement was taken.
type IndexState string

const (
	// IndexStateWithout is the baseline pass, before any index exists
	IndexStateWithout IndexState = "without"
	// IndexStateWith is the pass after the index set was created
	IndexStateWith IndexState = "with"
)

// Measurement is one (scale, query, index-state) cell: a single recorded
// timing. This sequence is the sole handoff contract to the reporter.
type Measurement struct {
	Scale      int        `json:"scale"`
	QueryID    int        `json:"query_id"`
	IndexState IndexState `json:"index_state"`
	ElapsedMS  float64    `json:"elapsed_ms"`
	Rows       int        `json:"rows"`
	TimedOut   bool       `json:"timed_out"`
	Err        string     `json:"error,omitempty"`
}

// Completed reports whether the cell holds a usable timing
func (m Measurement) Completed() bool {
	return !m.TimedOut && m.Err == ""
}

// Find returns the measurement for a cell, if present
func Find(ms []Measurement, scale, queryID int, state IndexState) (Measurement, bool) {
	for _, m := range ms {
		if m.Scale == scale && m.QueryID == queryID && m.IndexState == state {
			return m, true
		}
	}
	return Measurement{}, false
}

// RecurrentFailures returns the query IDs whose execution errored (not
// timed out) at every one of the given scales. A query failing everywhere
// signals a suite-definition bug rather than a store condition.
func RecurrentFailures(ms []Measurement, scales []int) []int {
	var recurrent []int
	for _, q := range suite {
		failedEverywhere := len(scales) > 0
		for _, scale := range scales {
			m, ok := Find(ms, scale, q.ID, IndexStateWithout)
			if !ok || m.TimedOut || m.Err == "" {
				failedEverywhere = false
				break
			}
		}
		if failedEverywhere {
			recurrent = append(recurrent, q.ID)
		}
	}
	return recurrent
}
