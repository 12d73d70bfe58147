package httpapi

import (
	"sync"
	"time"

	"jobscout-engine/internal/domain"
)

type ScrapeStatus struct {
	LastRunAt   string `json:"last_run_at"`
	LastOkAt    string `json:"last_ok_at"`
	LastError   string `json:"last_error"`
	LastRunID   string `json:"last_run_id"`
	LastRecords int    `json:"last_records"`
	LastFailed  int    `json:"last_failed"`
	Running     int    `json:"running"`
}

// StatusTracker records the outcome of /scrape runs. Runs may overlap.
type StatusTracker struct {
	mu sync.Mutex
	st ScrapeStatus
}

func (t *StatusTracker) Snapshot() ScrapeStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st
}

func (t *StatusTracker) begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.Running++
	t.st.LastRunAt = time.Now().UTC().Format(time.RFC3339)
}

func (t *StatusTracker) end(runID string, recs []domain.DetailRecord, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st.Running--
	t.st.LastRunID = runID
	if err != nil {
		t.st.LastError = err.Error()
		t.st.LastRecords = 0
		t.st.LastFailed = 0
		return
	}
	failed := 0
	for _, r := range recs {
		if r.Status == domain.StatusFailed {
			failed++
		}
	}
	t.st.LastError = ""
	t.st.LastOkAt = time.Now().UTC().Format(time.RFC3339)
	t.st.LastRecords = len(recs)
	t.st.LastFailed = failed
}
