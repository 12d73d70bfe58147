package events

import (
	"sync"
	"time"

	"jobscout-engine/internal/domain"
)

type RunStarted struct {
	ListingURL string `json:"listing_url"`
	Candidates int    `json:"candidates"`
}

// RecordSettled carries the record exactly as the run will return it, so a
// client can fill its table by index before the run finishes.
type RecordSettled struct {
	Index  int                 `json:"index"`
	Status domain.Status       `json:"status"`
	Record domain.DetailRecord `json:"record"`
}

type RunFinished struct {
	ListingURL string `json:"listing_url"`
	Records    int    `json:"records"`
	Failed     int    `json:"failed"`
	TookMillis int64  `json:"took_ms"`
}

type RunFailed struct {
	ListingURL string `json:"listing_url"`
	Error      string `json:"error"`
}

// RunPublisher turns one pipeline run's progress into hub events. It
// satisfies the pipeline's observer interface.
type RunPublisher struct {
	hub   *Hub
	reqID string

	mu    sync.Mutex
	runID string
}

func NewRunPublisher(hub *Hub, reqID string) *RunPublisher {
	return &RunPublisher{hub: hub, reqID: reqID}
}

func (p *RunPublisher) RunID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runID
}

func (p *RunPublisher) RunStarted(runID, listingURL string, candidates int) {
	p.mu.Lock()
	p.runID = runID
	p.mu.Unlock()
	p.hub.Publish(New(p.reqID, runID, TypeRunStarted, RunStarted{
		ListingURL: listingURL,
		Candidates: candidates,
	}))
}

func (p *RunPublisher) RecordSettled(runID string, index int, rec domain.DetailRecord) {
	p.hub.Publish(New(p.reqID, runID, TypeRecordSettled, RecordSettled{
		Index:  index,
		Status: rec.Status,
		Record: rec,
	}))
}

func (p *RunPublisher) Finished(listingURL string, recs []domain.DetailRecord, took time.Duration) {
	failed := 0
	for _, r := range recs {
		if r.Status == domain.StatusFailed {
			failed++
		}
	}
	p.hub.Publish(New(p.reqID, p.RunID(), TypeRunFinished, RunFinished{
		ListingURL: listingURL,
		Records:    len(recs),
		Failed:     failed,
		TookMillis: took.Milliseconds(),
	}))
}

func (p *RunPublisher) Failed(listingURL string, err error) {
	p.hub.Publish(New(p.reqID, p.RunID(), TypeRunFailed, RunFailed{
		ListingURL: listingURL,
		Error:      err.Error(),
	}))
}
