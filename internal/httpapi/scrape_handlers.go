package httpapi

import (
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/events"
)

type ScrapeHandler struct {
	CfgVal *atomic.Value // config.Config
	Runner Runner
	Status *StatusTracker
	Hub    *events.Hub
	Logger *zap.Logger
}

// Scrape runs the pipeline for the listing named by the optional "path"
// parameter and answers with the records, or a 500 when discovery fails.
func (h ScrapeHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	listingURL, err := cfg.ListingURL(r.FormValue("path"))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_path", err.Error())
		return
	}

	reqID := RequestIDFrom(r.Context())
	pub := events.NewRunPublisher(h.Hub, reqID)

	h.Status.begin()
	start := time.Now()
	recs, err := h.Runner.RunObserved(r.Context(), listingURL, pub)
	h.Status.end(pub.RunID(), recs, err)

	if err != nil {
		pub.Failed(listingURL, err)
		h.Logger.Error("scrape failed",
			zap.String("request_id", reqID),
			zap.String("url", listingURL),
			zap.Error(err),
		)
		WriteError(w, r, http.StatusInternalServerError, "scrape_failed", err.Error())
		return
	}

	pub.Finished(listingURL, recs, time.Since(start))
	WriteJSON(w, http.StatusOK, recs)
}

func (h ScrapeHandler) StatusGet(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Status.Snapshot())
}
