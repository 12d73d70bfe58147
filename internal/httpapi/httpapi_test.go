package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/events"
	"jobscout-engine/internal/scrape"
)

type fakeRunner struct {
	mu    sync.Mutex
	urls  []string
	recs  []domain.DetailRecord
	err   error
	panic bool
}

func (f *fakeRunner) Backend() string { return "fake" }

func (f *fakeRunner) RunObserved(_ context.Context, listingURL string, obs scrape.Observer) ([]domain.DetailRecord, error) {
	if f.panic {
		panic("boom")
	}
	f.mu.Lock()
	f.urls = append(f.urls, listingURL)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	obs.RunStarted("run-1", listingURL, len(f.recs))
	for i, r := range f.recs {
		obs.RecordSettled("run-1", i, r)
	}
	return f.recs, nil
}

func newTestServer(t *testing.T, fr *fakeRunner) (*httptest.Server, *events.Hub, *StatusTracker) {
	t.Helper()
	var cfgVal atomic.Value
	cfgVal.Store(config.Default())

	hub := events.NewHub()
	status := &StatusTracker{}
	srv := httptest.NewServer(NewHandler(Deps{
		Logger: zaptest.NewLogger(t),
		Hub:    hub,
		Runner: fr,
		CfgVal: &cfgVal,
		Status: status,
	}))
	t.Cleanup(srv.Close)
	return srv, hub, status
}

var sampleRecords = []domain.DetailRecord{
	{Title: "A", Company: "Acme", Link: "https://himalayas.app/jobs/a", Description: "d", EmploymentType: domain.FullTime, Location: "Remote", PostedDate: "2024-05-01", Status: domain.StatusOK},
	domain.FailedRecord(domain.ListingCandidate{Title: "B", Company: "Beta", Link: "https://himalayas.app/jobs/b"}),
}

func TestScrape_OK(t *testing.T) {
	fr := &fakeRunner{recs: sampleRecords}
	srv, _, status := newTestServer(t, fr)

	res, err := http.Get(srv.URL + "/scrape")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", res.Header.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET, POST, OPTIONS", res.Header.Get("Access-Control-Allow-Methods"))
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))

	var body []map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Equal(t, map[string]string{
		"jobTitle":       "A",
		"jobCompany":     "Acme",
		"jobLink":        "https://himalayas.app/jobs/a",
		"jobDescription": "d",
		"jobType":        "Full-time",
		"jobLocation":    "Remote",
		"jobDate":        "2024-05-01",
	}, body[0])
	assert.Equal(t, "Failed to load", body[1]["jobDescription"])

	assert.Equal(t, []string{"https://himalayas.app/jobs"}, fr.urls)

	st := status.Snapshot()
	assert.Equal(t, "run-1", st.LastRunID)
	assert.Equal(t, 2, st.LastRecords)
	assert.Equal(t, 1, st.LastFailed)
	assert.Equal(t, 0, st.Running)
	assert.Empty(t, st.LastError)
}

func TestScrape_PathParameter(t *testing.T) {
	fr := &fakeRunner{}
	srv, _, _ := newTestServer(t, fr)

	res, err := http.Post(srv.URL+"/scrape?path=/jobs/remote", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(srv.URL + "/scrape?path=" + "https://evil.test/jobs")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	assert.Equal(t, []string{"https://himalayas.app/jobs/remote"}, fr.urls)
}

func TestScrape_EmptyResultIsArray(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeRunner{recs: []domain.DetailRecord{}})

	res, err := http.Get(srv.URL + "/scrape")
	require.NoError(t, err)
	defer res.Body.Close()

	var sb strings.Builder
	_, _ = bufio.NewReader(res.Body).WriteTo(&sb)
	assert.Equal(t, "[]", strings.TrimSpace(sb.String()))
}

func TestScrape_Failure(t *testing.T) {
	fr := &fakeRunner{err: errors.New("discover https://himalayas.app/jobs: unreachable")}
	srv, _, status := newTestServer(t, fr)

	res, err := http.Get(srv.URL + "/scrape")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))

	var body APIError
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "discover https://himalayas.app/jobs: unreachable", body.Error)

	assert.Contains(t, status.Snapshot().LastError, "unreachable")
}

func TestScrape_Preflight(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeRunner{})

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/scrape", nil)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "GET, POST, OPTIONS", res.Header.Get("Access-Control-Allow-Methods"))
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeRunner{})

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/scrape", nil)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestRecover(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeRunner{panic: true})

	res, err := http.Get(srv.URL + "/scrape")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	var body APIError
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "internal_error", body.Code)
	assert.NotEmpty(t, body.RequestID)
}

func TestHealthAndStatus(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeRunner{})

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	var health map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&health))
	res.Body.Close()
	assert.Equal(t, true, health["ok"])
	assert.Equal(t, "fake", health["backend"])

	res, err = http.Get(srv.URL + "/scrape/status")
	require.NoError(t, err)
	var st ScrapeStatus
	require.NoError(t, json.NewDecoder(res.Body).Decode(&st))
	res.Body.Close()
	assert.Equal(t, 0, st.Running)
}

func TestConfigEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeRunner{})

	res, err := http.Get(srv.URL + "/config")
	require.NoError(t, err)
	var sb strings.Builder
	_, _ = bufio.NewReader(res.Body).WriteTo(&sb)
	res.Body.Close()
	assert.Equal(t, "application/yaml", res.Header.Get("Content-Type"))
	assert.Contains(t, sb.String(), "base_url: https://himalayas.app")

	res, err = http.Get(srv.URL + "/config/validate")
	require.NoError(t, err)
	var vr config.Validation
	require.NoError(t, json.NewDecoder(res.Body).Decode(&vr))
	res.Body.Close()
	assert.Empty(t, vr.Errors)
}

type sseFrame struct {
	id    string
	event string
	data  events.Event
}

// readFrames returns a function yielding the next data frame on the stream,
// skipping comment lines.
func readFrames(t *testing.T, body io.Reader) func() sseFrame {
	sc := bufio.NewScanner(body)
	return func() sseFrame {
		t.Helper()
		var f sseFrame
		for sc.Scan() {
			line := sc.Text()
			switch {
			case line == "":
				if f.event != "" {
					return f
				}
			case strings.HasPrefix(line, "id: "):
				f.id = strings.TrimPrefix(line, "id: ")
			case strings.HasPrefix(line, "event: "):
				f.event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &f.data))
			}
		}
		t.Fatalf("stream ended: %v", sc.Err())
		return f
	}
}

func openStream(t *testing.T, url string) *http.Response {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))
	return res
}

func TestEvents_StreamsRunProgress(t *testing.T) {
	fr := &fakeRunner{recs: sampleRecords}
	srv, hub, _ := newTestServer(t, fr)

	next := readFrames(t, openStream(t, srv.URL+"/events").Body)

	ping := next()
	assert.Equal(t, events.TypePing, ping.event)
	assert.Empty(t, ping.id)
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	sres, err := http.Get(srv.URL + "/scrape")
	require.NoError(t, err)
	sres.Body.Close()

	var types, ids []string
	for i := 0; i < 4; i++ {
		f := next()
		assert.Equal(t, f.event, f.data.Type)
		assert.Equal(t, "run-1", f.data.RunID)
		types = append(types, f.event)
		ids = append(ids, f.id)
	}
	assert.Equal(t, []string{
		events.TypeRunStarted,
		events.TypeRecordSettled,
		events.TypeRecordSettled,
		events.TypeRunFinished,
	}, types)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
}

func TestEvents_FilterByType(t *testing.T) {
	fr := &fakeRunner{recs: sampleRecords}
	srv, hub, _ := newTestServer(t, fr)

	next := readFrames(t, openStream(t, srv.URL+"/events?types=record_settled,run_failed").Body)
	assert.Equal(t, events.TypePing, next().event)
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	sres, err := http.Get(srv.URL + "/scrape")
	require.NoError(t, err)
	sres.Body.Close()

	for i := range sampleRecords {
		f := next()
		require.Equal(t, events.TypeRecordSettled, f.event)
		var settled events.RecordSettled
		require.NoError(t, json.Unmarshal(f.data.Data, &settled))
		assert.Equal(t, i, settled.Index)
		assert.Equal(t, sampleRecords[i].Status, settled.Status)
		want := sampleRecords[i]
		want.Status = "" // not serialized on the record itself
		assert.Equal(t, want, settled.Record)
	}
}

func TestEvents_KeepAlive(t *testing.T) {
	eh := EventsHandler{Hub: events.NewHub(), KeepAlive: 10 * time.Millisecond}
	srv := httptest.NewServer(http.HandlerFunc(eh.ServeSSE))
	t.Cleanup(srv.Close)

	sc := bufio.NewScanner(openStream(t, srv.URL).Body)
	seen := false
	for !seen && sc.Scan() {
		seen = sc.Text() == ": keepalive"
	}
	assert.True(t, seen, "no keepalive comment before stream ended: %v", sc.Err())
}
