package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	server "review_analyzer/internal/adapters/http_server"
	"review_analyzer/internal/adapters/observability"
	"review_analyzer/internal/app"
	"review_analyzer/internal/domain"
	"review_analyzer/internal/storage/memory"
)

// wordScorer: +0.4 per "great", -0.4 per "awful".
type wordScorer struct{}

func (wordScorer) Score(text string) domain.Sentiment {
	t := strings.ToLower(text)
	c := 0.4*float64(strings.Count(t, "great")) - 0.4*float64(strings.Count(t, "awful"))
	return domain.Sentiment{Neu: 1 - abs(c), Pos: max(c, 0), Neg: max(-c, 0), Compound: c}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

type env struct {
	h     http.Handler
	store *memory.Store
}

func newEnv(t *testing.T, opts server.Options) env {
	t.Helper()
	store := memory.New([]domain.Review{
		{ReviewId: "r1", ReviewBody: "great", Location: "Tucson, Arizona", Timestamp: "2021-01-01 10:00:00"},
		{ReviewId: "r2", ReviewBody: "awful", Location: "Tucson, Arizona", Timestamp: "2021-06-01 10:00:00"},
		{ReviewId: "r3", ReviewBody: "great great", Location: "Carlsbad, California", Timestamp: "2022-01-01 10:00:00"},
	})
	locs := domain.NewLocationSet([]string{"Tucson, Arizona", "Carlsbad, California"})
	clock := clockwork.NewFakeClockAt(time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC))

	srv := server.New(opts)
	srv.Mount("/metrics", observability.MetricsHandler(observability.InitRegistry()))
	srv.MountHandlers(&server.Handlers{
		Q:            app.NewQueryService(store, wordScorer{}, locs, 2),
		C:            app.NewCommandService(store, locs, clock),
		MaxBodyBytes: 256,
	})
	return env{h: srv.Mux(), store: store}
}

type scored struct {
	ReviewBody string `json:"ReviewBody"`
	Location   string `json:"Location"`
	Timestamp  string `json:"Timestamp"`
	ReviewId   string `json:"ReviewId"`
	Sentiment  *struct {
		Neg, Neu, Pos, Compound float64
	} `json:"sentiment"`
}

func (e env) get(t *testing.T, query string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	e.h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?"+query, nil))
	return rr
}

func (e env) post(t *testing.T, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return e.postRaw(t, form.Encode())
}

func (e env) postRaw(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	e.h.ServeHTTP(rr, req)
	return rr
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []scored {
	t.Helper()
	var out []scored
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func errMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	assert.Equal(t, "error", body["status"])
	return body["message"]
}

func TestGet_AllSortedWithHeaders(t *testing.T) {
	e := newEnv(t, server.Options{})
	rr := e.get(t, "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, rr.Body.Len(), contentLength(t, rr))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "[\n  {\n    \"ReviewBody\""), "two-space indentation: %q", rr.Body.String())

	out := decodeList(t, rr)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"r3", "r1", "r2"}, []string{out[0].ReviewId, out[1].ReviewId, out[2].ReviewId})
	for i, r := range out {
		require.NotNil(t, r.Sentiment, "review %d has sentiment", i)
		if i > 0 {
			assert.GreaterOrEqual(t, out[i-1].Sentiment.Compound, r.Sentiment.Compound)
		}
	}
}

func TestGet_FilterByLocationAndDates(t *testing.T) {
	e := newEnv(t, server.Options{})

	out := decodeList(t, e.get(t, "location="+url.QueryEscape("Tucson, Arizona")))
	require.Len(t, out, 2)
	for _, r := range out {
		assert.Equal(t, "Tucson, Arizona", r.Location)
	}

	out = decodeList(t, e.get(t, "start_date=2021-02-01&end_date=2021-12-31"))
	require.Len(t, out, 1)
	assert.Equal(t, "r2", out[0].ReviewId)

	// unpadded dates are accepted
	out = decodeList(t, e.get(t, "start_date=2021-6-1"))
	assert.Len(t, out, 2)

	// repeated parameters: first one wins
	out = decodeList(t, e.get(t, "location="+url.QueryEscape("Carlsbad, California")+"&location=Nowhere"))
	require.Len(t, out, 1)
	assert.Equal(t, "r3", out[0].ReviewId)

	rr := e.get(t, "start_date=2030-01-01")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestGet_InvalidLocation(t *testing.T) {
	e := newEnv(t, server.Options{})
	rr := e.get(t, "location=UnknownPlace")

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "Invalid location", errMessage(t, rr))
	assert.NotContains(t, rr.Body.String(), "ReviewId")
}

func TestGet_MalformedDate(t *testing.T) {
	e := newEnv(t, server.Options{})

	rr := e.get(t, "start_date=01/02/2021")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, errMessage(t, rr), "start_date")

	rr = e.get(t, "end_date=2021-13-40")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, errMessage(t, rr), "end_date")

	// location is checked first
	rr = e.get(t, "location=UnknownPlace&start_date=garbage")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid location", errMessage(t, rr))
}

func TestGet_MalformedQuery(t *testing.T) {
	e := newEnv(t, server.Options{})
	for _, q := range []string{
		"start_date=%zz",
		"location=%zz",
		"start_date=2030-01-01;x=1",
		"location=UnknownPlace;x",
	} {
		t.Run(q, func(t *testing.T) {
			rr := e.get(t, q)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Contains(t, errMessage(t, rr), "invalid query")
			assert.NotContains(t, rr.Body.String(), "ReviewId")
		})
	}
}

func TestGet_ETag(t *testing.T) {
	e := newEnv(t, server.Options{})
	first := e.get(t, "")
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", etag)
	rr := httptest.NewRecorder()
	e.h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotModified, rr.Code)
	assert.Zero(t, rr.Body.Len())
}

func TestPost_Created(t *testing.T) {
	e := newEnv(t, server.Options{})
	rr := e.post(t, url.Values{"ReviewBody": {"great view"}, "Location": {"Carlsbad, California"}})

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "great view", body["ReviewBody"])
	assert.Equal(t, "Carlsbad, California", body["Location"])
	assert.Equal(t, "2024-02-03 04:05:06", body["Timestamp"])
	assert.NotContains(t, body, "sentiment")
	id, _ := body["ReviewId"].(string)
	require.NotEmpty(t, id)
	for _, existing := range []string{"r1", "r2", "r3"} {
		assert.NotEqual(t, existing, id)
	}

	n, _ := e.store.Len(context.Background())
	assert.Equal(t, 4, n)
}

func TestPost_ValidationMessages(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		msg  string
	}{
		{"empty location", url.Values{"ReviewBody": {"x"}, "Location": {""}}, "Invalid location"},
		{"missing location", url.Values{"ReviewBody": {"x"}}, "Invalid location"},
		{"unknown location", url.Values{"ReviewBody": {"x"}, "Location": {"Atlantis"}}, "Invalid location"},
		{"empty body", url.Values{"ReviewBody": {""}, "Location": {"Tucson, Arizona"}}, "ReviewBody is required"},
		{"missing body", url.Values{"Location": {"Tucson, Arizona"}}, "ReviewBody is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, server.Options{})
			rr := e.post(t, tt.form)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.msg, errMessage(t, rr))

			n, _ := e.store.Len(context.Background())
			assert.Equal(t, 3, n)
		})
	}
}

func TestPost_MalformedAndOversizeBody(t *testing.T) {
	e := newEnv(t, server.Options{})

	rr := e.postRaw(t, "ReviewBody=%zz&Location=Tucson")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, errMessage(t, rr), "body")

	rr = e.postRaw(t, "ReviewBody="+strings.Repeat("a", 300)+"&Location=Tucson%2C+Arizona")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, errMessage(t, rr), "exceeds")
}

func TestPost_InvalidUTF8Body(t *testing.T) {
	e := newEnv(t, server.Options{})
	for _, body := range []string{
		"ReviewBody=ok\xff\xfe&Location=Tucson%2C+Arizona",
		"ReviewBody=ok%FF%FE&Location=Tucson%2C+Arizona",
	} {
		rr := e.postRaw(t, body)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, errMessage(t, rr), "body")
	}
	n, _ := e.store.Len(context.Background())
	assert.Equal(t, 3, n)
}

func TestPostThenGet_RoundTrip(t *testing.T) {
	e := newEnv(t, server.Options{})
	rr := e.post(t, url.Values{"ReviewBody": {"great great great"}, "Location": {"Tucson, Arizona"}})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created scored
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	out := decodeList(t, e.get(t, "location="+url.QueryEscape("Tucson, Arizona")))
	require.Len(t, out, 3)
	assert.Equal(t, created.ReviewId, out[0].ReviewId)
	require.NotNil(t, out[0].Sentiment)
	assert.InDelta(t, 1.2, out[0].Sentiment.Compound, 1e-9)
}

func TestOtherMethods(t *testing.T) {
	e := newEnv(t, server.Options{})
	rr := httptest.NewRecorder()
	e.h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRateLimit(t *testing.T) {
	e := newEnv(t, server.Options{RateLimitRPS: 1})
	assert.Equal(t, http.StatusOK, e.get(t, "").Code)

	rr := e.get(t, "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "rate limit exceeded", errMessage(t, rr))
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t, server.Options{})
	rr := httptest.NewRecorder()
	e.h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))

	_ = e.get(t, "")
	rr = httptest.NewRecorder()
	e.h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "reviews_http_requests_total")
}

func contentLength(t *testing.T, rr *httptest.ResponseRecorder) int {
	t.Helper()
	n, err := strconv.Atoi(rr.Header().Get("Content-Length"))
	require.NoError(t, err)
	return n
}
