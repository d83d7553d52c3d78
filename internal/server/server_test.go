package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/metrics"
	"github.com/chris-regnier/nglint/internal/rules"
	"github.com/chris-regnier/nglint/internal/worker"
)

const prefixedOutput = "@Component({})\nclass Foo {\n  @Output() onClose = new EventEmitter();\n}\n"

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *metrics.Collector) {
	t.Helper()
	reg, err := rules.DefaultRegistry()
	require.NoError(t, err)

	collector := metrics.NewCollector()
	rs := lint.NewRuleSet().
		Set("no-output-on-prefix", lint.Enabled()).
		Set("template-no-autofocus", lint.Options{})

	newHandler := func() (*worker.Handler, error) {
		return worker.NewHandler(lint.NewLinter(reg, lint.WithRecorder(collector)), rs)
	}
	h, err := newHandler()
	require.NoError(t, err)

	opts = append([]Option{WithCollector(collector), WithDebounce(0), WithHandlerFactory(newHandler)}, opts...)
	ts := httptest.NewServer(New(h, reg.Metadata(), opts...))
	t.Cleanup(ts.Close)
	return ts, collector
}

func postLint(t *testing.T, url string, body []byte) (*http.Response, worker.Response) {
	t.Helper()
	resp, err := http.Post(url+"/lint", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out worker.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLintSuccess(t *testing.T) {
	ts, collector := newTestServer(t)
	body, err := json.Marshal(worker.Request{Program: prefixedOutput, Generation: 7})
	require.NoError(t, err)

	resp, out := postLint(t, ts.URL, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Empty(t, out.Error)
	assert.Equal(t, uint64(7), out.Generation)

	failures, err := lint.UnmarshalFailures([]byte(out.Output))
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "no-output-on-prefix", failures[0].RuleName)

	assert.Equal(t, int64(1), collector.GetStats().TotalPasses)
}

func TestLintMalformedRequest(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, out := postLint(t, ts.URL, []byte("{nope"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, out.Error)
	assert.Empty(t, out.Output)
}

func TestRulesListing(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/rules")
	require.NoError(t, err)
	defer resp.Body.Close()

	var listed []struct {
		RuleName string `json:"ruleName"`
		Enabled  bool   `json:"enabled"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.NotEmpty(t, listed)

	enabled := map[string]bool{}
	for _, r := range listed {
		enabled[r.RuleName] = r.Enabled
	}
	assert.True(t, enabled["no-output-on-prefix"])
	assert.False(t, enabled["template-no-autofocus"])
	assert.False(t, enabled["no-input-rename"])
}

func TestMetricsSnapshot(t *testing.T) {
	ts, _ := newTestServer(t)
	body, _ := json.Marshal(worker.Request{Program: prefixedOutput})
	postLint(t, ts.URL, body)

	resp, err := http.Get(ts.URL + "/metrics?events=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report metrics.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, int64(1), report.Stats.TotalPasses)
	assert.Len(t, report.Events, 1)

	bad, err := http.Get(ts.URL + "/metrics?events=x")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLiveSession(t *testing.T) {
	ts, _ := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?file=foo.component.ts"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"program": prefixedOutput}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg struct {
		Type  string `json:"type"`
		State struct {
			Status      string            `json:"status"`
			Generation  uint64            `json:"generation"`
			Diagnostics []json.RawMessage `json:"diagnostics"`
			Markers     map[string][]string
		} `json:"state"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "state", msg.Type)
	assert.Equal(t, "warnings", msg.State.Status)
	assert.Equal(t, uint64(1), msg.State.Generation)
	assert.Len(t, msg.State.Diagnostics, 1)
	assert.Equal(t, []string{"1"}, msg.State.Markers["2"])

	require.NoError(t, conn.WriteJSON(map[string]string{"program": "@Component({})\nclass Foo {}\n"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "no warnings", msg.State.Status)
	assert.Equal(t, uint64(2), msg.State.Generation)
}
