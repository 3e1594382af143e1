package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/redqueen/internal/fixture"
	"github.com/mwiater/redqueen/internal/telemetry"
)

func newTestServer(t *testing.T, m *telemetry.Metrics) (*Server, *httptest.Server) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	fx := fixture.DefaultConfig()
	fx.MaxTime = 2 * time.Millisecond
	fx.SlowLimit = time.Second
	s := NewServer(Config{MaxSize: 1 << 20, Fixture: fx}, m, logger)
	s.newRunID = func() string { return "run-42" }
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func post(t *testing.T, url, body string) (int, ErrResp) {
	t.Helper()
	resp, err := http.Post(url+"/benchmark", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out ErrResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestNewServerDefaults(t *testing.T) {
	s := NewServer(Config{}, nil, nil)
	assert.Equal(t, DefaultTimeout, s.cfg.Timeout)
	assert.Equal(t, DefaultMaxSize, s.cfg.MaxSize)
	assert.Equal(t, fixture.DefaultConfig(), s.cfg.Fixture)
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestSuitesEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/suites")
	require.NoError(t, err)
	defer resp.Body.Close()

	var suites []SuiteInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&suites))
	require.Len(t, suites, 2)
	assert.Equal(t, "codec", suites[0].Name)
	assert.Equal(t, []string{"fastest", "default", "better", "best"}, suites[1].Tools["zstd"])
}

func TestBenchmarkRejectsInvalidRequests(t *testing.T) {
	_, ts := newTestServer(t, nil)

	cases := map[string]struct {
		body string
		want string
	}{
		"malformed":      {`{"suite":`, "invalid JSON"},
		"unknown field":  {`{"suite":"codec","model":"x"}`, "invalid JSON"},
		"missing suite":  {`{}`, "suite is required"},
		"unknown suite":  {`{"suite":"vision"}`, "unknown suite"},
		"size too large": {`{"suite":"codec","sizes":[2097152]}`, "out of range"},
		"size zero":      {`{"suite":"codec","sizes":[0]}`, "out of range"},
		"unknown tool":   {`{"suite":"codec","tools":["yaml"]}`, "unknown tool"},
		"bad max time":   {`{"suite":"codec","max_time":"later"}`, "max_time"},
		"max time limit": {`{"suite":"codec","max_time":"1h"}`, "exceeds the agent limit"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			status, resp := post(t, ts.URL, tc.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, resp.OK)
			assert.Contains(t, resp.Error, tc.want)
		})
	}
}

func TestClientRunsBenchmarkOnAgent(t *testing.T) {
	// GIVEN an agent with metrics
	m := telemetry.NewMetrics()
	_, ts := newTestServer(t, m)
	client := &Client{BaseURL: ts.URL + "/"}

	// WHEN a single codec benchmark is requested
	resp, err := client.Run(context.Background(), BenchRequest{Suite: "codec", Tools: []string{"stdjson"}, Sizes: []int{128}, MaxTime: "1ms"})

	// THEN the records come back tagged with the agent run id
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "run-42", resp.RunID)
	assert.NotEmpty(t, resp.Hardware)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "codec/bench_stdjson[default-doc-128B]", resp.Records[0].ID)
	assert.Equal(t, "run-42", resp.Records[0].RunID)
	assert.NotEmpty(t, resp.Records[0].Stats.Timings)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("stdjson", "ok")))

	metricsResp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	body, _ := io.ReadAll(metricsResp.Body)
	assert.Contains(t, string(body), `redqueen_runs_total{status="ok",tool="stdjson"} 1`)
}

func TestClientReportsAgentErrors(t *testing.T) {
	_, ts := newTestServer(t, nil)
	client := &Client{BaseURL: ts.URL}

	_, err := client.Run(context.Background(), BenchRequest{Suite: "vision"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent returned status 400")
	assert.Contains(t, err.Error(), "unknown suite")
}

func TestClientRejectsNonJSONErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := (&Client{BaseURL: ts.URL}).Run(context.Background(), BenchRequest{Suite: "codec"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502: gateway down")
}

func TestClientRequiresEndpoint(t *testing.T) {
	_, err := (&Client{}).Run(context.Background(), BenchRequest{Suite: "codec"})
	assert.Error(t, err)
}

func TestMetricsRouteAbsentWithoutMetrics(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
