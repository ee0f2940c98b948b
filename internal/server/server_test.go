package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geange/nfasim/internal/cache"
	"github.com/geange/nfasim/internal/record"
)

const exampleAutomaton = `{"q0":"A","F":["C"],"Delta":[["A","0",["A","B"]],["B","1",["C"]]]}`

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	log, _ := test.NewNullLogger()
	reg := prometheus.NewRegistry()
	s := New(reg, reg, append([]Option{WithLogger(log)}, opts...)...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/simulate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func simulateBody(input string) string {
	return `{"label":"nfa01.json","input":"` + input + `","automaton":` + exampleAutomaton + `}`
}

func TestSimulate(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		input    string
		trace    [][]string
		accepted bool
	}{
		{"01", [][]string{{"A"}, {"A", "B"}, {"C"}}, true},
		{"00", [][]string{{"A"}, {"A", "B"}, {"A", "B"}}, false},
		{"", [][]string{{"A"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			resp, data := post(t, ts, simulateBody(tt.input))
			require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var out Response
			require.NoError(t, json.Unmarshal(data, &out))
			assert.False(t, out.Cached)
			assert.Equal(t, record.TypeSimulation, out.Record.Type)
			assert.Equal(t, "nfa01.json", out.Record.SourceLabel)
			assert.Equal(t, tt.input, out.Record.Input)
			assert.Equal(t, tt.trace, out.Record.Trace)
			assert.Equal(t, tt.accepted, out.Record.Accepted)
		})
	}
}

func TestSimulate_Errors(t *testing.T) {
	ts := newTestServer(t, WithMaxInputRunes(4))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"not json", `{`, http.StatusBadRequest},
		{"no automaton", `{"input":"0"}`, http.StatusBadRequest},
		{"malformed triple", `{"automaton":{"q0":"A","Delta":[["A","0"]]}}`, http.StatusBadRequest},
		{"no start state", `{"automaton":{"F":["A"],"Delta":[]}}`, http.StatusUnprocessableEntity},
		{"input too long", `{"input":"00000","automaton":` + exampleAutomaton + `}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := post(t, ts, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body errorBody
			require.NoError(t, json.Unmarshal(data, &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestSimulate_UnionDuplicates(t *testing.T) {
	ts := newTestServer(t)
	automaton := `{"q0":"A","F":["B"],"Delta":[["A","a",["B"]],["A","a",["C"]]]}`

	for union, accepted := range map[bool]bool{false: false, true: true} {
		body, _ := json.Marshal(map[string]any{
			"automaton":        json.RawMessage(automaton),
			"input":            "a",
			"union_duplicates": union,
		})
		resp, data := post(t, ts, string(body))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out Response
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, accepted, out.Record.Accepted, "union=%v", union)
	}
}

func TestSimulate_Cache(t *testing.T) {
	mr := miniredis.RunT(t)
	store := cache.NewRedis(mr.Addr(), "", 0)
	t.Cleanup(func() { store.Close() })
	ts := newTestServer(t, WithCache(store))

	_, data := post(t, ts, simulateBody("01"))
	var first Response
	require.NoError(t, json.Unmarshal(data, &first))
	assert.False(t, first.Cached)
	assert.Len(t, mr.Keys(), 1)

	relabelled := strings.Replace(simulateBody("01"), "nfa01.json", "copy.json", 1)
	_, data = post(t, ts, relabelled)
	var second Response
	require.NoError(t, json.Unmarshal(data, &second))
	assert.True(t, second.Cached)
	assert.Equal(t, "copy.json", second.Record.SourceLabel)
	assert.Equal(t, first.Record.Trace, second.Record.Trace)

	metrics := get(t, ts, "/metrics")
	assert.Contains(t, metrics, `nfasim_cache_lookups_total{result="hit"} 1`)
	assert.Contains(t, metrics, `nfasim_runs_total{accepted="true"} 1`)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (*record.Record, bool, error) {
	return nil, false, errors.New("down")
}

func (failingStore) Put(context.Context, string, *record.Record) error {
	return errors.New("down")
}

func TestSimulate_CacheFailureIsNotFatal(t *testing.T) {
	log, hook := test.NewNullLogger()
	reg := prometheus.NewRegistry()
	s := New(reg, reg, WithLogger(log), WithCache(failingStore{}))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, _ := post(t, ts, simulateBody("01"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings)
}

func get(t *testing.T, ts *httptest.Server, path string) string {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return buf.String()
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, "ok", get(t, ts, "/healthz"))
}
