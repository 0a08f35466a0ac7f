package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type report struct {
	kind   string
	id     string
	params []any
}

type recorder struct {
	mu      sync.Mutex
	reports []report
}

func (r *recorder) add(kind, id string, params []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report{kind: kind, id: id, params: params})
}

func (r *recorder) ReportBroken(id string, params ...any)  { r.add("broken", id, params) }
func (r *recorder) ReportWarning(id string, params ...any) { r.add("warning", id, params) }
func (r *recorder) ReportDebug(msg string, params ...any)  { r.add("debug", msg, params) }
func (r *recorder) ReportCount(id string, count int64)     { r.add("count", id, []any{count}) }

func (r *recorder) kinds(kind string) []report {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []report
	for _, rep := range r.reports {
		if rep.kind == kind {
			out = append(out, rep)
		}
	}
	return out
}

func TestScopedAPI(t *testing.T) {
	inner := &recorder{}
	scoped := NewScopedAPI("gvp", inner)

	scoped.ReportBroken("client.articles", "a")
	scoped.ReportWarning("client.article")
	scoped.ReportDebug("fetch", 1, 2)
	scoped.ReportCount("client.news", 4)

	nested := NewScopedAPI("cli", scoped)
	nested.ReportBroken("events")

	require.Equal(t, []report{
		{kind: "broken", id: "gvp: client.articles", params: []any{"a"}},
		{kind: "warning", id: "gvp: client.article", params: nil},
		{kind: "debug", id: "gvp: fetch", params: []any{1, 2}},
		{kind: "count", id: "gvp: client.news", params: []any{int64(4)}},
		{kind: "broken", id: "gvp: cli: events", params: nil},
	}, inner.reports)
}

func TestSlogAPIFormatParams(t *testing.T) {
	var pairs []any
	SlogAPI{}.formatParams(&pairs, []any{"x", 2})
	require.Equal(t, []any{"params.0", "x", "params.1", 2}, pairs)
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	tel := &recorder{}
	client := resty.New()
	InstrumentResty(client, "test", tel)

	res, err := client.R().SetContext(context.Background()).Get(server.URL)
	require.NoError(t, err)
	require.Equal(t, "ok", res.String())

	debug := tel.kinds("debug")
	require.Len(t, debug, 2)
	require.Equal(t, report_resty_request, debug[0].id)
	require.Equal(t, report_resty_response, debug[1].id)
	// both ends of the request share the same id
	require.Equal(t, debug[0].params[0], debug[1].params[0])
	require.Empty(t, tel.kinds("warning"))

	server.Close()
	_, err = client.R().Get(server.URL)
	require.Error(t, err)
	warnings := tel.kinds("warning")
	require.Len(t, warnings, 1)
	require.Equal(t, report_resty_response, warnings[0].id)
}
