package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mu    sync.Mutex
	files map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.files[id] = contents
}

func TestRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-served-by", "fixture")
		w.Write([]byte("hello " + r.FormValue("name")))
	}))
	defer server.Close()

	output := &memoryOutput{files: map[string]string{}}
	client := resty.New().SetBaseURL(server.URL)
	Record(client, output)

	_, err := client.R().SetQueryParam("page", "1").Get("/new/api/articles")
	require.NoError(t, err)
	_, err = client.R().SetFormData(map[string]string{"name": "gvp"}).Post("/prehled_akci/index.php")
	require.NoError(t, err)
	_, err = client.R().Get("/")
	require.NoError(t, err)

	require.Len(t, output.files, 3)

	get := output.files["001-articles"]
	require.Contains(t, get, "GET "+server.URL+"/new/api/articles?page=1")
	require.Contains(t, get, "X-Served-By: fixture")
	require.True(t, strings.HasSuffix(get, "hello"))

	post := output.files["002-index.php"]
	require.Contains(t, post, "name=gvp")
	require.True(t, strings.HasSuffix(post, "hello gvp"))

	require.Contains(t, output.files, "003-request")
}

func TestFormatHeaders(t *testing.T) {
	require.Equal(t, "", formatHeaders(http.Header{}))
	require.Equal(t, "A: 1\nA: 2\nB: 3", formatHeaders(http.Header{
		"B": {"3"},
		"A": {"1", "2"},
	}))
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exchanges")
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale"), []byte("x"), 0600))

	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	output.Write("001-news", "contents")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	contents, err := os.ReadFile(filepath.Join(dir, "001-news"))
	require.NoError(t, err)
	require.Equal(t, "contents", string(contents))
}
