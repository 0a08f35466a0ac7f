package gvp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"gvp-client/internal/components/chrono"
	"gvp-client/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

var loadPrague = sync.OnceValues(func() (*time.Location, error) {
	return time.LoadLocation("Europe/Prague")
})

// prague always returns the same *time.Location so that times compare equal
// with require.Equal.
func prague(t testing.TB) *time.Location {
	loc, err := loadPrague()
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

// testTime is in the first semester of the 2024/2025 school year.
func testTime(t testing.TB) chrono.FixedImpl {
	return chrono.FixedImpl{At: time.Date(2024, 10, 1, 12, 0, 0, 0, prague(t))}
}

// recordingAPI keeps every report so tests can assert on them.
type recordingAPI struct {
	mu       sync.Mutex
	broken   []string
	warnings []string
}

func (r *recordingAPI) ReportBroken(id string, params ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broken = append(r.broken, id)
}

func (r *recordingAPI) ReportWarning(id string, params ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, id)
}

func (r *recordingAPI) ReportDebug(string, ...any) {}

func (r *recordingAPI) ReportCount(string, int64) {}

// fakeSchool serves the api and the event calendar from in-memory data, the
// data can be changed between requests.
type fakeSchool struct {
	mu sync.Mutex

	articles []map[string]any
	statics  []map[string]any
	contacts map[string][]map[string]any
	results  []map[string]any
	news     []map[string]any

	eventsPage  string
	eventsType  string
	eventPages  map[string]string
	searchTerms []string
	requests    int
}

func newFakeSchool() *fakeSchool {
	return &fakeSchool{
		articles: []map[string]any{
			wireArticleFixture(3, "Den otevřených dveří", "novak", "Jan Novák", []any{
				map[string]any{
					"id": 11, "text": "Těšíme se!", "date": "2024-09-30 10:00:00", "edited": false,
					"author": map[string]any{"username": nil, "name": "Host"},
				},
				nil,
				map[string]any{
					"id": "12", "text": "Kdy to začíná?", "date": "2024-09-30T11:30:00", "edited": true,
					"author": map[string]any{"username": "dvorakova", "name": "Eva Dvořáková"},
				},
			}),
			wireArticleFixture(2, "Zahájení školního roku", "dvorakova", "Eva Dvořáková", nil),
			wireArticleFixture(1, "Prázdniny", "novak", "Jan Novák", nil),
		},
		statics: []map[string]any{
			{"id": "7", "title": "Přijímací řízení", "content": "<p>Informace</p>"},
			{"id": 8, "title": "Kontakty", "content": nil},
		},
		contacts: map[string][]map[string]any{
			"1": {
				{
					"name": "Jan Novák", "description": "třídní učitel 3.B, matematika", "phone": "123 456 789",
					"mail": "novak", "degree": "Mgr. ", "degree2": "", "type": "1",
				},
				{
					"name": "Eva Dvořáková", "description": nil, "phone": "", "mail": "dvorakova",
					"degree": "PhDr.", "degree2": " Ph.D.", "type": 1,
				},
			},
			"2": {
				{"name": "Jídelna", "description": "obědy", "phone": "111", "mail": "jidelna", "degree": "", "degree2": ""},
			},
		},
		results: []map[string]any{
			{"title": "Den otevřených dveří", "content": "…", "link": "den-otevrenych-dveri-3", "category": "articles"},
			{"title": "Přijímací řízení", "content": "…", "link": "7", "category": "static"},
			{"title": "Re: Den otevřených dveří", "content": "Kdy to začíná?", "link": "den-otevrenych-dveri-3#12", "category": "comments"},
			{"content": "untitled padding", "link": ""},
		},
		news: []map[string]any{
			{
				"id": 5, "title": "Nový web", "content": "Spouštíme nový web.", "date": "2019-09-01",
				"author": map[string]any{"username": "admin", "name": "Správce"},
			},
		},
		eventsPage: eventsPageFixture,
		eventsType: "text/html; charset=utf-8",
		eventPages: map[string]string{
			"24": eventPageFixture("Den otevřených dveří", "Jan Novák", "so 12.10.", "9:00", "0", "aula", "Prohlídka školy"),
			"25": eventPageFixture("Lyžařský kurz", "Eva Dvořáková", "", "", "6", "Krkonoše", ""),
			"26": eventPageFixture("Maturitní ples", "3.B", "pá 17.1.", "", "0", "Lucerna", ""),
		},
	}
}

func wireArticleFixture(id int, title, username, name string, comments []any) map[string]any {
	return map[string]any{
		"id":       strconv.Itoa(id),
		"title":    title,
		"preface":  "Perex " + title,
		"content":  "<p>" + title + "</p>",
		"pinned":   id == 3,
		"date":     fmt.Sprintf("2024-09-%02d 08:00:00", 20+id),
		"author":   map[string]any{"username": username, "name": name},
		"comments": comments,
		"link":     fmt.Sprintf("clanek-%d", id),
	}
}

const eventsPageFixture = `<html><body>
<form method="post"><select name="mesic1"></select><select name="mesic2"></select></form>
<table class="akce">
	<tr><th>Datum</th><th>Akce</th><th>Pořadatel</th></tr>
	<tr class="schvaleno"><td>so 12.10.</td><td><a href="edit.php?id=24">Den otevřených dveří</a></td><td>Jan Novák</td></tr>
	<tr class="schvaleno"><td> </td><td>pokračování</td><td></td></tr>
	<tr class="navrh"><td>leden</td><td><a href="edit.php?id=25">Lyžařský  kurz</a></td><td>Eva Dvořáková</td></tr>
	<tr class="schvaleno"><td>pá 17.1.</td><td><a href="edit.php?id=26">Maturitní ples</a></td><td>3.B</td></tr>
	<tr class="zruseno"><td>po 14.10.</td><td><a href="edit.php?id=27">Zrušeno</a></td><td>-</td></tr>
</table>
</body></html>`

func eventPageFixture(name, organizator, date, clock, month, place, description string) string {
	options := ""
	for i := 1; i <= 12; i++ {
		selected := ""
		if strconv.Itoa(i) == month {
			selected = " selected"
		}
		options += fmt.Sprintf(`<option value="%d"%s>%d</option>`, i, selected, i)
	}
	return fmt.Sprintf(`<html><body><form method="post">
<input type="text" name="nazev" value="%s">
<input type="text" name="poradatel" value="%s">
<input type="text" name="datum" value="%s">
<input type="text" name="cas" value="%s">
<select name="mesic">%s</select>
<input type="text" name="misto" value="%s">
<textarea name="popis">%s</textarea>
</form></body></html>`, name, organizator, date, clock, options, place, description)
}

func writeEnvelope(w http.ResponseWriter, errValue any, data any) {
	w.Header().Set("content-type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"error": errValue, "data": data})
}

func findById(items []map[string]any, id string) map[string]any {
	for _, item := range items {
		if fmt.Sprint(item["id"]) == id {
			return item
		}
	}
	return nil
}

func (f *fakeSchool) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	query := r.URL.Query()
	switch r.URL.Path {
	case "/new/api/articles":
		switch query.Get("action") {
		case "by_id":
			article := findById(f.articles, query.Get("id"))
			if article == nil {
				writeEnvelope(w, "Article not found", nil)
				return
			}
			writeEnvelope(w, nil, article)
		case "by_author":
			var list []map[string]any
			for _, a := range f.articles {
				if a["author"].(map[string]any)["username"] == query.Get("author") {
					list = append(list, a)
				}
			}
			writeEnvelope(w, nil, map[string]any{"articles": list, "pages": 1})
		default:
			list := f.articles
			if query.Get("page") != "1" {
				list = []map[string]any{}
			}
			writeEnvelope(w, nil, map[string]any{"articles": list, "pages": 1})
		}
	case "/new/api/static":
		if query.Get("action") == "by_id" {
			file := findById(f.statics, query.Get("id"))
			if file == nil {
				writeEnvelope(w, "Static file not found", nil)
				return
			}
			writeEnvelope(w, false, file)
			return
		}
		writeEnvelope(w, "", f.statics)
	case "/new/api/contacts":
		writeEnvelope(w, nil, f.contacts[query.Get("type")])
	case "/new/api/search":
		f.searchTerms = append(f.searchTerms, query.Get("term"))
		category := query.Get("category")
		results := []map[string]any{}
		for _, result := range f.results {
			if category == "all" || result["category"] == nil || result["category"] == category {
				results = append(results, result)
			}
		}
		writeEnvelope(w, nil, map[string]any{"results": results})
	case "/new/api/news":
		writeEnvelope(w, nil, f.news)
	case "/prehled_akci/index.php":
		if r.Method != http.MethodPost || r.FormValue("mesic1") != "1" || r.FormValue("mesic2") != "12" {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		w.Header().Set("content-type", f.eventsType)
		fmt.Fprint(w, f.eventsPage)
	case "/prehled_akci/edit.php":
		w.Header().Set("content-type", "text/html; charset=utf-8")
		page, ok := f.eventPages[query.Get("id")]
		if !ok {
			page = eventPageFixture("", "", "", "", "0", "", "")
		}
		fmt.Fprint(w, page)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSchool) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func newTestClient(t testing.TB, handler http.Handler) *Client {
	return newTestClientWithTelemetry(t, handler, telemetry.SlogAPI{})
}

func newTestClientWithTelemetry(t testing.TB, handler http.Handler, tel telemetry.API) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{
		BaseUrl:   server.URL + "/new/api/",
		EventsUrl: server.URL + "/prehled_akci/",
		Timeout:   5 * time.Second,
	}, testTime(t), tel)
	require.NoError(t, err)
	return client
}
