package gvp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gvp-client/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_events = "client.events"
	report_client_event  = "client.event"
)

// Event is a row of the event calendar, Details fetches the rest.
type Event struct {
	Id          int64
	Name        string
	Organizator string
	// Approved is false for events that are only proposed.
	Approved bool

	resolver Resolver
}

// Details fetches the full record of the event.
func (e Event) Details(ctx context.Context) (EventDetails, error) {
	if e.resolver == nil {
		return EventDetails{}, ErrNoResolver
	}
	return e.resolver.Event(ctx, e.Id)
}

type EventDetails struct {
	Id          int64
	Name        string
	Organizator string
	StartTime   time.Time
	// Preliminary is set when only the month of the event is known, StartTime
	// is then the first day of that month.
	Preliminary bool
	Place       string
	Description string
}

func eventIdFromHref(href string) (int64, error) {
	link, err := url.Parse(href)
	if err != nil {
		return 0, err
	}
	raw := link.Query().Get("id")
	if raw == "" {
		return 0, fmt.Errorf("link %q has no id", href)
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (c *Client) parseEventRow(row *goquery.Selection) (Event, bool, error) {
	cells := row.ChildrenFiltered("td")
	// rows with an empty first cell only continue the row above
	if htmlutil.SelectionText(cells.First()) == "" {
		return Event{}, false, nil
	}
	if cells.Length() < 3 {
		return Event{}, false, fmt.Errorf("event row has %d cells, expected 3", cells.Length())
	}

	anchor := row.Find("a[href*='id=']").First()
	href, ok := anchor.Attr("href")
	if !ok {
		return Event{}, false, fmt.Errorf("event row %q has no detail link", htmlutil.SelectionText(cells.Eq(1)))
	}
	id, err := eventIdFromHref(href)
	if err != nil {
		return Event{}, false, fmt.Errorf("parse event id: %w", err)
	}

	name := htmlutil.SelectionText(cells.Eq(1))
	if name == "" {
		return Event{}, false, fmt.Errorf("event %d has no name", id)
	}

	return Event{
		Id:          id,
		Name:        name,
		Organizator: htmlutil.SelectionText(cells.Eq(2)),
		Approved:    row.HasClass("schvaleno"),
		resolver:    c,
	}, true, nil
}

// Events lists the events of the current school year as shown by the
// calendar overview, approved and proposed alike.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	ctx, span := tracer.Start(ctx, "client:Events")
	defer span.End()

	endpoint, err := c.eventsEndpoint("index.php")
	if err != nil {
		return nil, c.fail(span, report_client_events, err)
	}

	doc, raw, err := c.fetchDocument(endpoint, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetContext(ctx).
			SetFormData(map[string]string{
				// the whole school year, see preliminaryMonth
				"mesic1": "1",
				"mesic2": "12",
			}).
			Post(endpoint)
	})
	if err != nil {
		return nil, c.fail(span, report_client_events, err)
	}

	if doc.Find("table").Length() == 0 {
		return nil, c.fail(span, report_client_events, newParseError(
			endpoint, raw, errors.New("page has no event table"),
		))
	}

	var events []Event
	var parseErr error
	doc.Find("tr.schvaleno, tr.navrh").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		event, ok, err := c.parseEventRow(row)
		if err != nil {
			parseErr = err
			return false
		}
		if ok {
			events = append(events, event)
		}
		return true
	})
	if parseErr != nil {
		return nil, c.fail(span, report_client_events, newParseError(endpoint, raw, parseErr))
	}

	c.tel.ReportCount(report_client_events, int64(len(events)))
	return events, nil
}

func inputValue(doc *goquery.Document, name string) (string, bool) {
	input := doc.Find(fmt.Sprintf("input[name=%s]", name)).First()
	if input.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(input.AttrOr("value", "")), true
}

func (c *Client) parseEventDetails(doc *goquery.Document, id int64) (EventDetails, error) {
	loc := c.time.Location()
	year := GetSchoolYear(c.time.Now(), loc)

	details := EventDetails{Id: id}
	details.Organizator, _ = inputValue(doc, "poradatel")
	details.Place, _ = inputValue(doc, "misto")
	details.Description = strings.TrimSpace(doc.Find("textarea[name=popis]").First().Text())

	date, _ := inputValue(doc, "datum")
	start, ok, err := parseHumanDate(date, year, loc)
	if err != nil {
		return EventDetails{}, err
	}
	if ok {
		clock, _ := inputValue(doc, "cas")
		if clock != "" {
			hour, minute, err := parseClock(clock)
			if err != nil {
				return EventDetails{}, err
			}
			start = atClock(start, hour, minute)
		}
		details.StartTime = start
		return details, nil
	}

	option, ok := htmlutil.SelectedOption(doc.Find("select[name=mesic]"))
	if !ok {
		return EventDetails{}, fmt.Errorf("event %d has neither a date nor a month", id)
	}
	index, err := strconv.Atoi(option.AttrOr("value", ""))
	if err != nil {
		return EventDetails{}, fmt.Errorf("parse month of event %d: %w", id, err)
	}
	details.StartTime, err = preliminaryMonth(index, year, loc)
	if err != nil {
		return EventDetails{}, err
	}
	details.Preliminary = true
	return details, nil
}

// Event fetches the details of a single event.
func (c *Client) Event(ctx context.Context, id int64) (EventDetails, error) {
	ctx, span := tracer.Start(ctx, "client:Event")
	defer span.End()

	endpoint, err := c.eventsEndpoint("edit.php")
	if err != nil {
		return EventDetails{}, c.fail(span, report_client_event, err)
	}
	idStr := strconv.FormatInt(id, 10)

	doc, raw, err := c.fetchDocument(endpoint, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetContext(ctx).
			SetQueryParam("id", idStr).
			Get(endpoint)
	})
	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.Status == http.StatusNotFound {
		return EventDetails{}, c.fail(span, report_client_event, &NotFoundError{
			Endpoint: endpoint,
			Kind:     "event",
			Id:       idStr,
		})
	}
	if err != nil {
		return EventDetails{}, c.fail(span, report_client_event, err)
	}

	name, ok := inputValue(doc, "nazev")
	if !ok {
		return EventDetails{}, c.fail(span, report_client_event, newParseError(
			endpoint, raw, errors.New("page has no event form"),
		))
	}
	// unknown ids render an empty form
	if name == "" {
		return EventDetails{}, c.fail(span, report_client_event, &NotFoundError{
			Endpoint: endpoint,
			Kind:     "event",
			Id:       idStr,
		})
	}

	details, err := c.parseEventDetails(doc, id)
	if err != nil {
		return EventDetails{}, c.fail(span, report_client_event, newParseError(endpoint, raw, err))
	}
	details.Name = name
	return details, nil
}
