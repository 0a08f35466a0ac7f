// Package gvp exposes the web service of Gymnázium na Vítězné pláni
// (articles, contacts, static pages, search, legacy news and the event
// calendar) as typed Go values.
//
// Every method issues a fresh request, nothing is cached. Partial records
// (search results, events, users) keep a handle to the Client that produced
// them so that they can be completed later.
package gvp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"gvp-client/internal/components/assert"
	"gvp-client/internal/components/chrono"
	"gvp-client/internal/components/telemetry"
	"gvp-client/internal/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseUrl   = "https://www.gvp.cz/new/api/"
	DefaultEventsUrl = "https://www.gvp.cz/prehled_akci/"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "gvp-client (+https://www.gvp.cz)"
)

var tracer = otel.Tracer("gvp-client/pkg/gvp")

// Options configures the transport of a Client, the zero value talks to the
// production service.
type Options struct {
	// BaseUrl is the root of the JSON api.
	BaseUrl string
	// EventsUrl is the root of the event calendar pages.
	EventsUrl string
	Timeout   time.Duration
	// Proxy is an optional http(s) proxy url.
	Proxy     string
	UserAgent string
	// RateLimit caps the amount of requests per second, 0 means unlimited.
	RateLimit float64
	// CloudflareBypass wraps the transport so that requests look like they
	// come from a regular browser.
	CloudflareBypass bool
	// Record receives a dump of every request and response when set.
	Record restyutil.Output
}

// Client is safe for concurrent use.
type Client struct {
	http      *resty.Client
	eventsUrl string
	time      chrono.API
	tel       telemetry.API
}

func NewClient(opts Options, time chrono.API, tel telemetry.API) (*Client, error) {
	assert.NotNil(time)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("gvp", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.EventsUrl == "" {
		opts.EventsUrl = DefaultEventsUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	for _, raw := range []string{opts.BaseUrl, opts.EventsUrl} {
		parsed, err := url.Parse(raw)
		if err != nil {
			return nil, err
		}
		if !parsed.IsAbs() {
			return nil, fmt.Errorf("gvp: url must be absolute: %q", raw)
		}
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("user-agent", opts.UserAgent)
	if opts.Proxy != "" {
		httpClient.SetProxy(opts.Proxy)
	}
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	if opts.RateLimit > 0 {
		// max burst >= rate just means that no requests will be dropped
		burst := int(math.Ceil(opts.RateLimit))
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, "gvp-client/http", tel)
	if opts.Record != nil {
		restyutil.Record(httpClient, opts.Record)
	}

	return &Client{
		http:      httpClient,
		eventsUrl: opts.EventsUrl,
		time:      time,
		tel:       tel,
	}, nil
}

// fail reports err and marks the span as failed before handing err back.
func (c *Client) fail(span trace.Span, reportId string, err error) error {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		c.tel.ReportWarning(reportId, err)
	} else {
		c.tel.ReportBroken(reportId, err)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

type envelope struct {
	// Failed is set when the service put a truthy value in "error".
	Failed  bool
	Message string
	Data    json.RawMessage
	Raw     []byte
}

func (e envelope) dataIsNull() bool {
	return len(e.Data) == 0 || string(e.Data) == "null"
}

// errorMessage interprets the "error" member, which is falsy (null, false, "",
// 0) when the call succeeded and usually a message string when it did not.
func errorMessage(raw json.RawMessage) (string, bool, error) {
	var value any
	err := json.Unmarshal(raw, &value)
	if err != nil {
		return "", false, err
	}
	switch v := value.(type) {
	case nil:
		return "", false, nil
	case bool:
		if !v {
			return "", false, nil
		}
	case string:
		if v == "" {
			return "", false, nil
		}
		return v, true, nil
	case float64:
		if v == 0 {
			return "", false, nil
		}
	}
	return string(raw), true, nil
}

func (c *Client) fetchEnvelope(ctx context.Context, endpoint string, params url.Values) (envelope, error) {
	c.tel.ReportDebug("fetch", endpoint, params.Encode())

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetHeader("accept", "application/json").
		Get(endpoint)
	if err != nil {
		return envelope{}, &TransportError{Endpoint: endpoint, Err: err}
	}
	body := res.Body()
	if res.IsError() {
		return envelope{Raw: body}, &TransportError{
			Endpoint: endpoint,
			Status:   res.StatusCode(),
			Err:      errors.New(http.StatusText(res.StatusCode())),
		}
	}

	var members map[string]json.RawMessage
	err = json.Unmarshal(body, &members)
	if err != nil {
		return envelope{Raw: body}, newParseError(endpoint, body, fmt.Errorf("decode envelope: %w", err))
	}

	rawError, ok := members["error"]
	if !ok {
		return envelope{Raw: body}, newParseError(endpoint, body, errors.New(`envelope has no "error" member`))
	}
	message, failed, err := errorMessage(rawError)
	if err != nil {
		return envelope{Raw: body}, newParseError(endpoint, body, fmt.Errorf("decode error member: %w", err))
	}

	data, ok := members["data"]
	if !ok && !failed {
		return envelope{Raw: body}, newParseError(endpoint, body, errors.New(`envelope has no "data" member`))
	}

	return envelope{
		Failed:  failed,
		Message: message,
		Data:    data,
		Raw:     body,
	}, nil
}

// fetchList requests a listing endpoint and decodes its payload into out,
// the raw body is handed back for error reporting.
func fetchList[T any](ctx context.Context, c *Client, endpoint string, params url.Values, out *T) ([]byte, error) {
	env, err := c.fetchEnvelope(ctx, endpoint, params)
	if err != nil {
		return env.Raw, err
	}
	if env.Failed {
		return env.Raw, &TransportError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("service error: %s", env.Message),
		}
	}
	if env.dataIsNull() {
		return env.Raw, newParseError(endpoint, env.Raw, errors.New("data is null"))
	}
	err = json.Unmarshal(env.Data, out)
	if err != nil {
		return env.Raw, newParseError(endpoint, env.Raw, err)
	}
	return env.Raw, nil
}

// fetchOne requests a by-id lookup, an error reported by the service or a
// missing payload means the entity does not exist.
func fetchOne[T any](ctx context.Context, c *Client, endpoint string, params url.Values, kind, id string, out *T) ([]byte, error) {
	env, err := c.fetchEnvelope(ctx, endpoint, params)
	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.Status == http.StatusNotFound {
		return env.Raw, &NotFoundError{Endpoint: endpoint, Kind: kind, Id: id}
	}
	if err != nil {
		return env.Raw, err
	}
	if env.Failed || env.dataIsNull() {
		return env.Raw, &NotFoundError{
			Endpoint: endpoint,
			Kind:     kind,
			Id:       id,
			Message:  env.Message,
		}
	}
	err = json.Unmarshal(env.Data, out)
	if err != nil {
		return env.Raw, newParseError(endpoint, env.Raw, err)
	}
	return env.Raw, nil
}

type htmlRequest func(req *resty.Request) (*resty.Response, error)

// fetchDocument runs an html request and parses the body, decoding legacy
// charsets according to the content-type header.
func (c *Client) fetchDocument(endpoint string, do htmlRequest) (*goquery.Document, []byte, error) {
	res, err := do(c.http.R())
	if err != nil {
		return nil, nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	body := res.Body()
	if res.IsError() {
		return nil, body, &TransportError{
			Endpoint: endpoint,
			Status:   res.StatusCode(),
			Err:      errors.New(http.StatusText(res.StatusCode())),
		}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, body, newParseError(endpoint, body, errors.New("empty document"))
	}

	reader, err := charset.NewReader(bytes.NewReader(body), res.Header().Get("content-type"))
	if err != nil {
		return nil, body, newParseError(endpoint, body, fmt.Errorf("decode charset: %w", err))
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, body, newParseError(endpoint, body, fmt.Errorf("parse html: %w", err))
	}
	return doc, body, nil
}

func (c *Client) eventsEndpoint(page string) (string, error) {
	return url.JoinPath(c.eventsUrl, page)
}
