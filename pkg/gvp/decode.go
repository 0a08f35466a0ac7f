package gvp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// wireId accepts ids sent either as JSON numbers or as strings of digits,
// the service uses both depending on the endpoint.
type wireId int64

func (i *wireId) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("id is null")
	}
	text := string(data)
	if strings.HasPrefix(text, `"`) {
		var s string
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		text = s
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("id %s is not an integer", data)
	}
	*i = wireId(id)
	return nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTimestamp parses the ISO-like dates used by the api, timestamps
// without a zone are local to the school.
func parseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// fieldErrors collects the names of required members missing from a payload.
type fieldErrors struct {
	record  string
	missing []string
}

func (f *fieldErrors) require(name string, present bool) {
	if !present {
		f.missing = append(f.missing, name)
	}
}

func (f *fieldErrors) err() error {
	if len(f.missing) == 0 {
		return nil
	}
	return fmt.Errorf("%s is missing required fields: %s", f.record, strings.Join(f.missing, ", "))
}

func derefOr[T any](value *T, fallback T) T {
	if value == nil {
		return fallback
	}
	return *value
}
