package restyutil

import (
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type Output interface {
	Write(id string, contents string)
}

// Record writes every completed request/response pair made by client to
// output, the ids are "<n>-<last path segment>" in request order.
func Record(client *resty.Client, output Output) {
	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		n := atomic.AddUint64(&idcounter, 1)
		output.Write(messageId(n, res.Request.URL), formatHttpMessage(res))
		return nil
	})
}

func messageId(n uint64, rawUrl string) string {
	name := "request"
	parsed, err := url.Parse(rawUrl)
	if err == nil {
		segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
		if last := segments[len(segments)-1]; last != "" {
			name = last
		}
	}
	return fmt.Sprintf("%03d-%s", n, name)
}
