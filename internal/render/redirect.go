package render

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/emrgen/shortpage/internal/model"
)

type redirectData struct {
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode"`
}

// RedirectRenderer turns a block into an HTTP redirect instruction. This is
// the latency-critical path, it never touches children.
type RedirectRenderer struct{}

func (RedirectRenderer) Kind() string {
	return model.RendererRedirect
}

func (RedirectRenderer) CacheTTL() time.Duration {
	return time.Hour
}

func (RedirectRenderer) Render(block *model.Block) (*Result, error) {
	var data redirectData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return nil, malformedErr(model.RendererRedirect, "data payload is not an object")
	}

	target := strings.TrimSpace(data.URL)
	if target == "" {
		// legacy rows stored the target under arbitrary keys, scan the
		// payload's string fields for anything that parses as an absolute URL
		target = extractURL(block.Data)
	}
	if target == "" {
		return nil, missingErr(model.RendererRedirect, "no redirect url in data payload")
	}

	if !isAbsoluteURL(target) {
		return nil, malformedErr(model.RendererRedirect, "redirect url is not a well-formed absolute url")
	}

	statusCode := data.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusFound
	}

	return &Result{
		Redirect: &Redirect{URL: target, StatusCode: statusCode},
	}, nil
}

func (RedirectRenderer) Metadata(block *model.Block) Metadata {
	return buildMetadata(block, "", "", "", "website")
}

// extractURL scans the string-valued fields of the payload, in key order,
// and returns the first absolute URL found.
func extractURL(data []byte) string {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, ok := fields[key].(string)
		if !ok {
			continue
		}
		if isAbsoluteURL(strings.TrimSpace(value)) {
			return strings.TrimSpace(value)
		}
	}

	return ""
}

func isAbsoluteURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
