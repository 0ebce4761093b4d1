package render

import "time"

// Redirect instructs the boundary layer to issue an HTTP redirect. The
// status code is passed through from the stored block verbatim, callers must
// not assume it is limited to 301/302.
type Redirect struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
}

// Result is the output of rendering one block. Exactly one of Redirect or
// Content is set. For composite blocks Children holds the rendered child
// sequence in display order.
type Result struct {
	Renderer string        `json:"renderer"`
	Redirect *Redirect     `json:"redirect,omitempty"`
	Content  any           `json:"content,omitempty"`
	Children []*Result     `json:"children,omitempty"`
	Meta     Metadata      `json:"meta"`
	TTL      time.Duration `json:"-"`
}
