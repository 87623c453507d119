package domain

// FetchResult is the outcome of one outbound GET. Exactly one of Body or Err is
// meaningful: a failed fetch carries the reason in Err and no body.
type FetchResult struct {
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

// OK reports whether the fetch succeeded with a usable body.
func (r FetchResult) OK() bool {
	return r.Err == nil && len(r.Body) > 0
}

// FetchFailure builds a failed FetchResult.
func FetchFailure(url string, err error) FetchResult {
	return FetchResult{URL: url, Err: err}
}

// PageContent is the readable part of a listing page
type PageContent struct {
	Title           string
	Description     string
	Text            string
	StructuredPrice *float64
}
