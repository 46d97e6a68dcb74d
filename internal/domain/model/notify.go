package model

// NotifyResult is what came back from a webhook delivery that reached the
// endpoint. Any HTTP status counts as a result; transport failures do not.
type NotifyResult struct {
	StatusCode int
	Body       string
}

// OK reports whether the endpoint answered with a 2xx status.
func (r NotifyResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
