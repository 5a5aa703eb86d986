package http

import "time"

// Response is a fully read response. Duration covers the exchange up to the
// last body byte.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
