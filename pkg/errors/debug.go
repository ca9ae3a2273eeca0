package errors

import (
	"errors"
	"fmt"
)

// upstreamError is satisfied by transport errors carrying HTTP metadata,
// without this package importing the client that produces them.
type upstreamError interface {
	StatusCode() int
	Endpoint() string
}

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamStatus   int    `json:"upstream_status,omitempty"`
	UpstreamEndpoint string `json:"upstream_endpoint,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var upstream upstreamError
	if errors.As(err, &upstream) {
		d.UpstreamStatus = upstream.StatusCode()
		d.UpstreamEndpoint = upstream.Endpoint()
	}

	return d
}
