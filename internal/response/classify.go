// Package response turns raw HTTP responses into payloads or typed errors.
package response

import (
	"time"

	"github.com/bytedance/sonic"

	"mbx/internal/transport"
	"mbx/pkg/core"
)

type apiErrorBody struct {
	Code *int   `json:"code"`
	Msg  string `json:"msg"`
}

// Classify inspects the status code and body of resp. A non-2xx status
// yields *core.APIError, an undecodable 2xx body yields *core.RequestError,
// anything else a *core.Payload. call supplies the request context carried by
// the errors and may be nil.
func Classify(resp *transport.Response, call *transport.Call) (*core.Payload, error) {
	if !resp.IsSuccess() {
		return nil, apiError(resp, call)
	}

	var value any
	if err := sonic.Unmarshal(resp.Body, &value); err != nil {
		return nil, &core.RequestError{
			StatusCode: resp.StatusCode,
			Message:    "invalid response: " + string(resp.Body),
			Body:       resp.Body,
		}
	}

	return &core.Payload{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Raw:        resp.Body,
		Value:      value,
	}, nil
}

func apiError(resp *transport.Response, call *transport.Call) *core.APIError {
	e := &core.APIError{
		StatusCode: resp.StatusCode,
		Message:    string(resp.Body),
		Body:       resp.Body,
		Timestamp:  time.Now(),
	}
	if call != nil {
		e.Method = call.Method
		e.URL = call.URL
	}

	var body apiErrorBody
	if err := sonic.Unmarshal(resp.Body, &body); err == nil && body.Code != nil {
		e.Code = *body.Code
		e.Message = body.Msg
	}
	e.Type = core.ClassifyCode(e.Code, e.StatusCode)
	return e
}
