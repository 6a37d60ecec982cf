package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	clienterrors "github.com/jrsteele09/etokisana-client/internal/errors"
	"github.com/tidwall/gjson"
)

// Request describes one API call. Body is JSON encoded once so the single
// retry replays exactly the same payload.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header

	// SkipAuthRefresh passes a 401 straight back to the caller. Set on the
	// auth endpoints themselves so a rejected login never triggers a refresh.
	SkipAuthRefresh bool
}

// Response is a fully read 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into out. Empty bodies and a nil out are no-ops.
func (r *Response) Decode(out any) error {
	if out == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return clienterrors.Wrapf(err, "decode %d response", r.StatusCode)
	}
	return nil
}

// DecodeData unmarshals the "data" member of an enveloped body such as
// {"success": true, "data": {...}} into out, or the whole body when there is
// no envelope.
func (r *Response) DecodeData(out any) error {
	if out == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	data := gjson.GetBytes(r.Body, "data")
	if data.IsObject() && !gjson.GetBytes(r.Body, "_id").Exists() {
		if err := json.Unmarshal([]byte(data.Raw), out); err != nil {
			return clienterrors.Wrapf(err, "decode %d response data", r.StatusCode)
		}
		return nil
	}
	return r.Decode(out)
}

// attempt is one invocation of Do. retried marks that the single replay after
// a 401 has been used.
type attempt struct {
	req       *Request
	body      []byte
	requestID string
	retried   bool
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, clienterrors.Wrapf(err, "encode request body")
		}
		return data, nil
	}
}

func readResponse(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func newAPIError(resp *Response) *clienterrors.APIError {
	return &clienterrors.APIError{
		StatusCode: resp.StatusCode,
		Message:    ErrorMessage(resp.Body),
		Body:       resp.Body,
	}
}

// ErrorMessage extracts the human readable message from an error payload.
// It understands {"message": "..."}, {"message": ["..", ".."]},
// {"error_description": "..."} and {"error": "..."} shapes.
func ErrorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"message", "error_description", "error.message", "error", "msg"} {
		result := gjson.GetBytes(body, path)
		switch {
		case result.Type == gjson.String && result.Str != "":
			return result.Str
		case result.IsArray():
			var parts []string
			for _, item := range result.Array() {
				if item.Type == gjson.String && item.Str != "" {
					parts = append(parts, item.Str)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
	}
	return ""
}
