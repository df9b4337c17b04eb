package client

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/tweetkit/endpoint"
)

// Params are the call-time parameters of a request. Values are
// stringified for transmission; MediaFile values become multipart file
// uploads or are resolved through the media uploader.
type Params map[string]any

// Request is an immutable, fully resolved request descriptor. Building
// one performs no I/O.
type Request struct {
	// Method is the HTTP verb.
	Method string
	// URL is the resolved endpoint URL, without query string.
	URL string
	// Params are the wire parameters (query string or form body).
	// Empty when the request carries a multipart body.
	Params map[string]string
	// Multipart is the multipart body, set when Params carried file
	// values. Multipart params are excluded from OAuth signing.
	Multipart *MultipartBody
	// Headers are per-call header additions.
	Headers map[string]string
	// Options are the control options extracted from the call.
	Options CallOptions
}

var supportedMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"HEAD":    true,
	"OPTIONS": true,
}

// bodyMethods transmit params as an url-encoded (or multipart) body
// rather than a query string.
var bodyMethods = map[string]bool{
	"POST":  true,
	"PUT":   true,
	"PATCH": true,
}

// buildRequest is the request factory: a pure transform of the call
// into an immutable Request. Building the same call twice yields two
// structurally equal Requests.
func (c *Client) buildRequest(method string, ep endpoint.Endpoint, params Params, opts []CallOption) (*Request, error) {
	method = strings.ToUpper(method)
	if !supportedMethods[method] {
		return nil, NewUnsupportedMethodError(method)
	}

	co := newCallOptions(opts)
	if co.Suffix != nil {
		ep = ep.With(endpoint.Suffix(*co.Suffix))
	}

	u, err := ep.URL()
	if err != nil {
		return nil, fmt.Errorf("client: resolve endpoint: %w", err)
	}

	wire, files, err := sanitizeParams(params)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method:  method,
		URL:     u,
		Headers: co.Headers,
		Options: co,
	}
	if len(files) > 0 {
		// file params force a multipart body; the remaining params ride
		// along as form fields and are excluded from signing
		req.Multipart = &MultipartBody{Fields: wire, Files: files}
	} else {
		req.Params = wire
	}
	return req, nil
}

// sanitizeParams stringifies call params and splits out file values.
func sanitizeParams(params Params) (wire map[string]string, files []FileField, err error) {
	wire = make(map[string]string, len(params))

	for key, value := range params {
		switch v := value.(type) {
		case nil:
			// omitted
		case string:
			wire[key] = v
		case bool:
			if v {
				wire[key] = "true"
			} else {
				wire[key] = "false"
			}
		case int:
			wire[key] = strconv.Itoa(v)
		case int64:
			wire[key] = strconv.FormatInt(v, 10)
		case uint64:
			wire[key] = strconv.FormatUint(v, 10)
		case float64:
			wire[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			wire[key] = v.String()
		case []string:
			wire[key] = strings.Join(v, ",")
		case MediaFile:
			files = append(files, FileField{FieldName: key, File: v})
		case *MediaFile:
			files = append(files, FileField{FieldName: key, File: *v})
		case fmt.Stringer:
			wire[key] = v.String()
		default:
			return nil, nil, fmt.Errorf("client: unsupported parameter type %T for %q", value, key)
		}
	}
	return wire, files, nil
}
