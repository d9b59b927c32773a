package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"
)

// Kind tells the transport how to encode a Reply body.
type Kind string

const (
	KindJSON  Kind = "json"
	KindPlain Kind = "plain"
)

// Request is the transport-neutral view of an inbound call.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Query  url.Values
	// Body is a JSON document; transports substitute {} for bodies that do not parse.
	Body json.RawMessage
}

// Bind decodes the body into dst. A field of the wrong JSON type is a
// validation error.
func (r Request) Bind(dst any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperr.Wrap(apperr.Validation, "field "+typeErr.Field+" has the wrong type", err)
		}
		return apperr.Wrap(apperr.Validation, "malformed request body", err)
	}
	return nil
}

// Token returns the session token sent in the "token" header.
func (r Request) Token() string {
	return strings.TrimSpace(r.Header.Get(headerToken))
}

type Reply struct {
	Status int
	Body   any
	Kind   Kind
}

type HandlerFunc func(ctx context.Context, req Request) Reply

// Resource maps a lowercase method name to its handler.
type Resource map[string]HandlerFunc

type Route struct {
	Path     string
	Resource Resource
}

// Dispatcher routes requests by trimmed path and method. The route table is
// fixed at construction.
type Dispatcher struct {
	routes map[string]Resource
}

func NewDispatcher(routes ...Route) *Dispatcher {
	table := make(map[string]Resource, len(routes))
	for _, rt := range routes {
		res := make(Resource, len(rt.Resource))
		for method, h := range rt.Resource {
			res[strings.ToLower(method)] = h
		}
		table[normalizePath(rt.Path)] = res
	}
	return &Dispatcher{routes: table}
}

// Match reports whether path names a known route and returns its normalized form.
func (d *Dispatcher) Match(path string) (string, bool) {
	p := normalizePath(path)
	_, ok := d.routes[p]
	return p, ok
}

func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Reply {
	res, ok := d.routes[normalizePath(req.Path)]
	if !ok {
		return errorReply(http.StatusNotFound, "not found", "")
	}
	h, ok := res[strings.ToLower(req.Method)]
	if !ok {
		return errorReply(http.StatusMethodNotAllowed, "method not allowed", "")
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if req.Query == nil {
		req.Query = url.Values{}
	}
	return h(ctx, req)
}

func normalizePath(p string) string {
	return strings.Trim(p, "/")
}

func ok(body any) Reply {
	if body == nil {
		body = struct{}{}
	}
	return Reply{Status: http.StatusOK, Body: body, Kind: KindJSON}
}

type errorBody struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

func errorReply(status int, msg, stage string) Reply {
	return Reply{Status: status, Body: errorBody{Error: msg, Stage: stage}, Kind: KindJSON}
}

// failure maps a classified error to its status code and short message.
func failure(err error) Reply {
	return errorReply(statusFor(err), apperr.Message(err), apperr.StageOf(err))
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.Auth:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.Upstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
