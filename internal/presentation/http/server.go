package httppresentation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/observability/logctx"
)

const (
	componentHTTPServer = "http_server"
	headerRequestID     = "X-Request-ID"
	maxBodyBytes        = 1 << 20
)

var emptyObject = json.RawMessage("{}")

// Server adapts net/http to the Dispatcher.
type Server struct {
	dispatcher *Dispatcher
	log        observability.Logger
	metrics    observability.Metrics
}

func NewServer(d *Dispatcher, tel observability.Observability) *Server {
	tel = observability.Or(tel)
	return &Server{
		dispatcher: d,
		log:        tel.Logger().With(observability.F("component", componentHTTPServer)),
		metrics:    tel.Metrics(),
	}
}

// Handler returns the dispatcher wrapped in the request middleware chain:
// trace, request logger, metrics, access log.
func (s *Server) Handler() http.Handler {
	inner := s.withAccessLog(s.withHTTPMetrics(http.HandlerFunc(s.serve)))
	chain := s.withTrace(ObservabilityMiddleware(s.log, func(r *http.Request) string {
		return r.Header.Get(headerRequestID)
	})(inner))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unknown"
		if p, ok := s.dispatcher.Match(r.URL.Path); ok {
			route = "/" + p
		}
		chain.ServeHTTP(w, r.WithContext(contextWithRoute(r.Context(), route)))
	})
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		logctx.FromOr(r.Context(), s.log).Warn("http_body_read_failed", observability.F("error", err.Error()))
	}
	reply := s.dispatcher.Dispatch(r.Context(), Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header,
		Query:  r.URL.Query(),
		Body:   body,
	})
	s.write(w, r, reply)
}

// readBody returns the request body when it is a JSON document and {} otherwise.
func readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	if r.Body == nil {
		return emptyObject, nil
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return emptyObject, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !json.Valid(raw) {
		return emptyObject, nil
	}
	return raw, nil
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, reply Reply) {
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}

	var payload []byte
	switch reply.Kind {
	case KindPlain:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if reply.Body != nil {
			payload = []byte(fmt.Sprint(reply.Body))
		}
	default:
		body := reply.Body
		if body == nil {
			body = struct{}{}
		}
		encoded, err := json.Marshal(body)
		if err != nil {
			logctx.FromOr(r.Context(), s.log).Error("http_reply_encode_failed", observability.F("error", err.Error()))
			status = http.StatusInternalServerError
			encoded = []byte(`{"error":"internal error"}`)
		}
		w.Header().Set("Content-Type", "application/json")
		payload = encoded
	}

	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
