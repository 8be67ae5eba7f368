package fetch

import "net/http"

// ResponseSink receives the single response produced by ProxyFetch. A nil
// body means the response carries no body.
type ResponseSink interface {
	WriteResponse(status int, body []byte) error
}

// HTTPSink writes to an http.ResponseWriter.
type HTTPSink struct {
	w http.ResponseWriter
}

// NewHTTPSink wraps w.
func NewHTTPSink(w http.ResponseWriter) *HTTPSink {
	return &HTTPSink{w: w}
}

// WriteResponse writes the status and, when present, a JSON body.
func (s *HTTPSink) WriteResponse(status int, body []byte) error {
	if body == nil {
		s.w.WriteHeader(status)
		return nil
	}
	s.w.Header().Set("Content-Type", "application/json")
	s.w.WriteHeader(status)
	_, err := s.w.Write(body)
	return err
}
