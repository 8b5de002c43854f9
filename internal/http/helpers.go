package http

import (
	"errors"
	"net/http"
	"strings"

	applog "github.com/raiyan37/Centinel/internal/log"
)

// sanitizeInput removes control characters other than tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// writeError renders err for the client. Request and business errors are
// expected outcomes; anything else is logged as a failure of the server.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	var rerr *requestError
	if errors.As(err, &rerr) {
		if len(rerr.fields) > 0 {
			ValidationErrorResponse(rerr.fields).Write(w)
			return
		}
		BadRequestError(rerr.message).Write(w)
		return
	}

	if _, _, ok := classifyError(err); !ok {
		s.errors.LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, operation,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, ""))
	}
	ErrorFromDomain(err).Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}

// deletedResponse acknowledges a delete.
type deletedResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
