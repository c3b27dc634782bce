// internal/api/handler/expirations.go
package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/newthinker/premia/internal/api/response"
	"github.com/newthinker/premia/internal/core"
	"github.com/newthinker/premia/internal/expiry"
)

const maxExpirationCount = 52

// ExpirationsHandler serves the upcoming Friday expiration dates.
type ExpirationsHandler struct{}

// NewExpirationsHandler creates a new expirations handler.
func NewExpirationsHandler() *ExpirationsHandler {
	return &ExpirationsHandler{}
}

// List returns the next N weekly expirations.
func (h *ExpirationsHandler) List(w http.ResponseWriter, r *http.Request) {
	count := expiry.DefaultCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxExpirationCount {
			response.Error(w, http.StatusBadRequest,
				core.WrapError(core.ErrRequestInvalid,
					fmt.Errorf("count must be 1-%d, got %q", maxExpirationCount, raw)))
			return
		}
		count = n
	}

	dates := expiry.Upcoming(count)
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format("2006-01-02")
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"count":       len(out),
		"expirations": out,
	})
}
