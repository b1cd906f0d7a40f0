package handler

import (
	"log"
	"net/http"
	"time"

	"pharmaledger/pkg/apperror"
	"pharmaledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps an error onto the wire contract. Unexpected failures are
// logged with their cause and surface only a generic message.
func respondError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if appErr.Status == http.StatusInternalServerError {
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, appErr.Unwrap())
	}
	if len(appErr.Fields) > 0 {
		c.JSON(appErr.Status, response.ErrorWithFields(appErr.Status, appErr.Message, appErr.Fields))
		return
	}
	c.JSON(appErr.Status, response.Error(appErr.Status, appErr.Message))
}

// parseDateParam accepts RFC3339 timestamps and bare dates. A bare endDate is
// widened to the end of its day so the range stays inclusive.
func parseDateParam(raw string, endOfDay bool) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}
