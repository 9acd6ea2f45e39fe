// Package response writes the JSON envelope every endpoint answers with.
package response

import (
	"net/http"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response. Empty data is omitted.
type Envelope struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func envelope(c *gin.Context, status int, ok bool, message string) Envelope {
	return Envelope{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString("request_id"),
		Success:   ok,
		Message:   message,
	}
}

// Success writes a success envelope. A zero status means 200.
func Success(c *gin.Context, status int, data any, message string, meta any) {
	if status == 0 {
		status = http.StatusOK
	}
	body := envelope(c, status, true, message)
	body.Data, body.Meta = data, meta
	c.JSON(status, body)
}

// List writes a 200 envelope for a slice with its length under meta.count.
func List(c *gin.Context, items any, message string) {
	n := 0
	if v := reflect.ValueOf(items); v.Kind() == reflect.Slice {
		n = v.Len()
	}
	Success(c, http.StatusOK, items, message, gin.H{"count": n})
}

// Fail writes a failure envelope and aborts the handler chain. A zero status
// means 400.
func Fail(c *gin.Context, status int, message string, err any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	body := envelope(c, status, false, message)
	body.Error = err
	c.AbortWithStatusJSON(status, body)
}
