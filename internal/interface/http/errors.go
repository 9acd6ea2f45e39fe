package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/aadi90392/yoga-master-full/internal/application"
	"github.com/aadi90392/yoga-master-full/pkg/response"
	"github.com/aadi90392/yoga-master-full/pkg/validation"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

// errorTable is checked in order with errors.Is. An empty message means
// the error text itself is returned.
var errorTable = []errorMapping{
	{app.ErrInvalidCredentials, http.StatusUnauthorized, ""},
	{app.ErrUnauthenticated, http.StatusUnauthorized, ""},
	{app.ErrForbidden, http.StatusForbidden, ""},
	{app.ErrNotFound, http.StatusNotFound, ""},
	{app.ErrEmailTaken, http.StatusConflict, ""},
	{app.ErrAlreadyApplied, http.StatusConflict, "Already applied"},
	{app.ErrAlreadyInCart, http.StatusConflict, ""},
	{app.ErrAlreadyEnrolled, http.StatusConflict, ""},
	{app.ErrCheckoutInProgress, http.StatusConflict, ""},
	{app.ErrSoldOut, http.StatusConflict, ""},
	{app.ErrInvalidTransition, http.StatusConflict, ""},
	{app.ErrClassNotAvailable, http.StatusConflict, ""},
	{app.ErrPaymentNotConfirmed, http.StatusPaymentRequired, "payment not confirmed"},
	{app.ErrEmptyCheckout, http.StatusBadRequest, ""},
	{app.ErrUploadsDisabled, http.StatusServiceUnavailable, ""},
}

// statusFor maps a service error to its HTTP status and client message.
func statusFor(err error) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			if m.message != "" {
				return m.status, m.message
			}
			if m.status == http.StatusNotFound {
				return m.status, err.Error()
			}
			return m.status, m.err.Error()
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

// fail writes the envelope for err. Unexpected errors are logged with the
// request id and never echoed to the client.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	response.Fail(c, status, msg, nil)
}

func badRequest(c *gin.Context, err error) {
	response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
