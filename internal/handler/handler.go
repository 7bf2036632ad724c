package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "imagevault/internal/errors"
	"imagevault/internal/model"
)

// UserContextKey is where the auth gate stores the resolved *model.User.
const UserContextKey = "user"

// AuthedHandlerFunc is a handler that receives the authenticated user.
type AuthedHandlerFunc func(c echo.Context, user *model.User) error

// WithUser adapts an AuthedHandlerFunc to echo. It must run behind the
// auth gate; a missing user is treated as unauthenticated.
func WithUser(fn AuthedHandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get(UserContextKey).(*model.User)
		if !ok || user == nil {
			return errorResponse(c, nil, apperrors.ErrUnauthorized)
		}
		return fn(c, user)
	}
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

func validationError(detail string) error {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, apperrors.ErrorResponse{
		Detail: detail,
		Code:   "VALIDATION_ERROR",
	})
}

// parseBool accepts the form and query spellings clients send for booleans,
// case-insensitively: 1/0, t/f, true/false, y/n, yes/no, on/off.
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", raw)
}

// errorResponse maps a domain error to its HTTP form, logging anything
// that ends up as a 500.
func errorResponse(c echo.Context, logger logrus.FieldLogger, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).Error("request failed")
	}
	if httpErr.StatusCode == http.StatusUnauthorized {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
