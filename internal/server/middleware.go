package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lqnhat/chatcore/internal/models"
)

func errorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if err == nil || c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			code := statusFromError(err)
			message := err.Error()
			if code == http.StatusInternalServerError {
				message = http.StatusText(http.StatusInternalServerError)
			}
			he = &echo.HTTPError{Code: code, Message: message}
		}

		var respErr error
		if c.Request().Method == http.MethodHead {
			respErr = c.NoContent(he.Code)
		} else {
			respErr = c.JSON(he.Code, he)
		}
		if respErr != nil {
			c.Logger().Error(respErr)
		}
	}
}

// statusFromError maps the domain sentinels onto HTTP codes so callers
// can tell "done" from "target vanished".
func statusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseObjectID(value, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
