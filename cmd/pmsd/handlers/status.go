// Package handlers is HTTP handlers of pmsd.
package handlers

import (
	"net/http"
	"strings"

	apierr "github.com/keti-strato/pms/pkg/api/types/errors"
	"github.com/labstack/echo/v4"
)

// statusOf chooses HTTP status for failures of the kind.
func statusOf(kind string) int {
	switch kind {
	case "":
		return http.StatusOK
	case "DocumentFormatError", "MalformedNameError":
		return http.StatusBadRequest
	case "MissingError":
		return http.StatusNotFound
	case "RemoteApiError", "PredictionServiceError":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func requireJSON(c echo.Context) error {
	ctyp := strings.ToLower(c.Request().Header.Get(echo.HeaderContentType))
	if ctyp != echo.MIMEApplicationJSON && !strings.HasPrefix(ctyp, echo.MIMEApplicationJSON+";") {
		return apierr.UnsupportedMediaType(ctyp)
	}
	return nil
}
