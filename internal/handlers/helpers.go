package handlers

import (
	"net/http"

	"github.com/anonto42/minired/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// actorFromContext returns the authenticated actor stored by the JWT
// middleware.
func actorFromContext(c echo.Context) (models.Actor, error) {
	actor, ok := c.Get("actor").(models.Actor)
	if !ok || actor.UID == "" {
		return models.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return actor, nil
}
