package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/minired/backend/internal/relationship"
	"github.com/labstack/echo/v4"
)

// FriendshipHandler handles HTTP requests related to friendships
type FriendshipHandler struct {
	manager *relationship.Manager
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(manager *relationship.Manager) *FriendshipHandler {
	return &FriendshipHandler{manager: manager}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.GET("/friends", h.GetFriends)
	g.GET("/friends/requests/pending", h.GetPendingRequests)
	g.GET("/friends/relation/:uid", h.GetRelation)
	g.POST("/friends/requests/:uid", h.SendRequest)
	g.DELETE("/friends/requests/:uid", h.CancelRequest)
	g.POST("/friends/requests/:uid/accept", h.AcceptRequest)
	g.DELETE("/friends/:uid", h.RemoveFriend) // Unfriend
}

// GetRelation classifies the relation between the caller and another user
func (h *FriendshipHandler) GetRelation(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	rel, err := h.manager.Relation(c.Request().Context(), actor.UID, c.Param("uid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"uid": c.Param("uid"), "relation": rel})
}

// SendRequest handles sending a friend request
func (h *FriendshipHandler) SendRequest(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.manager.SendRequest(c.Request().Context(), actor, c.Param("uid")); err != nil {
		return mapRelationshipError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"relation": relationship.RelationOutgoing})
}

// CancelRequest withdraws a previously sent friend request
func (h *FriendshipHandler) CancelRequest(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.manager.CancelRequest(c.Request().Context(), actor, c.Param("uid")); err != nil {
		return mapRelationshipError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"relation": relationship.RelationNone})
}

// AcceptRequest accepts a pending friend request
func (h *FriendshipHandler) AcceptRequest(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.manager.AcceptRequest(c.Request().Context(), actor, c.Param("uid")); err != nil {
		return mapRelationshipError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"relation": relationship.RelationFriend})
}

// RemoveFriend removes an existing friendship in both directions
func (h *FriendshipHandler) RemoveFriend(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.manager.RemoveFriend(c.Request().Context(), actor, c.Param("uid")); err != nil {
		return mapRelationshipError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"relation": relationship.RelationNone})
}

// GetFriends retrieves the authenticated user's friends
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	friends, err := h.manager.Friends(c.Request().Context(), actor.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, friends)
}

// GetPendingRequests retrieves pending friend requests for the caller
func (h *FriendshipHandler) GetPendingRequests(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	requests, err := h.manager.PendingRequests(c.Request().Context(), actor.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, requests)
}

// mapRelationshipError converts relationship errors to HTTP responses. A
// partial dual write reports 500 so the client reattempts; each mutation is
// idempotent, so the retry converges both records.
func mapRelationshipError(err error) error {
	switch {
	case errors.Is(err, relationship.ErrSelfTarget):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, relationship.ErrTargetNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, relationship.ErrNoPendingRequest):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
