package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/anonto42/minired/backend/internal/models"
	"github.com/anonto42/minired/backend/internal/relationship"
	"github.com/anonto42/minired/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryUserRepo is a minimal in-memory repositories.UserRepository for
// handler tests.
type memoryUserRepo struct {
	users map[string]*models.User
}

func newMemoryUserRepo(uids ...string) *memoryUserRepo {
	r := &memoryUserRepo{users: make(map[string]*models.User)}
	for _, uid := range uids {
		r.users[uid] = &models.User{UID: uid, Email: uid + "@example.com"}
	}
	return r
}

func (r *memoryUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.users[user.UID] = user
	return nil
}

func (r *memoryUserRepo) GetUserByUID(_ context.Context, uid string) (*models.User, error) {
	user, ok := r.users[uid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memoryUserRepo) GetUsers(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, nil
}

func (r *memoryUserRepo) GetUsersByUIDs(_ context.Context, uids []string) ([]models.User, error) {
	var out []models.User
	for _, uid := range uids {
		if user, ok := r.users[uid]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *memoryUserRepo) get(uid string) *models.User {
	user, ok := r.users[uid]
	if !ok {
		user = &models.User{UID: uid}
		r.users[uid] = user
	}
	return user
}

func addMember(set []string, member string) []string {
	if slices.Contains(set, member) {
		return set
	}
	return append(set, member)
}

func dropMember(set []string, member string) []string {
	return slices.DeleteFunc(set, func(s string) bool { return s == member })
}

func (r *memoryUserRepo) AddOutgoingRequest(_ context.Context, uid, target string) error {
	u := r.get(uid)
	u.OutgoingRequests = addMember(u.OutgoingRequests, target)
	return nil
}

func (r *memoryUserRepo) RemoveOutgoingRequest(_ context.Context, uid, target string) error {
	u := r.get(uid)
	u.OutgoingRequests = dropMember(u.OutgoingRequests, target)
	return nil
}

func (r *memoryUserRepo) AddIncomingRequest(_ context.Context, uid, target string) error {
	u := r.get(uid)
	u.IncomingRequests = addMember(u.IncomingRequests, target)
	return nil
}

func (r *memoryUserRepo) RemoveIncomingRequest(_ context.Context, uid, target string) error {
	u := r.get(uid)
	u.IncomingRequests = dropMember(u.IncomingRequests, target)
	return nil
}

func (r *memoryUserRepo) PromoteIncomingToFriend(_ context.Context, uid, target string) error {
	u := r.get(uid)
	u.IncomingRequests = dropMember(u.IncomingRequests, target)
	u.Friends = addMember(u.Friends, target)
	return nil
}

func (r *memoryUserRepo) PromoteOutgoingToFriend(_ context.Context, uid, target string) error {
	u := r.get(uid)
	u.OutgoingRequests = dropMember(u.OutgoingRequests, target)
	u.Friends = addMember(u.Friends, target)
	return nil
}

func (r *memoryUserRepo) RemoveFriend(_ context.Context, uid, target string) error {
	u := r.get(uid)
	u.Friends = dropMember(u.Friends, target)
	return nil
}

func (r *memoryUserRepo) SetPresence(_ context.Context, uid string, online bool) error {
	r.get(uid).Online = online
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Emit(context.Context, string, string, string, string) {}

func newFriendshipTestContext(t *testing.T, method, target, paramUID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("actor", models.Actor{UID: "u1", Email: "u1@example.com"})
	if paramUID != "" {
		c.SetParamNames("uid")
		c.SetParamValues(paramUID)
	}
	return c, rec
}

func TestSendRequestEndpoint(t *testing.T) {
	repo := newMemoryUserRepo("u1", "u2")
	h := NewFriendshipHandler(relationship.NewManager(repo, noopNotifier{}))

	c, rec := newFriendshipTestContext(t, http.MethodPost, "/friends/requests/u2", "u2")
	require.NoError(t, h.SendRequest(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, repo.users["u1"].OutgoingRequests, "u2")
	assert.Contains(t, repo.users["u2"].IncomingRequests, "u1")
}

func TestSendRequestEndpointErrorMapping(t *testing.T) {
	repo := newMemoryUserRepo("u1")
	h := NewFriendshipHandler(relationship.NewManager(repo, noopNotifier{}))

	c, _ := newFriendshipTestContext(t, http.MethodPost, "/friends/requests/u1", "u1")
	err := h.SendRequest(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)

	c, _ = newFriendshipTestContext(t, http.MethodPost, "/friends/requests/ghost", "ghost")
	err = h.SendRequest(c)
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestAcceptRequestEndpointWithoutPending(t *testing.T) {
	repo := newMemoryUserRepo("u1", "u2")
	h := NewFriendshipHandler(relationship.NewManager(repo, noopNotifier{}))

	c, _ := newFriendshipTestContext(t, http.MethodPost, "/friends/requests/u2/accept", "u2")
	err := h.AcceptRequest(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestGetFriendsEndpoint(t *testing.T) {
	repo := newMemoryUserRepo("u1", "u2")
	repo.users["u1"].Friends = []string{"u2"}
	h := NewFriendshipHandler(relationship.NewManager(repo, noopNotifier{}))

	c, rec := newFriendshipTestContext(t, http.MethodGet, "/friends", "")
	require.NoError(t, h.GetFriends(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var friends []models.UserCompact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &friends))
	require.Len(t, friends, 1)
	assert.Equal(t, "u2", friends[0].UID)
}

func TestEndpointsRequireAuthenticatedActor(t *testing.T) {
	repo := newMemoryUserRepo("u1")
	h := NewFriendshipHandler(relationship.NewManager(repo, noopNotifier{}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/friends", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.GetFriends(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
