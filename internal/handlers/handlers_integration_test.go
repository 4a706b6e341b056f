package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blog/internal/database"
	"blog/internal/server"
	"blog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// setupApp builds the full application on a private in-memory SQLite database.
func setupApp(t *testing.T, policy services.UserDeletePolicy) *fiber.App {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err, "failed to connect to in-memory database")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return server.New(server.NewGORMRepositories(db), server.Options{
		JWTSecret:        "test_jwt_secret",
		JWTExpiration:    time.Hour,
		BcryptCost:       bcrypt.MinCost,
		UserDeletePolicy: policy,
	})
}

// doRequest sends body as JSON with an optional bearer token.
func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

type account struct {
	ID    string
	Token string
}

// registerAndLogin creates an account and returns its ID and a fresh token.
func registerAndLogin(t *testing.T, app *fiber.App, username, role string) account {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"name":     username + " Example",
		"username": username,
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login map[string]string
	decode(t, resp, &login)
	require.NotEmpty(t, login["token"])
	return account{ID: login["id"], Token: login["token"]}
}

func createTopic(t *testing.T, app *fiber.App, token, description string) string {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/v1/topics", token, map[string]string{"description": description})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var topic map[string]interface{}
	decode(t, resp, &topic)
	return topic["id"].(string)
}

type postResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	OwnerID string `json:"owner_id"`
	TopicID string `json:"topic_id"`
	Owner   struct {
		Username string `json:"username"`
	} `json:"owner"`
	Topic struct {
		Description string `json:"description"`
	} `json:"topic"`
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupApp(t, services.CascadePosts)

	registration := map[string]string{
		"name":     "Test User",
		"username": "testuser",
		"password": "password123",
		"photo":    "avatar.png",
	}
	resp := doRequest(t, app, http.MethodPost, "/api/v1/users/register", "", registration)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var registerResp map[string]interface{}
	decode(t, resp, &registerResp)
	assert.Equal(t, "User registered successfully", registerResp["message"])
	user := registerResp["user"].(map[string]interface{})
	assert.Equal(t, "USER", user["role"])
	assert.NotContains(t, user, "password")

	// Duplicate registration
	resp = doRequest(t, app, http.MethodPost, "/api/v1/users/register", "", registration)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Login
	resp = doRequest(t, app, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"username": "testuser",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]string
	decode(t, resp, &loginResp)
	assert.NotEmpty(t, loginResp["token"])
	assert.NotEmpty(t, loginResp["id"])
	assert.Equal(t, "Test User", loginResp["name"])
	assert.Equal(t, "testuser", loginResp["username"])
	assert.Equal(t, "avatar.png", loginResp["photo"])
	assert.Equal(t, "USER", loginResp["role"])

	// Wrong password and unknown user fail identically
	resp = doRequest(t, app, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"username": "testuser",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var wrongPassword map[string]string
	decode(t, resp, &wrongPassword)

	resp = doRequest(t, app, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"username": "nobody",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var unknownUser map[string]string
	decode(t, resp, &unknownUser)
	assert.Equal(t, wrongPassword, unknownUser)
}

func TestRegisterValidation(t *testing.T) {
	app := setupApp(t, services.CascadePosts)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"short username", map[string]string{"username": "ab", "password": "password123"}},
		{"short password", map[string]string{"username": "alice", "password": "123"}},
		{"unknown role", map[string]string{"username": "alice", "password": "password123", "role": "ROOT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, http.MethodPost, "/api/v1/users/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			resp.Body.Close()
		})
	}
}

func TestRoleSpellingsCollapse(t *testing.T) {
	app := setupApp(t, services.CascadePosts)
	admin := registerAndLogin(t, app, "admin", "ROLE_ADMIN")

	resp := doRequest(t, app, http.MethodGet, "/api/v1/users/"+admin.ID, admin.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user map[string]interface{}
	decode(t, resp, &user)
	assert.Equal(t, "ADMIN", user["role"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t, services.CascadePosts)

	for _, path := range []string{"/api/v1/posts", "/api/v1/topics", "/api/v1/users/some-id"} {
		resp := doRequest(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		resp.Body.Close()

		resp = doRequest(t, app, http.MethodGet, path, "not.a.token", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestPostLifecycle(t *testing.T) {
	app := setupApp(t, services.CascadePosts)
	admin := registerAndLogin(t, app, "admin", "ADMIN")
	alice := registerAndLogin(t, app, "alice", "")
	bob := registerAndLogin(t, app, "bob", "USER")

	general := createTopic(t, app, admin.Token, "General")
	golang := createTopic(t, app, alice.Token, "Golang")

	// Only admins create posts.
	resp := doRequest(t, app, http.MethodPost, "/api/v1/posts", alice.Token, map[string]string{
		"title": "Mine", "body": "Mine", "topic_id": general,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, "/api/v1/posts", admin.Token, map[string]string{
		"title": "Hello", "body": "First post", "topic_id": general, "owner_id": alice.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created postResponse
	decode(t, resp, &created)
	assert.Equal(t, alice.ID, created.OwnerID)
	assert.Equal(t, "alice", created.Owner.Username)
	assert.Equal(t, "General", created.Topic.Description)
	postPath := "/api/v1/posts/" + created.ID

	// Owner replaces everything except the owner.
	resp = doRequest(t, app, http.MethodPut, postPath, alice.Token, map[string]string{
		"title": "Hello again", "body": "Edited", "topic_id": golang, "owner_id": bob.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var edited postResponse
	decode(t, resp, &edited)
	assert.Equal(t, "Hello again", edited.Title)
	assert.Equal(t, "Edited", edited.Body)
	assert.Equal(t, golang, edited.TopicID)
	assert.Equal(t, alice.ID, edited.OwnerID)

	// Admin editing someone else's post only moves it.
	resp = doRequest(t, app, http.MethodPut, postPath, admin.Token, map[string]string{
		"title": "Admin title", "body": "Admin body", "topic_id": general,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, postPath, bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stored postResponse
	decode(t, resp, &stored)
	assert.Equal(t, "Hello again", stored.Title)
	assert.Equal(t, "Edited", stored.Body)
	assert.Equal(t, general, stored.TopicID)
	assert.Equal(t, alice.ID, stored.OwnerID)

	// Strangers may neither edit nor delete.
	resp = doRequest(t, app, http.MethodPut, postPath, bob.Token, map[string]string{
		"title": "Hijack", "body": "Hijack", "topic_id": golang,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
	resp = doRequest(t, app, http.MethodDelete, postPath, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Topic with posts cannot be deleted.
	resp = doRequest(t, app, http.MethodDelete, "/api/v1/topics/"+general, admin.Token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Owner deletes.
	resp = doRequest(t, app, http.MethodDelete, postPath, alice.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = doRequest(t, app, http.MethodGet, postPath, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestPostErrors(t *testing.T) {
	app := setupApp(t, services.CascadePosts)
	admin := registerAndLogin(t, app, "admin", "ADMIN")
	topic := createTopic(t, app, admin.Token, "General")

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"unknown topic", map[string]string{"title": "t", "body": "b", "topic_id": "missing"}, http.StatusUnprocessableEntity},
		{"unknown owner", map[string]string{"title": "t", "body": "b", "topic_id": topic, "owner_id": "missing"}, http.StatusUnprocessableEntity},
		{"missing topic", map[string]string{"title": "t", "body": "b"}, http.StatusBadRequest},
		{"blank title", map[string]string{"title": "", "body": "b", "topic_id": topic}, http.StatusBadRequest},
		{"title too long", map[string]string{"title": strings.Repeat("x", 101), "body": "b", "topic_id": topic}, http.StatusBadRequest},
		{"body too long", map[string]string{"title": "t", "body": strings.Repeat("x", 1001), "topic_id": topic}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, http.MethodPost, "/api/v1/posts", admin.Token, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
			resp.Body.Close()
		})
	}

	resp := doRequest(t, app, http.MethodPut, "/api/v1/posts/missing", admin.Token, map[string]string{
		"title": "t", "body": "b", "topic_id": topic,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var envelope map[string]string
	decode(t, resp, &envelope)
	assert.NotEmpty(t, envelope["message"])
	assert.Contains(t, envelope["error"], "not found")
}

func TestListPostsFilters(t *testing.T) {
	app := setupApp(t, services.CascadePosts)
	admin := registerAndLogin(t, app, "admin", "ADMIN")
	alice := registerAndLogin(t, app, "alice", "USER")
	general := createTopic(t, app, admin.Token, "General")
	golang := createTopic(t, app, admin.Token, "Golang")

	for _, p := range []map[string]string{
		{"title": "Go generics", "body": "b", "topic_id": golang, "owner_id": alice.ID},
		{"title": "Weekend", "body": "b", "topic_id": general, "owner_id": alice.ID},
		{"title": "Announcements", "body": "b", "topic_id": general},
	} {
		resp := doRequest(t, app, http.MethodPost, "/api/v1/posts", admin.Token, p)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?title=GO", 1},
		{"?topic_id=" + general, 2},
		{"?owner_id=" + alice.ID, 2},
		{"?owner_id=" + alice.ID + "&topic_id=" + general, 1},
		{"?topic=gol", 1},
		{"?owner=alice", 2},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := doRequest(t, app, http.MethodGet, "/api/v1/posts"+tt.query, alice.Token, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var posts []postResponse
			decode(t, resp, &posts)
			assert.Len(t, posts, tt.want)
		})
	}
}

func TestTopicEndpoints(t *testing.T) {
	app := setupApp(t, services.CascadePosts)
	alice := registerAndLogin(t, app, "alice", "USER")
	id := createTopic(t, app, alice.Token, "Golang")

	resp := doRequest(t, app, http.MethodGet, "/api/v1/topics/search?description=GOL", alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []map[string]string
	decode(t, resp, &found)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0]["id"])

	resp = doRequest(t, app, http.MethodGet, "/api/v1/topics/search?description=rust", alice.Token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodPut, "/api/v1/topics/"+id, alice.Token, map[string]string{"description": "Go"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, "/api/v1/topics/"+id, alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var topic map[string]string
	decode(t, resp, &topic)
	assert.Equal(t, "Go", topic["description"])

	resp = doRequest(t, app, http.MethodPost, "/api/v1/topics", alice.Token, map[string]string{"description": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodDelete, "/api/v1/topics/"+id, alice.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodDelete, "/api/v1/topics/"+id, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestUserEndpoints(t *testing.T) {
	app := setupApp(t, services.CascadePosts)
	admin := registerAndLogin(t, app, "admin", "ADMIN")
	alice := registerAndLogin(t, app, "alice", "USER")
	bob := registerAndLogin(t, app, "bob", "USER")

	// Self update cannot escalate the role.
	resp := doRequest(t, app, http.MethodPut, "/api/v1/users/"+alice.ID, alice.Token, map[string]string{
		"name": "Alice Renamed", "username": "alice", "role": "ADMIN",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated map[string]interface{}
	decode(t, resp, &updated)
	assert.Equal(t, "Alice Renamed", updated["name"])
	assert.Equal(t, "USER", updated["role"])

	// Others cannot edit.
	resp = doRequest(t, app, http.MethodPut, "/api/v1/users/"+alice.ID, bob.Token, map[string]string{
		"name": "x", "username": "alice",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Only admins delete.
	resp = doRequest(t, app, http.MethodDelete, "/api/v1/users/"+alice.ID, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	topic := createTopic(t, app, admin.Token, "General")
	resp = doRequest(t, app, http.MethodPost, "/api/v1/posts", admin.Token, map[string]string{
		"title": "t", "body": "b", "topic_id": topic, "owner_id": alice.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodDelete, "/api/v1/users/"+alice.ID, admin.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, "/api/v1/posts?owner_id="+alice.ID, admin.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var posts []postResponse
	decode(t, resp, &posts)
	assert.Empty(t, posts, "posts are removed with their owner")

	// A deleted user's token no longer authenticates.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/topics", alice.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteUserRestrictPolicy(t *testing.T) {
	app := setupApp(t, services.RestrictPosts)
	admin := registerAndLogin(t, app, "admin", "ADMIN")
	alice := registerAndLogin(t, app, "alice", "USER")
	topic := createTopic(t, app, admin.Token, "General")

	resp := doRequest(t, app, http.MethodPost, "/api/v1/posts", admin.Token, map[string]string{
		"title": "t", "body": "b", "topic_id": topic, "owner_id": alice.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodDelete, "/api/v1/users/"+alice.ID, admin.Token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
