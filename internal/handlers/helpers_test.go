package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"choreboard/internal/config"
	"choreboard/internal/repository"
	"choreboard/internal/server"
	"choreboard/internal/services"
	"choreboard/internal/testutil"
)

type testServer struct {
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	cfg := config.Config{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
		Port:        "0",
	}
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	familyService := services.NewFamilyService(familyRepo, userRepo)
	authService := services.NewAuthService(cfg, userRepo, familyService)

	return &testServer{handler: server.New(db, cfg, authService).Router()}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	ts.handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, destination interface{}) {
	t.Helper()
	if err := json.NewDecoder(recorder.Body).Decode(destination); err != nil {
		t.Fatalf("decoding response body %q: %v", recorder.Body.String(), err)
	}
}

type userPayload struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	FamilyID *string `json:"familyId"`
}

type authPayload struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type chorePayload struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
	FamilyID     string  `json:"familyId"`
	AssignedToID *string `json:"assignedToId"`
	Assignee     *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"assignee"`
}

type familyPayload struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	JoinCode string        `json:"joinCode"`
	Members  []userPayload `json:"members"`
}

// register creates an account through the API and returns the response. Extra
// fields (joinCode, createFamilyName) ride along in the body map.
func (ts *testServer) register(t *testing.T, name, email string, extra map[string]string) authPayload {
	t.Helper()
	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": "password1",
	}
	for key, value := range extra {
		body[key] = value
	}

	recorder := ts.do(t, http.MethodPost, "/api/auth/register", "", body)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("registering %s: status %d, body %s", email, recorder.Code, recorder.Body.String())
	}

	var payload authPayload
	decodeBody(t, recorder, &payload)
	return payload
}

// founder registers a user who creates a family on the way in.
func (ts *testServer) founder(t *testing.T, name, email, familyName string) authPayload {
	t.Helper()
	return ts.register(t, name, email, map[string]string{"createFamilyName": familyName})
}

func (ts *testServer) createChore(t *testing.T, token, title string, body map[string]interface{}) chorePayload {
	t.Helper()
	if body == nil {
		body = map[string]interface{}{}
	}
	body["title"] = title

	recorder := ts.do(t, http.MethodPost, "/api/chores", token, body)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("creating chore %s: status %d, body %s", title, recorder.Code, recorder.Body.String())
	}

	var payload struct {
		Chore chorePayload `json:"chore"`
	}
	decodeBody(t, recorder, &payload)
	return payload.Chore
}

func errorMessage(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
	}
	decodeBody(t, recorder, &payload)
	return payload.Error
}
