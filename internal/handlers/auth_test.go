package handlers_test

import (
	"net/http"
	"strings"
	"testing"
)

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	payload := ts.register(t, "Solo", "solo@test.com", nil)
	if payload.Token == "" {
		t.Error("expected a token in the registration response")
	}
	if payload.User.Email != "solo@test.com" {
		t.Errorf("expected registered email echoed back, got '%s'", payload.User.Email)
	}
	if payload.User.Role != "admin" {
		t.Errorf("expected standalone registration to yield admin, got '%s'", payload.User.Role)
	}
	if payload.User.FamilyID != nil {
		t.Error("expected no family affiliation")
	}
}

func TestRegister_WithFamilyName(t *testing.T) {
	ts := newTestServer(t)

	payload := ts.founder(t, "Founder", "founder@test.com", "The Smiths")
	if payload.User.FamilyID == nil {
		t.Fatal("expected founder affiliated with the new family")
	}
	if payload.User.Role != "admin" {
		t.Errorf("expected family founder to be admin, got '%s'", payload.User.Role)
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	recorder := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Short",
		"email":    "not-an-email",
		"password": "tiny",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}

	var payload struct {
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	decodeBody(t, recorder, &payload)

	fields := make(map[string]string)
	for _, fieldErr := range payload.Errors {
		fields[fieldErr.Field] = fieldErr.Message
	}
	if _, ok := fields["Email"]; !ok {
		t.Error("expected a field error for the malformed email")
	}
	if _, ok := fields["Password"]; !ok {
		t.Error("expected a field error for the short password")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "First", "dup@test.com", nil)

	recorder := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Second",
		"email":    "dup@test.com",
		"password": "password2",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	if message := errorMessage(t, recorder); message != "email already registered" {
		t.Errorf("unexpected error message '%s'", message)
	}
}

func TestRegister_InvalidJoinCode(t *testing.T) {
	ts := newTestServer(t)

	recorder := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Lost",
		"email":    "lost@test.com",
		"password": "password1",
		"joinCode": "no-such-code",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	if message := errorMessage(t, recorder); message != "invalid join code" {
		t.Errorf("unexpected error message '%s'", message)
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	registered := ts.register(t, "Login", "login@test.com", nil)

	recorder := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "login@test.com",
		"password": "password1",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var payload authPayload
	decodeBody(t, recorder, &payload)
	if payload.User.ID != registered.User.ID {
		t.Error("login resolved a different user")
	}
	if payload.Token == "" {
		t.Error("expected a token from login")
	}
	if strings.Contains(recorder.Body.String(), "passwordHash") {
		t.Error("response must never carry the password hash")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "Known", "known@test.com", nil)

	wrongPassword := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "known@test.com", "password": "wrong-password",
	})
	unknownEmail := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "unknown@test.com", "password": "whatever1",
	})

	if wrongPassword.Code != http.StatusBadRequest || unknownEmail.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for both failures, got %d and %d", wrongPassword.Code, unknownEmail.Code)
	}
	// Both failure modes must be indistinguishable to the client.
	if errorMessage(t, wrongPassword) != errorMessage(t, unknownEmail) {
		t.Error("expected identical error messages for bad password and unknown email")
	}
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	ts := newTestServer(t)

	missing := ts.do(t, http.MethodGet, "/api/chores", "", nil)
	if missing.Code != http.StatusUnauthorized {
		t.Errorf("no token: expected 401, got %d", missing.Code)
	}

	garbage := ts.do(t, http.MethodGet, "/api/chores", "not-a-real-token", nil)
	if garbage.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: expected 401, got %d", garbage.Code)
	}
}
