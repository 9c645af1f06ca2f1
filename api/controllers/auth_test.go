package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nakawin/casino-backend/internal/auth"
	"github.com/nakawin/casino-backend/internal/users"
	pkgerrors "github.com/nakawin/casino-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubAuthService struct {
	loginResp    *auth.LoginResponse
	loginErr     error
	adminResp    *auth.LoginResponse
	adminErr     error
	refreshResp  *auth.RefreshResponse
	refreshErr   error
	logoutErr    error
	lastLogin    auth.LoginRequest
	lastLogout   string
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.lastLogin = req
	return s.loginResp, s.loginErr
}

func (s *stubAuthService) AdminLogin(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.adminResp, s.adminErr
}

func (s *stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return s.refreshResp, s.refreshErr
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.lastLogout = accessID
	return s.logoutErr
}

type stubRegisterService struct {
	resp *auth.LoginResponse
	err  error
	last auth.RegisterRequest
}

func (s *stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.LoginResponse, error) {
	s.last = req
	return s.resp, s.err
}

func decodeErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	return payload.Error.Code
}

func TestAuthRegisterReturnsCreated(t *testing.T) {
	svc := &stubRegisterService{
		resp: &auth.LoginResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			User:         &users.UserDTO{ID: uuid.New(), Username: "newplayer", Balance: 1000},
		},
	}
	handler := AuthRegister(svc, nil)

	body := `{"username":"newplayer","password":"Secret123!","game_nickname":"HighRoller","game_server":"eu-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.last.Username != "newplayer" {
		t.Fatalf("request not forwarded to service")
	}

	var payload struct {
		Data struct {
			AccessToken string `json:"access_token"`
			User        struct {
				Balance int64 `json:"balance"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.AccessToken != "access" {
		t.Fatalf("expected access token in payload")
	}
	if payload.Data.User.Balance != 1000 {
		t.Fatalf("expected seeded balance in payload")
	}
}

func TestAuthRegisterValidatesBody(t *testing.T) {
	handler := AuthRegister(&stubRegisterService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"username":"x"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec.Body.Bytes()); code != string(pkgerrors.CodeValidation) {
		t.Fatalf("expected validation code got %s", code)
	}
}

func TestAuthLoginMapsUnauthorized(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"ghost","password":"wrong"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec.Body.Bytes()); code != string(pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized code got %s", code)
	}
}

func TestAuthRefreshRequiresBearerToken(t *testing.T) {
	handler := AuthRefresh(&stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"tok"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRefreshForwardsTokens(t *testing.T) {
	svc := &stubAuthService{refreshResp: &auth.RefreshResponse{AccessToken: "new-access", RefreshToken: "new-refresh"}}
	handler := AuthRefresh(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"tok"}`))
	req.Header.Set("Authorization", "Bearer old-access")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.AccessToken != "new-access" {
		t.Fatalf("expected rotated access token, got %q", payload.Data.AccessToken)
	}
}
