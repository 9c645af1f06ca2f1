package auth

import (
	"context"
	"testing"
	"time"

	pkgAuth "github.com/nakawin/casino-backend/pkg/auth"
	"github.com/nakawin/casino-backend/pkg/auth/session"
	"github.com/nakawin/casino-backend/pkg/config"
	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
	pkgerrors "github.com/nakawin/casino-backend/pkg/errors"
	"github.com/nakawin/casino-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeUserRepository struct {
	users       map[string]*models.User
	lastLoginID uuid.UUID
}

func newFakeUserRepository(seed ...*models.User) *fakeUserRepository {
	repo := &fakeUserRepository{users: map[string]*models.User{}}
	for _, u := range seed {
		repo.users[u.Username] = u
	}
	return repo
}

func (f *fakeUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := f.users[username]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.lastLoginID = id
	return nil
}

type fakeSessionManager struct {
	sessions map[string]string
	revoked  []string
}

func newFakeSessionManager() *fakeSessionManager {
	return &fakeSessionManager{sessions: map[string]string{}}
}

func (f *fakeSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.sessions[accessID] = token
	return token, nil
}

func (f *fakeSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.sessions, oldAccessID)
	newAccessID := uuid.NewString()
	token := "refresh-" + newAccessID
	f.sessions[newAccessID] = token
	return newAccessID, token, nil
}

func (f *fakeSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(f.sessions, accessID)
	f.revoked = append(f.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "casino-backend",
		ExpirationMinutes: 30,
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func strPtr(v string) *string { return &v }

func buildTestService(t *testing.T, seed ...*models.User) (Service, *fakeUserRepository, *fakeSessionManager) {
	t.Helper()
	repo := newFakeUserRepository(seed...)
	sessions := newFakeSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, sessions
}

func TestServiceLoginDefaultsToPlayerRole(t *testing.T) {
	password := "player-secret"
	user := &models.User{
		ID:           uuid.New(),
		Username:     "highroller",
		PasswordHash: mustHashPassword(t, password),
		GameNickname: "HighRoller",
		GameServer:   "eu-1",
		IsActive:     true,
	}

	svc, repo, _ := buildTestService(t, user)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Username: user.Username,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.MemberRolePlayer {
		t.Fatalf("expected player role claim, got %s", claims.Role)
	}
	if claims.UserID != user.ID {
		t.Fatalf("user id claim mismatch")
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected refresh token to be set")
	}
	if repo.lastLoginID != user.ID {
		t.Fatalf("expected last login to be recorded")
	}
	if resp.User == nil || resp.User.Username != user.Username {
		t.Fatalf("expected user dto in response")
	}
}

func TestServiceLoginRejectsWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Username:     "highroller",
		PasswordHash: mustHashPassword(t, "correct-password"),
		IsActive:     true,
	}

	svc, _, _ := buildTestService(t, user)

	_, err := svc.Login(context.Background(), LoginRequest{
		Username: user.Username,
		Password: "wrong-password",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestServiceLoginRejectsInactiveUser(t *testing.T) {
	password := "player-secret"
	user := &models.User{
		ID:           uuid.New(),
		Username:     "suspended",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     false,
	}

	svc, _, _ := buildTestService(t, user)

	_, err := svc.Login(context.Background(), LoginRequest{
		Username: user.Username,
		Password: password,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestServiceLoginUnknownUser(t *testing.T) {
	svc, _, _ := buildTestService(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		Username: "ghost",
		Password: "whatever",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestServiceAdminLoginRequiresAdminRole(t *testing.T) {
	password := "player-secret"
	player := &models.User{
		ID:           uuid.New(),
		Username:     "regular",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     true,
	}

	svc, _, _ := buildTestService(t, player)

	_, err := svc.AdminLogin(context.Background(), LoginRequest{
		Username: player.Username,
		Password: password,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for non-admin, got %v", err)
	}
}

func TestServiceAdminLoginMintsAdminClaim(t *testing.T) {
	password := "admin-secret"
	admin := &models.User{
		ID:           uuid.New(),
		Username:     "operator",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     true,
		SystemRole:   strPtr("admin"),
	}

	svc, _, _ := buildTestService(t, admin)

	resp, err := svc.AdminLogin(context.Background(), LoginRequest{
		Username: admin.Username,
		Password: password,
	})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.MemberRoleAdmin {
		t.Fatalf("expected admin role claim, got %s", claims.Role)
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	password := "player-secret"
	user := &models.User{
		ID:           uuid.New(),
		Username:     "highroller",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     true,
	}

	svc, _, sessions := buildTestService(t, user)

	login, err := svc.Login(context.Background(), LoginRequest{
		Username: user.Username,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	oldClaims, err := pkgAuth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	if err != nil {
		t.Fatalf("parse original token: %v", err)
	}
	newClaims, err := pkgAuth.ParseAccessToken(testJWTConfig(), refreshed.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if newClaims.UserID != user.ID || newClaims.Role != enums.MemberRolePlayer {
		t.Fatalf("identity claims changed across refresh")
	}
	if newClaims.ID == oldClaims.ID {
		t.Fatalf("expected a new jti after rotation")
	}
	if _, ok := sessions.sessions[oldClaims.ID]; ok {
		t.Fatalf("old session should have been dropped")
	}

	// Old pair is single-use.
	if _, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized on replayed refresh, got %v", err)
	}
}

func TestServiceRefreshRejectsMismatchedToken(t *testing.T) {
	password := "player-secret"
	user := &models.User{
		ID:           uuid.New(),
		Username:     "highroller",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     true,
	}

	svc, _, _ := buildTestService(t, user)

	login, err := svc.Login(context.Background(), LoginRequest{
		Username: user.Username,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "forged-token",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	password := "player-secret"
	user := &models.User{
		ID:           uuid.New(),
		Username:     "highroller",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     true,
	}

	svc, _, sessions := buildTestService(t, user)

	login, err := svc.Login(context.Background(), LoginRequest{
		Username: user.Username,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := sessions.sessions[claims.ID]; ok {
		t.Fatalf("session should be gone after logout")
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != claims.ID {
		t.Fatalf("expected revoke to be recorded")
	}
}
