package auth

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/fleetstock-backend/internal/users"
	pkgAuth "github.com/angelmondragon/fleetstock-backend/pkg/auth"
	"github.com/angelmondragon/fleetstock-backend/pkg/auth/session"
	"github.com/angelmondragon/fleetstock-backend/pkg/config"
	"github.com/angelmondragon/fleetstock-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fleetstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fleetstock-backend/pkg/errors"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
)

type fakeOTP struct {
	verified map[string]enums.OtpPurpose
}

func (f *fakeOTP) ConsumeVerified(_ context.Context, _ *gorm.DB, email string, purpose enums.OtpPurpose) error {
	if got, ok := f.verified[email]; !ok || got != purpose {
		return pkgerrors.New(pkgerrors.CodeValidation, "email has not been verified")
	}
	delete(f.verified, email)
	return nil
}

type fakeSessions struct {
	active map[string]uuid.UUID
}

func (f *fakeSessions) Create(_ context.Context, userID uuid.UUID) (string, error) {
	id := session.NewSessionID()
	f.active[id] = userID
	return id, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, old string, userID uuid.UUID) (string, error) {
	if owner, ok := f.active[old]; !ok || owner != userID {
		return "", session.ErrInvalidRefreshToken
	}
	delete(f.active, old)
	return f.Create(ctx, userID)
}

func (f *fakeSessions) Revoke(_ context.Context, id string) error {
	delete(f.active, id)
	return nil
}

var testJWT = config.JWTConfig{
	AccessSecret:    "access-secret",
	RefreshSecret:   "refresh-secret",
	Issuer:          "fleetstock",
	AccessTokenTTL:  15 * time.Minute,
	RefreshTokenTTL: 168 * time.Hour,
}

type testEnv struct {
	svc      Service
	otp      *fakeOTP
	sessions *fakeSessions
	users    *users.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	client := dbtest.Open(t)
	env := &testEnv{
		otp:      &fakeOTP{verified: map[string]enums.OtpPurpose{}},
		sessions: &fakeSessions{active: map[string]uuid.UUID{}},
		users:    users.NewRepository(client.DB()),
	}
	svc, err := NewService(ServiceParams{
		Users:          env.users,
		OTP:            env.otp,
		SessionManager: env.sessions,
		Tx:             client,
		JWTConfig:      testJWT,
		Security:       config.SecurityConfig{PinBcryptCost: 4},
		Logger:         logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	env.svc = svc
	return env
}

func (e *testEnv) createAdmin(t *testing.T, email, pin string) *users.UserDTO {
	t.Helper()
	e.otp.verified[email] = enums.OtpPurposeCreateAdmin
	admin, err := e.svc.CreateAdmin(context.Background(), CreateAdminRequest{Email: email, Pin: pin})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return admin
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if !pkgerrors.IsCode(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestCheckUser(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.svc.CheckUser(context.Background(), true)
	if err != nil {
		t.Fatalf("check user: %v", err)
	}
	if resp.HasAdmin || !resp.HasRefreshToken {
		t.Fatalf("unexpected %+v", resp)
	}

	env.createAdmin(t, "captain@example.com", "123456")
	resp, err = env.svc.CheckUser(context.Background(), false)
	if err != nil {
		t.Fatalf("check user: %v", err)
	}
	if !resp.HasAdmin || resp.HasRefreshToken {
		t.Fatalf("unexpected %+v", resp)
	}
}

func TestCreateAdminRequiresVerifiedEmail(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.CreateAdmin(context.Background(), CreateAdminRequest{Email: "captain@example.com", Pin: "123456"})
	requireCode(t, err, pkgerrors.CodeValidation)

	exists, err := env.users.Exists(context.Background())
	if err != nil || exists {
		t.Fatalf("admin should not exist: %v %v", exists, err)
	}
}

func TestCreateAdminRejectsSecondAdminRegardlessOfPayload(t *testing.T) {
	env := newTestEnv(t)
	env.createAdmin(t, "captain@example.com", "123456")

	for _, req := range []CreateAdminRequest{
		{},
		{Email: "deck@example.com", Pin: "654321"},
		{Email: "captain@example.com", Pin: "bad"},
	} {
		env.otp.verified["deck@example.com"] = enums.OtpPurposeCreateAdmin
		_, err := env.svc.CreateAdmin(context.Background(), req)
		requireCode(t, err, pkgerrors.CodeValidation)
		if pkgerrors.As(err).Message() != adminExistsMessage {
			t.Fatalf("unexpected message %q", pkgerrors.As(err).Message())
		}
	}
}

func TestLoginRejectsMalformedPinBeforeLookup(t *testing.T) {
	env := newTestEnv(t)
	cases := []any{nil, "", float64(123456), "12345", "1234567", "12a456", " 123456"}
	for _, pin := range cases {
		_, err := env.svc.Login(context.Background(), LoginRequest{Pin: pin})
		requireCode(t, err, pkgerrors.CodeValidation)
	}

	_, err := env.svc.Login(context.Background(), LoginRequest{Pin: "123456"})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestLoginRefreshLogout(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "captain@example.com", "123456")
	ctx := context.Background()

	_, err := env.svc.Login(ctx, LoginRequest{Pin: "654321"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	resp, err := env.svc.Login(ctx, LoginRequest{Pin: "123456"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != admin.ID {
		t.Fatalf("access token for %s, want %s", claims.UserID, admin.ID)
	}
	if _, ok := env.sessions.active[claims.SessionID]; !ok {
		t.Fatalf("session %s not stored", claims.SessionID)
	}
	if resp.RefreshToken == "" || resp.RefreshExpiresAt.Sub(resp.AccessExpiresAt) <= 0 {
		t.Fatalf("refresh token must outlive access token")
	}

	refreshed, err := env.svc.Refresh(ctx, resp.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	_, err = env.svc.Refresh(ctx, resp.RefreshToken)
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	if err := env.svc.Logout(ctx, refreshed.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(env.sessions.active) != 0 {
		t.Fatalf("expected no active sessions, got %d", len(env.sessions.active))
	}
	_, err = env.svc.Refresh(ctx, refreshed.RefreshToken)
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	if err := env.svc.Logout(ctx, "not-a-jwt"); err != nil {
		t.Fatalf("logout with garbage cookie should succeed: %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	env.createAdmin(t, "captain@example.com", "123456")
	resp, err := env.svc.Login(context.Background(), LoginRequest{Pin: "123456"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	_, err = env.svc.Refresh(context.Background(), resp.AccessToken)
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = env.svc.Refresh(context.Background(), "")
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestResetPin(t *testing.T) {
	env := newTestEnv(t)
	env.createAdmin(t, "captain@example.com", "123456")
	ctx := context.Background()

	err := env.svc.ResetPin(ctx, ResetPinRequest{Email: "captain@example.com", Pin: "999999"})
	requireCode(t, err, pkgerrors.CodeValidation)

	err = env.svc.ResetPin(ctx, ResetPinRequest{Email: "deck@example.com", Pin: "999999"})
	requireCode(t, err, pkgerrors.CodeValidation)

	env.otp.verified["captain@example.com"] = enums.OtpPurposeResetPin
	if err := env.svc.ResetPin(ctx, ResetPinRequest{Email: "Captain@example.com", Pin: "999999"}); err != nil {
		t.Fatalf("reset pin: %v", err)
	}

	_, err = env.svc.Login(ctx, LoginRequest{Pin: "123456"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
	if _, err := env.svc.Login(ctx, LoginRequest{Pin: "999999"}); err != nil {
		t.Fatalf("login with new pin: %v", err)
	}
}

func TestResetEmail(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t, "captain@example.com", "123456")
	ctx := context.Background()

	_, err := env.svc.ResetEmail(ctx, admin.ID, ResetEmailRequest{Email: "captain@example.com"})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = env.svc.ResetEmail(ctx, admin.ID, ResetEmailRequest{Email: "deck@example.com"})
	requireCode(t, err, pkgerrors.CodeValidation)

	env.otp.verified["deck@example.com"] = enums.OtpPurposeResetEmail
	updated, err := env.svc.ResetEmail(ctx, admin.ID, ResetEmailRequest{Email: "deck@example.com"})
	if err != nil {
		t.Fatalf("reset email: %v", err)
	}
	if updated.Email != "deck@example.com" {
		t.Fatalf("email not updated: %s", updated.Email)
	}

	_, err = env.svc.ResetEmail(ctx, uuid.New(), ResetEmailRequest{Email: "x@example.com"})
	requireCode(t, err, pkgerrors.CodeNotFound)
}
