package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/fleetstock-backend/internal/users"
	pkgAuth "github.com/angelmondragon/fleetstock-backend/pkg/auth"
	"github.com/angelmondragon/fleetstock-backend/pkg/auth/session"
	"github.com/angelmondragon/fleetstock-backend/pkg/config"
	"github.com/angelmondragon/fleetstock-backend/pkg/db"
	"github.com/angelmondragon/fleetstock-backend/pkg/db/models"
	"github.com/angelmondragon/fleetstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fleetstock-backend/pkg/errors"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
	"github.com/angelmondragon/fleetstock-backend/pkg/security"
)

const (
	pinRequiredMessage    = "PIN is required"
	pinShapeMessage       = "PIN must be exactly 6 digits"
	invalidPinMessage     = "invalid PIN"
	adminExistsMessage    = "admin already exists"
	adminNotFoundMessage  = "admin not found"
	invalidRefreshMessage = "invalid refresh token"
)

// Service defines the behavior needed by the user controller.
type Service interface {
	CheckUser(ctx context.Context, hasRefreshCookie bool) (*CheckUserResponse, error)
	CreateAdmin(ctx context.Context, req CreateAdminRequest) (*users.UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ResetPin(ctx context.Context, req ResetPinRequest) error
	ResetEmail(ctx context.Context, userID uuid.UUID, req ResetEmailRequest) (*users.UserDTO, error)
}

type sessionManager interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Rotate(ctx context.Context, oldSessionID string, userID uuid.UUID) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

type otpConsumer interface {
	ConsumeVerified(ctx context.Context, tx *gorm.DB, email string, purpose enums.OtpPurpose) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Users          *users.Repository
	OTP            otpConsumer
	SessionManager sessionManager
	Tx             txRunner
	JWTConfig      config.JWTConfig
	Security       config.SecurityConfig
	Logger         *logger.Logger
	Now            func() time.Time
}

type service struct {
	users    *users.Repository
	otp      otpConsumer
	session  sessionManager
	tx       txRunner
	jwtCfg   config.JWTConfig
	security config.SecurityConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.OTP == nil {
		return nil, fmt.Errorf("otp service is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:    params.Users,
		otp:      params.OTP,
		session:  params.SessionManager,
		tx:       params.Tx,
		jwtCfg:   params.JWTConfig,
		security: params.Security,
		logg:     params.Logger,
		now:      func() time.Time { return now().UTC() },
	}, nil
}

func (s *service) CheckUser(ctx context.Context, hasRefreshCookie bool) (*CheckUserResponse, error) {
	exists, err := s.users.Exists(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check admin")
	}
	return &CheckUserResponse{HasAdmin: exists, HasRefreshToken: hasRefreshCookie}, nil
}

// CreateAdmin registers the one admin. Any existing admin rejects the request
// before the payload is looked at.
func (s *service) CreateAdmin(ctx context.Context, req CreateAdminRequest) (*users.UserDTO, error) {
	exists, err := s.users.Exists(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check admin")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, adminExistsMessage)
	}

	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if err := validatePin(req.Pin); err != nil {
		return nil, err
	}
	hash, err := security.HashPin(req.Pin, s.security)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash pin")
	}

	var created *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.otp.ConsumeVerified(ctx, tx, email, enums.OtpPurposeCreateAdmin); err != nil {
			return err
		}
		user, err := s.users.WithTx(tx).CreateAdmin(ctx, users.CreateAdminDTO{Email: email, PinHash: hash})
		if err != nil {
			if errors.Is(err, users.ErrAdminExists) {
				return pkgerrors.New(pkgerrors.CodeValidation, adminExistsMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create admin")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, typed(err, "create admin")
	}

	s.logg.Info(s.logg.WithUserID(ctx, created.ID.String()), "admin created")
	return users.FromModel(created), nil
}

// Login checks the PIN shape before touching the stored hash.
func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	pin, err := pinFromAny(req.Pin)
	if err != nil {
		return nil, err
	}

	admin, err := s.users.FindAdmin(ctx)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, adminNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load admin")
	}

	ok, err := security.VerifyPin(pin, admin.PinHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify pin")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidPinMessage)
	}

	sessionID, err := s.session.Create(ctx, admin.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh session")
	}
	resp, err := s.mint(admin.ID, sessionID)
	if err != nil {
		return nil, err
	}
	resp.User = users.FromModel(admin)

	s.logg.Info(s.logg.WithSessionID(s.logg.WithUserID(ctx, admin.ID.String()), sessionID), "admin logged in")
	return resp, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The old
// session is replaced so a refresh token works once.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh token missing")
	}
	claims, err := pkgAuth.ParseRefreshToken(s.jwtCfg, refreshToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, invalidRefreshMessage)
	}

	admin, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidRefreshMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load admin")
	}

	sessionID, err := s.session.Rotate(ctx, claims.SessionID(), admin.ID)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidRefreshMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate refresh session")
	}
	resp, err := s.mint(admin.ID, sessionID)
	if err != nil {
		return nil, err
	}
	resp.User = users.FromModel(admin)
	return resp, nil
}

// Logout revokes the session behind the cookie when it can be parsed. An
// unparsable or missing cookie is not an error; the caller still clears it.
func (s *service) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	claims, err := pkgAuth.ParseRefreshToken(s.jwtCfg, refreshToken)
	if err != nil {
		return nil
	}
	if err := s.session.Revoke(ctx, claims.SessionID()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke refresh session")
	}
	s.logg.Info(s.logg.WithSessionID(ctx, claims.SessionID()), "admin logged out")
	return nil
}

// ResetPin sets a new PIN after the admin's email passed an OTP check.
func (s *service) ResetPin(ctx context.Context, req ResetPinRequest) error {
	if err := validatePin(req.Pin); err != nil {
		return err
	}
	admin, err := s.users.FindAdmin(ctx)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, adminNotFoundMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load admin")
	}
	email := users.NormalizeEmail(req.Email)
	if email != admin.Email {
		return pkgerrors.New(pkgerrors.CodeValidation, "email does not match the admin account")
	}
	hash, err := security.HashPin(req.Pin, s.security)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash pin")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.otp.ConsumeVerified(ctx, tx, email, enums.OtpPurposeResetPin); err != nil {
			return err
		}
		if err := s.users.WithTx(tx).UpdatePin(ctx, admin.ID, hash); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update pin")
		}
		return nil
	})
	if err != nil {
		return typed(err, "reset pin")
	}
	s.logg.Info(s.logg.WithUserID(ctx, admin.ID.String()), "admin pin reset")
	return nil
}

// ResetEmail moves the admin to a new, OTP-verified email.
func (s *service) ResetEmail(ctx context.Context, userID uuid.UUID, req ResetEmailRequest) (*users.UserDTO, error) {
	admin, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, adminNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load admin")
	}
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if email == admin.Email {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new email must differ from the current one")
	}

	var updated *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.otp.ConsumeVerified(ctx, tx, email, enums.OtpPurposeResetEmail); err != nil {
			return err
		}
		repo := s.users.WithTx(tx)
		if err := repo.UpdateEmail(ctx, admin.ID, email); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update email")
		}
		user, err := repo.FindByID(ctx, admin.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload admin")
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, typed(err, "reset email")
	}
	s.logg.Info(s.logg.WithUserID(ctx, admin.ID.String()), "admin email changed")
	return users.FromModel(updated), nil
}

func (s *service) mint(userID uuid.UUID, sessionID string) (*TokenResponse, error) {
	now := s.now()
	access, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{UserID: userID, SessionID: sessionID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refresh, err := pkgAuth.MintRefreshToken(s.jwtCfg, now, pkgAuth.RefreshTokenPayload{UserID: userID, SessionID: sessionID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint refresh token")
	}
	return &TokenResponse{
		AccessToken:      access,
		AccessExpiresAt:  now.Add(s.jwtCfg.AccessTokenTTL),
		RefreshToken:     refresh,
		RefreshExpiresAt: now.Add(s.jwtCfg.RefreshTokenTTL),
	}, nil
}

func pinFromAny(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", pkgerrors.New(pkgerrors.CodeValidation, pinRequiredMessage)
	case string:
		if err := validatePin(v); err != nil {
			return "", err
		}
		return v, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "PIN must be a string")
	}
}

func validatePin(pin string) error {
	if pin == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, pinRequiredMessage)
	}
	if !security.IsValidPin(pin) {
		return pkgerrors.New(pkgerrors.CodeValidation, pinShapeMessage)
	}
	return nil
}

func typed(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
