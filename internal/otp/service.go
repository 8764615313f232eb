package otp

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/fleetstock-backend/internal/users"
	"github.com/angelmondragon/fleetstock-backend/pkg/config"
	"github.com/angelmondragon/fleetstock-backend/pkg/db"
	"github.com/angelmondragon/fleetstock-backend/pkg/db/models"
	"github.com/angelmondragon/fleetstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fleetstock-backend/pkg/errors"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
	"github.com/angelmondragon/fleetstock-backend/pkg/mailer"
	"github.com/angelmondragon/fleetstock-backend/pkg/security"
)

// MaxAttempts is how many wrong codes an OTP tolerates before a new one is needed.
const MaxAttempts = 5

const notVerifiedMessage = "email has not been verified"

var codePattern = regexp.MustCompile(`^\d{6}$`)

// Service issues and checks emailed one-time codes.
type Service interface {
	Send(ctx context.Context, req SendRequest) (*SendResponse, error)
	Verify(ctx context.Context, req VerifyRequest) error
	ConsumeVerified(ctx context.Context, tx *gorm.DB, email string, purpose enums.OtpPurpose) error
}

type adminReader interface {
	FindAdmin(ctx context.Context) (*models.User, error)
}

// ServiceParams bundles the dependencies of the OTP service.
type ServiceParams struct {
	Repo     *Repository
	Users    adminReader
	Mailer   mailer.Mailer
	Security config.SecurityConfig
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     *Repository
	users    adminReader
	mailer   mailer.Mailer
	security config.SecurityConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs the OTP service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("otp repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		users:    params.Users,
		mailer:   params.Mailer,
		security: params.Security,
		logg:     params.Logger,
		now:      func() time.Time { return now().UTC() },
	}, nil
}

func (s *service) ttl() time.Duration {
	if s.security.OTPTTL > 0 {
		return s.security.OTPTTL
	}
	return 10 * time.Minute
}

// Send generates a fresh code for the email, replacing any previous one, and
// mails it.
func (s *service) Send(ctx context.Context, req SendRequest) (*SendResponse, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	purpose, err := enums.ParseOtpPurpose(req.Purpose)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid otp purpose")
	}
	if err := s.checkPurpose(ctx, email, purpose); err != nil {
		return nil, err
	}

	code, err := security.GenerateOTP()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}
	hash, err := security.HashOTP(code, s.security)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash otp")
	}

	now := s.now()
	row := &models.Otp{
		Email:     email,
		CodeHash:  hash,
		Purpose:   purpose,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
	}
	if err := s.repo.Replace(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: store otp")
	}

	if err := s.mailer.Send(ctx, mailer.OTPMessage(email, code, string(purpose), s.ttl())); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send otp email")
	}

	s.logg.Info(s.logg.WithField(ctx, "otp_purpose", string(purpose)), "otp sent")
	return &SendResponse{Email: email, Purpose: string(purpose), ExpiresAt: row.ExpiresAt}, nil
}

func (s *service) checkPurpose(ctx context.Context, email string, purpose enums.OtpPurpose) error {
	admin, err := s.users.FindAdmin(ctx)
	if err != nil && !db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load admin")
	}
	if err != nil {
		admin = nil
	}

	switch purpose {
	case enums.OtpPurposeCreateAdmin:
		if admin != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "admin already exists")
		}
	case enums.OtpPurposeResetPin:
		if admin == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "admin not found")
		}
		if admin.Email != email {
			return pkgerrors.New(pkgerrors.CodeValidation, "email does not match the admin account")
		}
	case enums.OtpPurposeResetEmail:
		if admin == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "admin not found")
		}
		if admin.Email == email {
			return pkgerrors.New(pkgerrors.CodeValidation, "new email must differ from the current one")
		}
	}
	return nil
}

// Verify checks a code and marks the email verified. Verifying an already
// verified, unexpired code succeeds again.
func (s *service) Verify(ctx context.Context, req VerifyRequest) error {
	email := users.NormalizeEmail(req.Email)
	if !codePattern.MatchString(req.Code) {
		return pkgerrors.New(pkgerrors.CodeValidation, "code must be 6 digits")
	}

	row, err := s.repo.Find(ctx, email)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no code was sent to this email")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load otp")
	}
	if row.Expired(s.now()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "code has expired")
	}
	if row.Attempts >= MaxAttempts {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, request a new code")
	}

	ok, err := security.VerifyOTP(req.Code, row.CodeHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify otp")
	}
	if !ok {
		if err := s.repo.IncrementAttempts(ctx, email); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record otp attempt")
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid code")
	}
	if row.Verified {
		return nil
	}
	if err := s.repo.MarkVerified(ctx, email); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark otp verified")
	}
	s.logg.Info(s.logg.WithField(ctx, "otp_purpose", string(row.Purpose)), "otp verified")
	return nil
}

// ConsumeVerified deletes a verified code for purpose inside tx. It fails
// when the email was never verified for that purpose or the code expired.
func (s *service) ConsumeVerified(ctx context.Context, tx *gorm.DB, email string, purpose enums.OtpPurpose) error {
	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	email = users.NormalizeEmail(email)

	row, err := repo.Find(ctx, email)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeValidation, notVerifiedMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load otp")
	}
	if !row.Verified || row.Purpose != purpose || row.Expired(s.now()) {
		return pkgerrors.New(pkgerrors.CodeValidation, notVerifiedMessage)
	}
	if err := repo.Delete(ctx, email); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: consume otp")
	}
	return nil
}
