package otp

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/angelmondragon/fleetstock-backend/internal/users"
	"github.com/angelmondragon/fleetstock-backend/pkg/config"
	"github.com/angelmondragon/fleetstock-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fleetstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fleetstock-backend/pkg/errors"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
	"github.com/angelmondragon/fleetstock-backend/pkg/mailer"
)

type captureMailer struct {
	sent []mailer.Message
}

func (m *captureMailer) Send(_ context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

var sentCode = regexp.MustCompile(`\b(\d{6})\b`)

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	if len(m.sent) == 0 {
		t.Fatalf("no mail sent")
	}
	match := sentCode.FindStringSubmatch(m.sent[len(m.sent)-1].Text)
	if match == nil {
		t.Fatalf("no code in mail body %q", m.sent[len(m.sent)-1].Text)
	}
	return match[1]
}

type harness struct {
	svc   Service
	mail  *captureMailer
	users *users.Repository
	clock *time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	client := dbtest.Open(t)
	clock := time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	h := &harness{
		mail:  &captureMailer{},
		users: users.NewRepository(client.DB()),
		clock: &clock,
	}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(client.DB()),
		Users:    h.users,
		Mailer:   h.mail,
		Security: config.SecurityConfig{PinBcryptCost: 4, OTPTTL: 10 * time.Minute},
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}),
		Now:      func() time.Time { return *h.clock },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	h.svc = svc
	return h
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if !pkgerrors.IsCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestSendVerifyConsume(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	resp, err := h.svc.Send(ctx, SendRequest{Email: "Captain@Example.com"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if resp.Email != "captain@example.com" || resp.Purpose != string(enums.OtpPurposeCreateAdmin) {
		t.Fatalf("unexpected response %+v", resp)
	}
	if h.mail.sent[0].To != "captain@example.com" {
		t.Fatalf("mail sent to %q", h.mail.sent[0].To)
	}

	if err := h.svc.ConsumeVerified(ctx, nil, "captain@example.com", enums.OtpPurposeCreateAdmin); err == nil {
		t.Fatalf("expected consume to fail before verification")
	}

	if err := h.svc.Verify(ctx, VerifyRequest{Email: "captain@example.com", Code: h.mail.lastCode(t)}); err != nil {
		t.Fatalf("verify: %v", err)
	}

	expectCode(t, h.svc.ConsumeVerified(ctx, nil, "captain@example.com", enums.OtpPurposeResetPin), pkgerrors.CodeValidation)

	if err := h.svc.ConsumeVerified(ctx, nil, "captain@example.com", enums.OtpPurposeCreateAdmin); err != nil {
		t.Fatalf("consume: %v", err)
	}
	expectCode(t, h.svc.ConsumeVerified(ctx, nil, "captain@example.com", enums.OtpPurposeCreateAdmin), pkgerrors.CodeValidation)
}

func TestVerifyFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	expectCode(t, h.svc.Verify(ctx, VerifyRequest{Email: "nobody@example.com", Code: "123456"}), pkgerrors.CodeNotFound)

	if _, err := h.svc.Send(ctx, SendRequest{Email: "captain@example.com"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	code := h.mail.lastCode(t)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	expectCode(t, h.svc.Verify(ctx, VerifyRequest{Email: "captain@example.com", Code: "12ab56"}), pkgerrors.CodeValidation)
	expectCode(t, h.svc.Verify(ctx, VerifyRequest{Email: "captain@example.com", Code: wrong}), pkgerrors.CodeValidation)

	*h.clock = h.clock.Add(11 * time.Minute)
	expectCode(t, h.svc.Verify(ctx, VerifyRequest{Email: "captain@example.com", Code: code}), pkgerrors.CodeValidation)
}

func TestVerifyLocksAfterMaxAttempts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.svc.Send(ctx, SendRequest{Email: "captain@example.com"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	code := h.mail.lastCode(t)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	for i := 0; i < MaxAttempts; i++ {
		expectCode(t, h.svc.Verify(ctx, VerifyRequest{Email: "captain@example.com", Code: wrong}), pkgerrors.CodeValidation)
	}
	expectCode(t, h.svc.Verify(ctx, VerifyRequest{Email: "captain@example.com", Code: code}), pkgerrors.CodeRateLimit)

	if _, err := h.svc.Send(ctx, SendRequest{Email: "captain@example.com"}); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if err := h.svc.Verify(ctx, VerifyRequest{Email: "captain@example.com", Code: h.mail.lastCode(t)}); err != nil {
		t.Fatalf("verify after resend: %v", err)
	}
}

func TestSendPurposeRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Send(ctx, SendRequest{Email: "captain@example.com", Purpose: "reset-pin"})
	expectCode(t, err, pkgerrors.CodeNotFound)

	if _, err := h.users.CreateAdmin(ctx, users.CreateAdminDTO{Email: "captain@example.com", PinHash: "x"}); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	_, err = h.svc.Send(ctx, SendRequest{Email: "captain@example.com"})
	expectCode(t, err, pkgerrors.CodeValidation)

	_, err = h.svc.Send(ctx, SendRequest{Email: "deck@example.com", Purpose: "reset-pin"})
	expectCode(t, err, pkgerrors.CodeValidation)

	if _, err := h.svc.Send(ctx, SendRequest{Email: "captain@example.com", Purpose: "reset-pin"}); err != nil {
		t.Fatalf("reset-pin send: %v", err)
	}

	_, err = h.svc.Send(ctx, SendRequest{Email: "captain@example.com", Purpose: "reset-email"})
	expectCode(t, err, pkgerrors.CodeValidation)

	_, err = h.svc.Send(ctx, SendRequest{Email: "captain@example.com", Purpose: "bogus"})
	expectCode(t, err, pkgerrors.CodeValidation)
}
