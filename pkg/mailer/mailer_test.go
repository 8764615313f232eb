package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/fleetstock-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/fleetstock-backend/pkg/errors"
)

func TestSendGridClientSend(t *testing.T) {
	var got sendGridRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client, err := NewSendGridClient("key-123", "noreply@fleet.test", WithBaseURL(server.URL))
	require.NoError(t, err)

	msg := OTPMessage("admin@fleet.test", "123456", "create-admin", 10*time.Minute)
	require.NoError(t, client.Send(context.Background(), msg))

	assert.Equal(t, "Bearer key-123", auth)
	assert.Equal(t, "noreply@fleet.test", got.From.Email)
	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "admin@fleet.test", got.Personalizations[0].To[0].Email)
	require.Len(t, got.Content, 2)
	assert.Contains(t, got.Content[0].Value, "123456")
	assert.Contains(t, got.Content[0].Value, "10 minutes")
}

func TestSendGridClientMapsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewSendGridClient("key", "noreply@fleet.test", WithBaseURL(server.URL))
	require.NoError(t, err)

	err = client.Send(context.Background(), OTPMessage("admin@fleet.test", "000001", "reset-pin", time.Minute))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	err = client.Send(context.Background(), Message{To: "not-an-email", Subject: "s", Text: "t"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestNewSendGridClientRequiresCredentials(t *testing.T) {
	_, err := NewSendGridClient("", "a@b.c")
	assert.Error(t, err)
	_, err = NewSendGridClient("key", " ")
	assert.Error(t, err)
}

func TestNewSelectsImplementation(t *testing.T) {
	dev := config.Config{App: config.AppConfig{Env: "development"}}
	m, err := New(dev, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)
	assert.NoError(t, m.Send(context.Background(), OTPMessage("a@b.co", "111111", "", time.Minute)))

	prod := config.Config{App: config.AppConfig{Env: "production"}}
	_, err = New(prod, nil)
	assert.Error(t, err)

	prod.Sendgrid = config.SendgridConfig{APIKey: "k", DefaultFrom: "noreply@fleet.test"}
	m, err = New(prod, nil)
	require.NoError(t, err)
	assert.IsType(t, &SendGridClient{}, m)
}
