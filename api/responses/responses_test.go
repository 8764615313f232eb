package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/fleetstock-backend/pkg/errors"
	"github.com/angelmondragon/fleetstock-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if !body.Success {
		t.Fatalf("expected success flag")
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteMessageCarriesMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteMessage(w, "No changes were made", nil)

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "No changes were made" || !body.Success {
		t.Fatalf("unexpected envelope %+v", body)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot exceed 5").
		WithDetails(map[string]any{"maxAllowed": 5})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Success {
		t.Fatalf("success flag must be false")
	}
	if body.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Code)
	}
	if body.Message != "quantity cannot exceed 5" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if body.Details == nil {
		t.Fatalf("expected details in public payload")
	}
	if body.Error != "" {
		t.Fatalf("raw error must not leak on 4xx")
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", body.Code)
	}
	if body.Message != "Internal server error" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if body.Error != "" {
		t.Fatalf("raw error should be hidden without the detail flag")
	}
}

func TestWriteErrorExposesDetailWhenFlagged(t *testing.T) {
	w := httptest.NewRecorder()
	ctx := WithErrorDetail(context.Background())
	WriteError(ctx, nil, w, errors.New("boom"))

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == "" {
		t.Fatalf("expected raw error text in development mode")
	}
}

func TestWriteErrorDetailCarriesWrappedCause(t *testing.T) {
	w := httptest.NewRecorder()
	ctx := WithErrorDetail(context.Background())
	cause := fmt.Errorf("select order_items: %w", errors.New("connection refused"))
	WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "db: list current orders"))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "db: list current orders: select order_items: connection refused"
	if body.Error != want {
		t.Fatalf("expected detail %q, got %q", want, body.Error)
	}
}

func TestWriteErrorDetailForUntypedError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(WithErrorDetail(context.Background()), nil, w, errors.New("boom"))

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "unexpected error: boom" {
		t.Fatalf("unexpected detail %q", body.Error)
	}
}
