package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?month=3&year=abc&big=13", nil)

	month, err := ParseQueryInt(r, "month", 1, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 3, month)

	_, err = ParseQueryInt(r, "year", 2026, 2000, 2100)
	assert.Error(t, err)

	_, err = ParseQueryInt(r, "big", 1, 1, 12)
	assert.Error(t, err)

	def, err := ParseQueryInt(r, "missing", 7, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 7, def)
}

func TestParseQueryUUID(t *testing.T) {
	id := uuid.New()
	r := httptest.NewRequest(http.MethodGet, "/?fleetId="+id.String()+"&all=all&bad=nope", nil)

	got, err := ParseQueryUUID(r, "fleetId")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)

	got, err = ParseQueryUUID(r, "all")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseQueryUUID(r, "bad")
	assert.Error(t, err)
}

func TestURLParamUUID(t *testing.T) {
	id := uuid.New()
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id.String())
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	got, err := URLParamUUID(r, "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = URLParamUUID(r, "other")
	assert.Error(t, err)
}
