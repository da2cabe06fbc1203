package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaclinic/booking-service/internal/domain"
)

func runAuth(t *testing.T, headers map[string]string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var captured *http.Request
	handler := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, captured
}

func TestAuthRequiresUserID(t *testing.T) {
	rec, _ := runAuth(t, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = runAuth(t, map[string]string{HeaderUserID: "not-a-number"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = runAuth(t, map[string]string{HeaderUserID: "-5"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthPopulatesContext(t *testing.T) {
	rec, captured := runAuth(t, map[string]string{HeaderUserID: "42"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)

	userID, ok := UserID(captured.Context())
	require.True(t, ok)
	assert.Equal(t, int64(42), userID)
	assert.False(t, IsStaff(captured.Context()))
}

func TestAuthStaffHeader(t *testing.T) {
	_, captured := runAuth(t, map[string]string{HeaderUserID: "42", HeaderStaff: "true"})
	require.NotNil(t, captured)
	assert.True(t, IsStaff(captured.Context()))
}

func TestActor(t *testing.T) {
	t.Run("patient acts as themselves", func(t *testing.T) {
		_, captured := runAuth(t, map[string]string{HeaderUserID: "42"})
		require.NotNil(t, captured)

		other := int64(7)
		actor, ok := Actor(captured.Context(), &other)
		require.True(t, ok)

		// onBehalfOf игнорируется для обычного пациента
		assert.Equal(t, domain.BookingActor{EffectivePatientID: 42}, actor)
	})

	t.Run("staff acts on behalf of patient", func(t *testing.T) {
		_, captured := runAuth(t, map[string]string{HeaderUserID: "42", HeaderStaff: "true"})
		require.NotNil(t, captured)

		patient := int64(7)
		actor, ok := Actor(captured.Context(), &patient)
		require.True(t, ok)

		assert.Equal(t, int64(7), actor.EffectivePatientID)
		assert.True(t, actor.IsStaffAssisted)
	})

	t.Run("unauthenticated context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, ok := Actor(req.Context(), nil)
		assert.False(t, ok)
	})
}
