package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const authTestSecret = "drive-secret"

// issueCookie выписывает auth-cookie и прикрепляет её к запросу.
func issueCookie(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	assert.NoError(t, SetLoginCookie(rr, userID, secret))
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

func TestWithAuth_CookieCarriesUserID(t *testing.T) {
	var gotID int64
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/drive", nil)
	issueCookie(t, req, 42, authTestSecret)

	rr := httptest.NewRecorder()
	WithAuth(authTestSecret)(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, gotOK)
	assert.Equal(t, int64(42), gotID)
}

func TestWithAuth_AnonymousWithoutCookie(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := GetUserIDFromContext(r.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/drive", nil)
	WithAuth(authTestSecret)(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWithAuth_ForeignSecretRejected(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// токен подписан чужим секретом, пользователь остаётся анонимом
		_, ok := GetUserIDFromContext(r.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/drive", nil)
	issueCookie(t, req, 42, "other-secret")

	rr := httptest.NewRecorder()
	WithAuth(authTestSecret)(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
