package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func login(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestLoginHandler(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAuthService("test-key", time.Hour)
	h := LoginHandler(svc, Accounts{AdminUser: "admin", AdminPassHash: string(hash), DevLogin: true})

	rr := login(t, h, `{"username":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "admin", out["role"])
	c, err := svc.Parse(out["access_token"])
	require.NoError(t, err)
	assert.Equal(t, "admin", c.Sub)

	assert.Equal(t, http.StatusUnauthorized, login(t, h, `{"username":"admin","password":"admin"}`).Code)
	assert.Equal(t, http.StatusOK, login(t, h, `{"username":"ana","password":"ana","role":"student"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, login(t, h, `{"username":"ana","password":"nope","role":"student"}`).Code)
	assert.Equal(t, http.StatusBadRequest, login(t, h, `{"username":"ana","password":"ana","role":"janitor"}`).Code)
	assert.Equal(t, http.StatusBadRequest, login(t, h, `{"username":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, login(t, h, `nope`).Code)

	strict := LoginHandler(svc, Accounts{AdminUser: "admin", AdminPassHash: string(hash)})
	assert.Equal(t, http.StatusUnauthorized, login(t, strict, `{"username":"ana","password":"ana","role":"student"}`).Code)
}

func TestJWTMiddlewareSetsCaller(t *testing.T) {
	svc := NewAuthService("test-key", time.Hour)
	var gotSub, gotRole string
	h := JWTMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub, gotRole, _ = Caller(r.Context())
	}))

	tok, err := svc.IssueJWT("ana", "student")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ana", gotSub)
	assert.Equal(t, "student", gotRole)

	for _, hdr := range []string{"", "Bearer garbage", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", hdr)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, hdr)
	}
}

func TestParseRejectsForeignTokens(t *testing.T) {
	svc := NewAuthService("test-key", time.Hour)

	other, err := NewAuthService("other-key", time.Hour).IssueJWT("ana", "student")
	require.NoError(t, err)
	_, err = svc.Parse(other)
	assert.Error(t, err)

	wrongIssuer := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Sub: "ana", Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"}})
	s, err := wrongIssuer.SignedString([]byte("test-key"))
	require.NoError(t, err)
	_, err = svc.Parse(s)
	assert.Error(t, err)
}
