package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"go-identity-platform/internal/core/auth"
	resp "go-identity-platform/internal/transport/http/response"
)

func newTestJWTer() *auth.JWTer {
	return &auth.JWTer{
		Secret:     []byte("test-secret"),
		Issuer:     "identity-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

// newAuthTestRouter /open 只挂 Authenticate，/protected 再叠 RequireAuth
func newAuthTestRouter(j *auth.JWTer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(j))

	echo := func(c *gin.Context) {
		if p, ok := auth.PrincipalFrom(c); ok {
			c.JSON(http.StatusOK, resp.OK(gin.H{"accountId": p.AccountID, "email": p.Email}))
			return
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{"accountId": ""}))
	}
	r.GET("/open", echo)
	r.GET("/protected", RequireAuth(), echo)
	return r
}

func doGet(t *testing.T, r *gin.Engine, path, authHeader string) (int, resp.Resp) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestAuthenticate_NoCredentialProceeds(t *testing.T) {
	j := newTestJWTer()
	r := newAuthTestRouter(j)

	// 无 Authorization 头：不拦截，handler 里拿不到 Principal
	status, body := doGet(t, r, "/open", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, resp.CodeOK, body.Code)

	// 前缀不对也视同无凭证
	status, body = doGet(t, r, "/open", "Basic dXNlcjpwYXNz")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, resp.CodeOK, body.Code)
}

func TestAuthenticate_InvalidTokenAborts(t *testing.T) {
	j := newTestJWTer()
	r := newAuthTestRouter(j)

	_, body := doGet(t, r, "/open", "Bearer not.a.jwt")
	require.Equal(t, resp.CodeUnauthorized, body.Code)

	// 错密钥签的 token 同样拒绝
	other := newTestJWTer()
	other.Secret = []byte("other-secret")
	tok, err := other.IssueAccessToken("acc-1", "a@x.com")
	require.NoError(t, err)
	_, body = doGet(t, r, "/open", "Bearer "+tok)
	require.Equal(t, resp.CodeUnauthorized, body.Code)
}

func TestAuthenticate_ValidTokenSetsPrincipal(t *testing.T) {
	j := newTestJWTer()
	r := newAuthTestRouter(j)

	tok, err := j.IssueAccessToken("acc-1", "a@x.com")
	require.NoError(t, err)

	status, body := doGet(t, r, "/protected", "Bearer "+tok)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, resp.CodeOK, body.Code)

	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "acc-1", data["accountId"])
	require.Equal(t, "a@x.com", data["email"])
}

func TestRequireAuth_RejectsAnonymous(t *testing.T) {
	j := newTestJWTer()
	r := newAuthTestRouter(j)

	_, body := doGet(t, r, "/protected", "")
	require.Equal(t, resp.CodeUnauthorized, body.Code)
}
