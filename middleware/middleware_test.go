package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	tokens map[string]uint
}

func (s stubVerifier) VerifyAccess(token string) (uint, error) {
	if id, ok := s.tokens[token]; ok {
		return id, nil
	}
	return 0, errors.New("invalid token")
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newAuthRouter() *gin.Engine {
	router := gin.New()
	verifier := stubVerifier{tokens: map[string]uint{"good": 5}}
	router.GET("/protected", RequireAccessToken(verifier, discard), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.MustGet(UserIDKey)})
	})
	return router
}

func doRequest(router http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequireAccessToken(t *testing.T) {
	router := newAuthRouter()

	tests := []struct {
		name   string
		header string
		status int
		body   map[string]interface{}
	}{
		{"missing header", "", http.StatusUnauthorized, map[string]interface{}{"error": "Authorization header missing"}},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, map[string]interface{}{"error": "access token expired"}},
		{"missing scheme", "good", http.StatusUnauthorized, map[string]interface{}{"error": "access token expired"}},
		{"valid token", "Bearer good", http.StatusOK, map[string]interface{}{"userID": float64(5)}},
		{"lower case scheme", "bearer good", http.StatusOK, map[string]interface{}{"userID": float64(5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := doRequest(router, http.MethodGet, "/protected", headers)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, decode(t, w))
		})
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("  Bearer   abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken("Bearer a b"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	w := doRequest(router, http.MethodGet, "/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	requestID := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, requestID)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http request", entry["msg"])
	assert.Equal(t, requestID, entry["request_id"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/ping", entry["path"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])

	w = doRequest(router, http.MethodGet, "/ping", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS("https://shop.example.com"))
	router.POST("/signup", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := doRequest(router, http.MethodOptions, "/signup", map[string]string{"Origin": "https://shop.example.com"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = doRequest(router, http.MethodPost, "/signup", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardWithoutCredentials(t *testing.T) {
	router := gin.New()
	router.Use(CORS("*"))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := doRequest(router, http.MethodGet, "/", map[string]string{"Origin": "https://evil.example.com"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	w = doRequest(router, http.MethodOptions, "/", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}
