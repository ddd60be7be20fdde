// Package handlertest wires a gin engine the way the router does, for
// handler package tests.
package handlertest

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hivcare-api/internal/middleware"
	"github.com/jwalitptl/hivcare-api/pkg/auth"
	"github.com/jwalitptl/hivcare-api/pkg/validator"
)

const secret = "handler-test-secret"

var registerOnce sync.Once

// Env is an engine with the error middleware installed and an auth
// middleware that accepts tokens from Token.
type Env struct {
	Engine *gin.Engine
	API    *gin.RouterGroup
	Auth   *middleware.AuthMiddleware
	jwt    auth.JWTService
}

func New(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*playground.Validate)
		require.True(t, ok)
		require.NoError(t, validator.Register(v))
	})

	jwt := auth.NewJWTService(secret, "")
	engine := gin.New()
	engine.Use(middleware.ErrorHandler())
	return &Env{
		Engine: engine,
		API:    engine.Group("/api/v1"),
		Auth:   middleware.NewAuthMiddleware(jwt),
		jwt:    jwt,
	}
}

// Token returns a bearer header value for role.
func (e *Env) Token(t *testing.T, role string) string {
	t.Helper()
	token, err := e.jwt.Sign("test-user", role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

// Result is a recorded response with its decoded envelope.
type Result struct {
	Code    int
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Do serves one request. body is JSON-encoded unless it is nil or a string.
func (e *Env) Do(t *testing.T, method, path string, body interface{}, authorization string) Result {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	e.Engine.ServeHTTP(w, req)

	res := Result{Code: w.Code}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	}
	return res
}

// DecodeData unmarshals the envelope data into out.
func (r Result) DecodeData(t *testing.T, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, out))
}
