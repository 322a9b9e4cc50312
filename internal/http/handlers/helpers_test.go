package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"roadbook/internal/http/middleware"
	"roadbook/internal/infra"
)

type stubVerifier struct {
	uid  string
	role string
}

func (s stubVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.FirebaseToken, error) {
	claims := map[string]interface{}{}
	if s.role != "" {
		claims["role"] = s.role
	}
	return &infra.FirebaseToken{UID: s.uid, Claims: claims}, nil
}

func newEngine(uid, role string) (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("", middleware.OptionalAuth(stubVerifier{uid: uid, role: role}))
	return r, g
}

func doRequest(r *gin.Engine, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer token")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}
