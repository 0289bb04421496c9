package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/awareness-backend/internal/observability"
	"github.com/yungbote/awareness-backend/internal/platform/ctxutil"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
	"github.com/yungbote/awareness-backend/internal/services"
)

type stubAuth struct {
	services.AuthService
	tokens map[string]ctxutil.RequestData
}

func (s stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	rd, ok := s.tokens[token]
	if !ok {
		return ctx, errors.New("unknown token")
	}
	rd.TokenString = token
	return ctxutil.WithRequestData(ctx, &rd), nil
}


func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), stubAuth{tokens: map[string]ctxutil.RequestData{
		"employee-token": {UserID: uuid.New(), Role: "employee"},
		"admin-token":    {UserID: uuid.New(), Role: "admin"},
	}})
	r := gin.New()
	r.GET("/me", am.RequireAuth(), func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.String(http.StatusOK, rd.Role)
	})
	r.GET("/admin", am.RequireAuth(), am.RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequireAuthAndRole(t *testing.T) {
	r := newAuthRouter()
	cases := []struct {
		name   string
		path   string
		header string
		query  string
		want   int
	}{
		{"missing token", "/me", "", "", http.StatusUnauthorized},
		{"unknown token", "/me", "Bearer nope", "", http.StatusUnauthorized},
		{"bearer header", "/me", "Bearer employee-token", "", http.StatusOK},
		{"query token", "/me", "", "employee-token", http.StatusOK},
		{"employee on admin route", "/admin", "Bearer employee-token", "", http.StatusForbidden},
		{"admin on admin route", "/admin", "Bearer admin-token", "", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := tc.path
			if tc.query != "" {
				target += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status: got %d want %d (body %s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestAttachTraceContextEchoesIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") != "req-123" {
		t.Fatalf("request id not echoed: %q", rec.Header().Get("X-Request-Id"))
	}
	if seen == nil || seen.RequestID != "req-123" || seen.TraceID == "" {
		t.Fatalf("unexpected trace data: %+v", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", strings.Repeat("a", 500))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); len(got) != 36 {
		t.Fatalf("oversized request id should be replaced, got %q", got)
	}
}

func TestMetricsMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.New()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/quiz/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quiz/abc", nil))

	var sb strings.Builder
	if err := m.WritePrometheus(&sb); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	want := `aw_api_requests_total{method="GET",route="/api/quiz/:id",status="418"} 1`
	if !strings.Contains(sb.String(), want) {
		t.Fatalf("missing %q", want)
	}
}
