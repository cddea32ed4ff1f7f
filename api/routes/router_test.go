package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shieldscan/shield-backend/internal/users"
	"github.com/shieldscan/shield-backend/pkg/config"
	"github.com/shieldscan/shield-backend/pkg/enums"
	pkgerrors "github.com/shieldscan/shield-backend/pkg/errors"
	"github.com/shieldscan/shield-backend/pkg/metrics"
	"github.com/shieldscan/shield-backend/pkg/pagination"
)

type routeStubService struct {
	users.Service
	listCalled     bool
	getID          uuid.UUID
	resetEmail     string
	activityCalled bool
}

func (s *routeStubService) List(context.Context, users.ListFilter) (*users.UserListDTO, error) {
	s.listCalled = true
	return &users.UserListDTO{Users: []users.UserDTO{}, Pagination: pagination.Page{Page: 1, Limit: 50, TotalPages: 1}}, nil
}

func (s *routeStubService) Get(_ context.Context, id uuid.UUID) (*users.UserDTO, error) {
	s.getID = id
	return &users.UserDTO{ID: id, Email: "dev@example.com", Role: enums.UserRoleDeveloper, Status: enums.UserStatusActive}, nil
}

func (s *routeStubService) Roles(context.Context) ([]users.RoleDTO, error) {
	return users.Roles(), nil
}

func (s *routeStubService) Stats(context.Context) (*users.StatsDTO, error) {
	return &users.StatsDTO{ByRole: map[string]int64{}}, nil
}

func (s *routeStubService) Activity(context.Context, uuid.UUID, int) ([]users.ActivityEntryDTO, error) {
	s.activityCalled = true
	return []users.ActivityEntryDTO{}, nil
}

func (s *routeStubService) RequestPasswordReset(_ context.Context, email string) (*users.PasswordResetResultDTO, error) {
	s.resetEmail = email
	return &users.PasswordResetResultDTO{Status: "sent", Email: email}, nil
}

type stubDBPinger struct{ err error }

func (p stubDBPinger) Ping(context.Context) error { return p.err }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return cfg
}

func newTestRouter(t *testing.T, svc users.Service, dbErr error) http.Handler {
	t.Helper()
	registry := prometheus.NewRegistry()
	return NewRouter(
		testConfig(),
		nil,
		stubDBPinger{err: dbErr},
		nil,
		registry,
		metrics.NewHTTPMetrics(registry),
		svc,
	)
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(t, &routeStubService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Shield-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}
}

func TestRouterHealthReadyReportsDBFailure(t *testing.T) {
	router := newTestRouter(t, &routeStubService{}, pkgerrors.New(pkgerrors.CodeDependency, "down"))

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRouterUsersListRoute(t *testing.T) {
	svc := &routeStubService{}
	router := newTestRouter(t, svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?page=1&limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !svc.listCalled {
		t.Fatal("list handler was not reached")
	}
}

func TestRouterUserIDParamBinding(t *testing.T) {
	svc := &routeStubService{}
	router := newTestRouter(t, svc, nil)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+id.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.getID != id {
		t.Fatalf("expected id %s bound from path, got %s", id, svc.getID)
	}
}

func TestRouterRolesNotShadowedByParam(t *testing.T) {
	svc := &routeStubService{}
	router := newTestRouter(t, svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/roles", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "SysAdmin") {
		t.Fatalf("expected role catalog, got %s", rec.Body.String())
	}
	if svc.getID != uuid.Nil {
		t.Fatal("roles request fell through to the user fetch handler")
	}
}

func TestRouterPasswordResetRoute(t *testing.T) {
	svc := &routeStubService{}
	router := newTestRouter(t, svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/password-reset/request", strings.NewReader(`{"email":"dev@example.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.resetEmail != "dev@example.com" {
		t.Fatalf("expected reset email recorded, got %q", svc.resetEmail)
	}
}

func TestRouterActivityRoute(t *testing.T) {
	svc := &routeStubService{}
	router := newTestRouter(t, svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+uuid.NewString()+"/activity", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !svc.activityCalled {
		t.Fatal("activity handler was not reached")
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	svc := &routeStubService{}
	router := newTestRouter(t, svc, nil)

	warm := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	router.ServeHTTP(httptest.NewRecorder(), warm)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected request counter in exposition, got %s", rec.Body.String())
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t, &routeStubService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouterRateLimitDisabledByZeroWindow(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.ResetWindow = 0 * time.Second

	svc := &routeStubService{}
	registry := prometheus.NewRegistry()
	router := NewRouter(cfg, nil, stubDBPinger{}, nil, registry, metrics.NewHTTPMetrics(registry), svc)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/password-reset/request", strings.NewReader(`{"email":"dev@example.com"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
}
