package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ansysan/task-management-system/internal/core/auth"
	"github.com/ansysan/task-management-system/internal/core/domain"
	"github.com/ansysan/task-management-system/internal/core/service"
	"github.com/ansysan/task-management-system/internal/infrastructure/db/memory"
	"github.com/ansysan/task-management-system/internal/infrastructure/http/handlers"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testApp struct {
	e     *echo.Echo
	repos *memory.Repositories
	codec *auth.Codec
	clock *testClock
}

func newTestApp(t *testing.T, ttlSeconds int) *testApp {
	t.Helper()
	log := zerolog.Nop()
	clock := &testClock{now: time.Now().Truncate(time.Second)}
	codec, err := auth.NewCodec(testSecret, ttlSeconds, auth.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	repos := memory.NewRepositories()
	hasher := &auth.Hasher{Cost: bcrypt.MinCost}
	resolver := service.NewIdentityResolver(repos.Users, nil, log)

	e := NewRouter(Deps{
		Auth:     service.NewAuthService(repos.Users, hasher, codec, nil, log),
		Users:    service.NewUserService(repos.Users, hasher, resolver, log),
		Admin:    service.NewAdminService(repos.Users, resolver, log),
		Tasks:    service.NewTaskService(repos.Tasks, repos.Comments, repos.Users, log),
		Comments: service.NewCommentService(repos.Comments, repos.Tasks, log),
		Tokens:   codec,
		Resolver: resolver,
		Checks:   map[string]handlers.Checker{"memory": func(context.Context) error { return nil }},
		Logger:   log,
		Registry: prometheus.NewRegistry(),
	})
	return &testApp{e: e, repos: repos, codec: codec, clock: clock}
}

func (a *testApp) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return v
}

func (a *testApp) register(t *testing.T, name, email, password string) authBody {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/register", "",
		`{"name":"`+name+`","email":"`+email+`","password":"`+password+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", email, rec.Code, rec.Body.String())
	}
	return decode[authBody](t, rec)
}

func (a *testApp) login(t *testing.T, email, password string) authBody {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", email, rec.Code, rec.Body.String())
	}
	return decode[authBody](t, rec)
}

// promote flips a stored user to ADMIN and returns a fresh token for them.
func (a *testApp) promote(t *testing.T, email, password string) authBody {
	t.Helper()
	ctx := context.Background()
	u, err := a.repos.Users.FindByEmail(ctx, email)
	if err != nil {
		t.Fatalf("find %s: %v", email, err)
	}
	u.Role = domain.RoleAdmin
	if _, err := a.repos.Users.Save(ctx, u); err != nil {
		t.Fatalf("save %s: %v", email, err)
	}
	return a.login(t, email, password)
}

func TestRouter_RegisterIssuesUserToken(t *testing.T) {
	app := newTestApp(t, 3600)

	rec := app.do(t, http.MethodPost, "/auth/register", "", `{"name":"Alice","email":"alice@x.com","password":"pw1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/users/alice@x.com" {
		t.Fatalf("unexpected Location %q", loc)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response leaks password data: %s", rec.Body.String())
	}

	body := decode[authBody](t, rec)
	claims, err := app.codec.Decode(body.Token)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if claims.Subject != "alice@x.com" {
		t.Fatalf("expected subject alice@x.com, got %s", claims.Subject)
	}
	if len(claims.Authorities) != 1 || claims.Authorities[0] != "USER" {
		t.Fatalf("expected USER authority, got %v", claims.Authorities)
	}

	dup := app.do(t, http.MethodPost, "/auth/register", "", `{"name":"Alice","email":"alice@x.com","password":"pw2"}`)
	if dup.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", dup.Code)
	}
}

func TestRouter_Login(t *testing.T) {
	app := newTestApp(t, 3600)
	app.register(t, "Alice", "alice@x.com", "pw1")

	body := app.login(t, "alice@x.com", "pw1")
	if body.Token == "" {
		t.Fatalf("expected a token")
	}

	cases := []struct {
		name string
		body string
		want int
	}{
		{"wrong password", `{"email":"alice@x.com","password":"nope"}`, http.StatusUnauthorized},
		{"unknown email", `{"email":"bob@x.com","password":"pw1"}`, http.StatusNotFound},
		{"invalid email", `{"email":"not-an-email","password":"pw1"}`, http.StatusBadRequest},
		{"malformed json", `{"email":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := app.do(t, http.MethodPost, "/auth/login", "", tc.body)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_RoleGuards(t *testing.T) {
	app := newTestApp(t, 3600)
	alice := app.register(t, "Alice", "alice@x.com", "pw1")

	if rec := app.do(t, http.MethodGet, "/tasks", alice.Token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("USER on ADMIN route: expected 403, got %d", rec.Code)
	}
	if rec := app.do(t, http.MethodGet, "/admin/users", alice.Token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("USER on admin listing: expected 403, got %d", rec.Code)
	}
	if rec := app.do(t, http.MethodGet, "/tasks/assigned", alice.Token, ""); rec.Code != http.StatusOK {
		t.Fatalf("USER on USER route: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := app.do(t, http.MethodGet, "/tasks/assigned", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}
	if rec := app.do(t, http.MethodGet, "/tasks/assigned", "garbage", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", rec.Code)
	}
}

func TestRouter_ExpiredTokenIsUnauthenticated(t *testing.T) {
	app := newTestApp(t, 0)
	app.register(t, "Alice", "alice@x.com", "pw1")

	token, err := app.codec.Issue("alice@x.com", []string{"USER"}, app.clock.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if rec := app.do(t, http.MethodGet, "/users/me", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("fresh token: expected 200, got %d", rec.Code)
	}

	app.clock.Advance(time.Second)
	for _, path := range []string{"/users/me", "/tasks/assigned", "/tasks"} {
		if rec := app.do(t, http.MethodGet, path, token, ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s with expired token: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestRouter_DeletedUserTokenIsUnauthenticated(t *testing.T) {
	app := newTestApp(t, 3600)
	alice := app.register(t, "Alice", "alice@x.com", "pw1")

	if rec := app.do(t, http.MethodDelete, "/users/me", alice.Token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete me: expected 204, got %d", rec.Code)
	}
	if rec := app.do(t, http.MethodGet, "/users/me", alice.Token, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("token of deleted user: expected 401, got %d", rec.Code)
	}
}

func TestRouter_TaskWorkflow(t *testing.T) {
	app := newTestApp(t, 3600)
	app.register(t, "Root", "root@x.com", "rootpw")
	admin := app.promote(t, "root@x.com", "rootpw")
	pat := app.register(t, "Pat", "pat@x.com", "patpw")
	sam := app.register(t, "Sam", "sam@x.com", "sampw")

	rec := app.do(t, http.MethodPost, "/tasks", admin.Token,
		`{"header":"Write report","description":"Q3","priority":"HIGH","performer_id":"`+pat.User.ID+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	task := decode[map[string]any](t, rec)
	taskID, _ := task["id"].(string)
	if task["status"] != "PENDING" || task["author_id"] != admin.User.ID {
		t.Fatalf("unexpected task %v", task)
	}

	if rec := app.do(t, http.MethodPost, "/tasks", admin.Token, `{"header":"x","priority":"URGENT","performer_id":"p"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad priority: expected 400, got %d", rec.Code)
	}

	assigned := decode[map[string]any](t, app.do(t, http.MethodGet, "/tasks/assigned", pat.Token, ""))
	if assigned["total"] != float64(1) {
		t.Fatalf("expected one assigned task, got %v", assigned)
	}

	status := `{"status":"PROGRESS"}`
	if rec := app.do(t, http.MethodPatch, "/tasks/"+taskID+"/status", sam.Token, status); rec.Code != http.StatusForbidden {
		t.Fatalf("non-performer status change: expected 403, got %d", rec.Code)
	}
	if rec := app.do(t, http.MethodPatch, "/tasks/"+taskID+"/status", pat.Token, status); rec.Code != http.StatusOK {
		t.Fatalf("performer status change: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.do(t, http.MethodPost, "/comments", pat.Token, `{"task_id":"`+taskID+`","text":"on it"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	commentID, _ := decode[map[string]any](t, rec)["id"].(string)

	if rec := app.do(t, http.MethodPut, "/comments/"+commentID, sam.Token, `{"text":"mine now"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign comment edit: expected 403, got %d", rec.Code)
	}

	list := decode[[]map[string]any](t, app.do(t, http.MethodGet, "/tasks/"+taskID+"/comments", admin.Token, ""))
	if len(list) != 1 || list[0]["text"] != "on it" {
		t.Fatalf("unexpected comments %v", list)
	}

	page := decode[map[string]any](t, app.do(t, http.MethodGet, "/tasks?offset=0&limit=10", admin.Token, ""))
	if page["total"] != float64(1) || page["limit"] != float64(10) {
		t.Fatalf("unexpected page %v", page)
	}
	if rec := app.do(t, http.MethodGet, "/tasks?limit=1000", admin.Token, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized limit: expected 400, got %d", rec.Code)
	}

	if rec := app.do(t, http.MethodDelete, "/tasks/"+taskID, admin.Token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete task: expected 204, got %d", rec.Code)
	}
	if rec := app.do(t, http.MethodGet, "/tasks/"+taskID+"/comments", admin.Token, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("comments of deleted task: expected 404, got %d", rec.Code)
	}
}

func TestRouter_AdminRoleChangeAppliesAfterLogin(t *testing.T) {
	app := newTestApp(t, 3600)
	app.register(t, "Root", "root@x.com", "rootpw")
	admin := app.promote(t, "root@x.com", "rootpw")
	bob := app.register(t, "Bob", "bob@x.com", "bobpw")

	rec := app.do(t, http.MethodPost, "/admin/users/"+bob.User.ID+"/role/admin", admin.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("grant admin: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if role := decode[map[string]any](t, rec)["role"]; role != "ADMIN" {
		t.Fatalf("expected ADMIN, got %v", role)
	}

	// The old token still carries USER.
	if rec := app.do(t, http.MethodGet, "/tasks", bob.Token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("stale token: expected 403, got %d", rec.Code)
	}
	fresh := app.login(t, "bob@x.com", "bobpw")
	if rec := app.do(t, http.MethodGet, "/tasks", fresh.Token, ""); rec.Code != http.StatusOK {
		t.Fatalf("fresh token: expected 200, got %d", rec.Code)
	}

	if rec := app.do(t, http.MethodPost, "/admin/users/missing/role/user", admin.Token, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user: expected 404, got %d", rec.Code)
	}
}

func TestRouter_OpsEndpoints(t *testing.T) {
	app := newTestApp(t, 3600)

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		if rec := app.do(t, http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
