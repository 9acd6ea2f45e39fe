package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aadi90392/yoga-master-full/config"
	"github.com/aadi90392/yoga-master-full/internal/container"
	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
	"github.com/aadi90392/yoga-master-full/internal/infrastructure/memory"
	"github.com/aadi90392/yoga-master-full/internal/infrastructure/payment"
	"github.com/aadi90392/yoga-master-full/internal/interface/middleware"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
	"github.com/aadi90392/yoga-master-full/pkg/validation"
)

type envelope struct {
	Status    int             `json:"status"`
	RequestID string          `json:"request_id"`
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Error     map[string]any  `json:"error"`
}

type testServer struct {
	engine  *gin.Engine
	store   repo.Store
	jwt     *helpers.JWTManager
	gateway *payment.SandboxGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	cfg := config.Load()
	cfg.DebugMetricsEnabled = true
	store := memory.NewStore()
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	gateway := payment.NewSandboxGateway()

	container.SetConfig(cfg)
	container.SetLogger(helpers.NopLogger())
	container.SetStore(store)
	container.SetAuditRepo(&memory.AuditRepository{})
	container.SetJWT(jwt)
	container.SetPaymentGateway(gateway)
	container.SetRedis(nil)
	container.SetES(nil)
	container.SetRabbitPub(nil)
	container.SetGCS(nil)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	reg := NewRegistry(engine, nil)
	InitModules(reg)
	reg.RegisterAll()
	return &testServer{engine: engine, store: store, jwt: jwt, gateway: gateway}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (s *testServer) user(t *testing.T, email string, role entity.Role) string {
	t.Helper()
	require.NoError(t, s.store.Users.Create(context.Background(), &entity.User{Name: email, Email: email, Role: role}))
	token, _, err := s.jwt.Generate(email, string(role))
	require.NoError(t, err)
	return token
}

func (s *testServer) class(t *testing.T, name string, price float64, status entity.ClassStatus) *entity.Class {
	t.Helper()
	c := &entity.Class{
		Name:            name,
		Price:           price,
		AvailableSeats:  10,
		InstructorEmail: "guru@x.com",
		Status:          status,
		Chapters:        []entity.Chapter{{Title: "intro", Video: "free.mp4", IsFree: true}, {Title: "deep", Video: "paid.mp4"}},
	}
	require.NoError(t, s.store.Classes.Create(context.Background(), c))
	return c
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.HeaderRequestID, "3f2b1c9e-1d2a-4c5b-8e7f-0a1b2c3d4e5f")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3f2b1c9e-1d2a-4c5b-8e7f-0a1b2c3d4e5f", rec.Header().Get(middleware.HeaderRequestID))
	assert.Contains(t, rec.Body.String(), `"redis":false`)

	rec, _ = s.do(t, http.MethodGet, "/debug/vars", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"checkout"`)
}

func TestSignupLogin(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/new-user", "", map[string]any{
		"name": "Asha", "email": "asha@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	assert.NotContains(t, string(env.Data), "password")

	rec, _ = s.do(t, http.MethodPost, "/new-user", "", map[string]any{
		"name": "Asha", "email": "asha@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = s.do(t, http.MethodPost, "/new-user", "", map[string]any{
		"name": "Bad", "email": "bad@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "password")

	rec, _ = s.do(t, http.MethodPost, "/api/login", "", map[string]any{"email": "asha@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = s.do(t, http.MethodPost, "/api/login", "", map[string]any{"email": "asha@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Token string      `json:"token"`
		User  entity.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, entity.RoleUser, login.User.Role)

	rec, _ = s.do(t, http.MethodGet, "/user/asha@example.com", login.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodGet, "/user/other@example.com", login.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouteGuards(t *testing.T) {
	s := newTestServer(t)
	userToken := s.user(t, "a@x.com", entity.RoleUser)
	adminToken := s.user(t, "root@x.com", entity.RoleAdmin)

	// a token that claims admin for a plain user
	forged, _, err := s.jwt.Generate("a@x.com", string(entity.RoleAdmin))
	require.NoError(t, err)
	// a valid token for an account that does not exist
	ghost, _, err := s.jwt.Generate("ghost@x.com", string(entity.RoleAdmin))
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{name: "no token", method: http.MethodGet, path: "/users", want: http.StatusUnauthorized},
		{name: "garbage token", method: http.MethodGet, path: "/users", token: "abc", want: http.StatusUnauthorized},
		{name: "plain user on admin route", method: http.MethodGet, path: "/users", token: userToken, want: http.StatusForbidden},
		{name: "stale admin claim", method: http.MethodGet, path: "/users", token: forged, want: http.StatusForbidden},
		{name: "deleted account", method: http.MethodGet, path: "/users", token: ghost, want: http.StatusForbidden},
		{name: "admin", method: http.MethodGet, path: "/users", token: adminToken, want: http.StatusOK},
		{name: "user on instructor route", method: http.MethodPost, path: "/new-class", token: userToken, want: http.StatusForbidden},
		{name: "audit log admin", method: http.MethodGet, path: "/audit-logs", token: adminToken, want: http.StatusOK},
		{name: "audit log user", method: http.MethodGet, path: "/audit-logs", token: userToken, want: http.StatusForbidden},
		{name: "unknown route", method: http.MethodGet, path: "/nope", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := s.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestPublicCatalogueHidesUnapproved(t *testing.T) {
	s := newTestServer(t)
	s.class(t, "Pending Flow", 10, entity.ClassPending)
	s.class(t, "Denied Flow", 10, entity.ClassDenied)
	live := s.class(t, "Live Flow", 10, entity.ClassApproved)
	adminToken := s.user(t, "root@x.com", entity.RoleAdmin)

	for _, path := range []string{"/classes", "/approved-classes"} {
		t.Run(path, func(t *testing.T) {
			rec, env := s.do(t, http.MethodGet, path, "", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			var list []entity.Class
			require.NoError(t, json.Unmarshal(env.Data, &list))
			require.Len(t, list, 1)
			assert.Equal(t, live.ID, list[0].ID)
			assert.NotContains(t, rec.Body.String(), "Pending Flow")
			assert.NotContains(t, rec.Body.String(), "Denied Flow")
		})
	}

	rec, _ := s.do(t, http.MethodGet, "/class-manage", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":3`)
}

func TestCheckoutOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token := s.user(t, "a@x.com", entity.RoleUser)
	c1 := s.class(t, "C1", 20, entity.ClassApproved)
	c2 := s.class(t, "C2", 15, entity.ClassApproved)

	for _, id := range []string{c1.ID, c2.ID} {
		rec, _ := s.do(t, http.MethodPost, "/add-to-cart", token, map[string]any{"classId": id})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec, _ := s.do(t, http.MethodPost, "/add-to-cart", token, map[string]any{"classId": c1.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env := s.do(t, http.MethodPost, "/create-payment-intent", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var intent struct {
		PaymentIntentID string `json:"paymentIntentId"`
		Amount          int64  `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &intent))
	assert.Equal(t, int64(3500), intent.Amount)

	body := map[string]any{"transactionId": intent.PaymentIntentID, "classesId": []string{c1.ID, c2.ID}}
	rec, _ = s.do(t, http.MethodPost, "/payment-info", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env = s.do(t, http.MethodPost, "/payment-info", token, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "payment already recorded", env.Message)

	rec, _ = s.do(t, http.MethodGet, "/cart/a@x.com", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)

	rec, env = s.do(t, http.MethodGet, "/payment-history-length/a@x.com", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":1}`, string(env.Data))

	rec, env = s.do(t, http.MethodGet, "/class/"+c1.ID+"/chapters/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(env.Data), "paid.mp4")
}

func TestPaymentNotConfirmed(t *testing.T) {
	s := newTestServer(t)
	token := s.user(t, "a@x.com", entity.RoleUser)
	c1 := s.class(t, "C1", 20, entity.ClassApproved)
	s.gateway.Put(entity.PaymentIntent{ID: "pi_declined", Amount: 2000, Status: "canceled",
		Metadata: map[string]string{"user_email": "a@x.com"}})

	rec, env := s.do(t, http.MethodPost, "/payment-info", token, map[string]any{
		"transactionId": "pi_declined", "classesId": []string{c1.ID},
	})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "payment not confirmed", env.Message)

	rec, _ = s.do(t, http.MethodPost, "/payment-info", token, map[string]any{
		"transactionId": "pi_declined", "classesId": []string{"not-an-id"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChapterGatingOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token := s.user(t, "a@x.com", entity.RoleUser)
	c1 := s.class(t, "C1", 20, entity.ClassApproved)

	rec, _ := s.do(t, http.MethodGet, "/class/"+c1.ID+"/chapters/0", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodGet, "/class/"+c1.ID+"/chapters/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = s.do(t, http.MethodGet, "/class/"+c1.ID+"/chapters/1", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := s.do(t, http.MethodGet, "/class/"+c1.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, string(env.Data), "paid.mp4")
}
