package v1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millstock/internal/app"
	appctx "millstock/internal/core/context"
	"millstock/internal/core/types"
	"millstock/internal/domain/auth"
	"millstock/internal/domain/production"
	v1 "millstock/internal/infrastructure/http/v1"
	"millstock/internal/infrastructure/http/v1/handlers"
	"millstock/internal/infrastructure/storage/memory"
	"millstock/pkg/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Details map[string]any  `json:"details"`
}

type testServer struct {
	t      *testing.T
	router http.Handler
	erp    *memory.ERP
	jwt    *auth.JWTService
	token  string
}

func newTestServer(t *testing.T, authDisabled bool) *testServer {
	t.Helper()
	store := memory.NewStore()
	erp := memory.NewERP()

	svc, err := app.NewServices(app.MemoryStorage(store), app.Options{Sales: erp, Intake: erp})
	require.NoError(t, err)

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("test-secret", "millstock"))
	router := v1.NewRouter(v1.RouterConfig{
		Services:     svc,
		Logger:       logger.Nop(),
		JWTValidator: jwtService,
		AuthDisabled: authDisabled,
		HealthChecks: map[string]handlers.Pinger{},
		Storage:      "memory",
		Version:      "test",
	})
	return &testServer{t: t, router: router, erp: erp, jwt: jwtService}
}

func (s *testServer) withUser(user appctx.UserContext) *testServer {
	token, _, err := s.jwt.GenerateAccessToken(user)
	require.NoError(s.t, err)
	s.token = token
	return s
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func dataMap(t *testing.T, env envelope) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &m))
	return m
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/health/info", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"storage":"memory"`)
}

func TestAuth(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		s := newTestServer(t, false)
		w := s.do(http.MethodGet, "/api/v1/stock-products?from=2024-07-01&to=2024-07-02", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env := decode(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "UNAUTHORIZED", env.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		s := newTestServer(t, false)
		s.token = "garbage"
		w := s.do(http.MethodGet, "/api/v1/stock-products?from=2024-07-01&to=2024-07-02", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing permission", func(t *testing.T) {
		s := newTestServer(t, false).withUser(appctx.UserContext{
			UserID:      "viewer",
			Permissions: []string{"stock:read"},
		})

		w := s.do(http.MethodGet, "/api/v1/stock-products?from=2024-07-01&to=2024-07-02", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = s.do(http.MethodPost, "/api/v1/by-production-stocks", map[string]any{"recordDate": "2024-07-01"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decode(t, w)
		assert.Equal(t, "FORBIDDEN", env.Code)
		assert.Equal(t, "record:by_production:create", env.Details["required_permission"])
	})

	t.Run("granted permission", func(t *testing.T) {
		s := newTestServer(t, false).withUser(appctx.UserContext{
			UserID:      "clerk",
			Permissions: []string{"record:by_production:create"},
		})

		w := s.do(http.MethodPost, "/api/v1/by-production-stocks", map[string]any{"recordDate": "2024-07-01"})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "clerk", dataMap(t, decode(t, w))["createdBy"])
	})
}

func TestByProductionLifecycle(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(http.MethodPost, "/api/v1/by-production-stocks", map[string]any{
		"recordDate":    "2024-07-01",
		"ffbProcessed":  100,
		"efbPercentage": 20,
		"efbSold":       5,
		"efbOpening":    "10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := decode(t, w)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Message)
	created := dataMap(t, env)
	assert.EqualValues(t, 20, created["efbProduced"])
	assert.EqualValues(t, 25, created["efbBalance"])
	recID := created["id"].(string)

	w = s.do(http.MethodGet, "/api/v1/stock-products/2024-07-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 25, dataMap(t, decode(t, w))["efb"])

	// A second record on the same date conflicts.
	w = s.do(http.MethodPost, "/api/v1/by-production-stocks", map[string]any{"recordDate": "2024-07-01"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_ENTRY", decode(t, w).Code)

	w = s.do(http.MethodGet, "/api/v1/by-production-stocks/previous-balance?date=2024-07-02", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 25, dataMap(t, decode(t, w))["efb"])

	w = s.do(http.MethodPut, "/api/v1/by-production-stocks/"+recID, map[string]any{"efbSold": 15, "version": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 15, dataMap(t, decode(t, w))["efbBalance"])

	w = s.do(http.MethodPut, "/api/v1/by-production-stocks/"+recID, map[string]any{"efbSold": 1, "version": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONCURRENT_MODIFICATION", decode(t, w).Code)

	w = s.do(http.MethodGet, "/api/v1/by-production-stocks?from=2024-07-01&to=2024-07-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := dataMap(t, decode(t, w))
	assert.EqualValues(t, 1, list["totalCount"])

	w = s.do(http.MethodGet, "/api/v1/by-production-stocks/"+recID+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &history))
	assert.Len(t, history, 2)

	w = s.do(http.MethodDelete, "/api/v1/by-production-stocks/"+recID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/stock-products/2024-07-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, dataMap(t, decode(t, w))["efb"])

	w = s.do(http.MethodGet, "/api/v1/by-production-stocks/"+recID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w).Code)
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t, true)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"invalid record date", http.MethodPost, "/api/v1/silo-records", map[string]any{"recordDate": "2024-02-30"}, http.StatusUnprocessableEntity},
		{"missing record date", http.MethodPost, "/api/v1/silo-records", map[string]any{}, http.StatusUnprocessableEntity},
		{"invalid id", http.MethodGet, "/api/v1/cpo-records/not-a-uuid", nil, http.StatusUnprocessableEntity},
		{"missing range", http.MethodGet, "/api/v1/stock-products", nil, http.StatusUnprocessableEntity},
		{"inverted range", http.MethodGet, "/api/v1/stock-products?from=2024-07-02&to=2024-07-01", nil, http.StatusUnprocessableEntity},
		{"invalid date query", http.MethodGet, "/api/v1/stock-products/production?date=yesterday", nil, http.StatusUnprocessableEntity},
		{"unknown silo", http.MethodPost, "/api/v1/silo-records", map[string]any{
			"recordDate": "2024-07-01",
			"nutSilos":   []map[string]any{{"code": "N9", "levelPct": 50}},
		}, http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			env := decode(t, w)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Code)
		})
	}
}

func TestCPOAndYield(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(http.MethodPut, "/api/v1/reference/tanks", map[string]any{
		"items": []map[string]any{{"number": 1, "volumeM3": 1000, "heightM": 10}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPut, "/api/v1/reference/densities", map[string]any{
		"items": []map[string]any{{"temperature": 45, "density": "0.89"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/cpo-records/calculate", map[string]any{
		"tanks": []map[string]any{{"tank": 1, "levelCm": 500, "temperature": 45}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 445, dataMap(t, decode(t, w))["total"])

	w = s.do(http.MethodPost, "/api/v1/cpo-records/calculate", map[string]any{
		"tanks": []map[string]any{{"tank": 3, "levelCm": 500, "temperature": 45}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "UNKNOWN_TANK", decode(t, w).Code)

	w = s.do(http.MethodPost, "/api/v1/cpo-records", map[string]any{"recordDate": "2024-07-01", "totalCpo": 100})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/api/v1/cpo-records", map[string]any{"recordDate": "2024-07-02", "totalCpo": 120, "skim": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	day := types.NewDate(2024, 7, 2)
	s.erp.SetSales(day, production.ProductCPO, decimal.NewFromInt(10_000))
	s.erp.SetIntake(day, decimal.NewFromInt(100_000))

	w = s.do(http.MethodGet, "/api/v1/stock-products/sales?date=2024-07-02", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 10, dataMap(t, decode(t, w))["cpoTons"])

	w = s.do(http.MethodGet, "/api/v1/stock-products/production?date=2024-07-02", nil)
	require.Equal(t, http.StatusOK, w.Code)
	yield := dataMap(t, decode(t, w))
	assert.Equal(t, "28", yield["cpoYield"])
	assert.Equal(t, "0", yield["kernelYield"])
	assert.Equal(t, "2024-07-01", yield["previousDate"])

	w = s.do(http.MethodGet, "/api/v1/stock-products/production?date=2024-07-03", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", dataMap(t, decode(t, w))["cpoYield"])

	w = s.do(http.MethodPost, "/api/v1/stock-products/rebuild?from=2024-07-01&to=2024-07-03", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 3, dataMap(t, decode(t, w))["days"])

	w = s.do(http.MethodGet, "/api/v1/stock-products?from=2024-07-01&to=2024-07-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snaps []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &snaps))
	require.Len(t, snaps, 3)
	assert.EqualValues(t, 120, snaps[1]["cpo"])
}

func TestExport(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(http.MethodPost, "/api/v1/by-production-stocks", map[string]any{"recordDate": "2024-07-01", "ffbProcessed": 50, "shellPercentage": 6})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/reports/stock-products.xlsx?from=2024-07-01&to=2024-07-31", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "stock-products_2024-07-01_2024-07-31.xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = s.do(http.MethodGet, "/api/v1/reports/stock-products?from=2024-07-01&to=2024-07-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &report))
	assert.Len(t, report["rows"], 1)
}

func TestResponseHeaders(t *testing.T) {
	s := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}
