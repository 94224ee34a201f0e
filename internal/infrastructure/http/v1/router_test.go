package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transdoc/internal/core/apperror"
	"transdoc/internal/domain/carrier"
	"transdoc/internal/domain/country"
	"transdoc/internal/domain/license"
	"transdoc/internal/domain/numbering"
	"transdoc/internal/infrastructure/http/v1/middleware"
	"transdoc/internal/infrastructure/metrics"
	infranumerator "transdoc/internal/infrastructure/numerator"
	"transdoc/pkg/logger"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testAPI struct {
	router  *gin.Engine
	carrier *carrier.Carrier
	metrics *metrics.Metrics
}

func newTestAPI(t *testing.T, db stubPinger) *testAPI {
	t.Helper()
	store := carrier.NewMemoryStore()
	c := store.PutCarrier(&carrier.Carrier{
		Name: "Transportes Sul", Country: "BR", RegistrationNumber: "BR9999/1",
	})
	expires := time.Now().UTC().AddDate(0, 0, 30)
	store.PutLicense(carrier.DestinationLicense{
		CarrierID: c.ID, DestinationCountry: "AR", Code: "BR6023/1800648", ExpiresAt: &expires,
	})

	countries := country.Default()
	resolver := license.NewResolver(store, countries, "BR")
	m := metrics.New()
	numbers := numbering.NewService(store, resolver, infranumerator.NewMemory(), numbering.DefaultOptions()).
		WithObserver(m)

	router := NewRouter(RouterConfig{
		DB:        db,
		Version:   "test",
		Logger:    logger.Nop(),
		Metrics:   m,
		Countries: countries,
		Carriers:  store,
		Licenses:  store,
		Numbers:   numbers,
	})
	return &testAPI{router: router, carrier: c, metrics: m}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAllocateNumbers(t *testing.T) {
	api := newTestAPI(t, stubPinger{})

	rec := api.do(t, http.MethodPost, "/api/v1/numbers", map[string]any{
		"kind":        "CRT",
		"carrierId":   api.carrier.ID.String(),
		"origin":      "br",
		"destination": "AR",
		"quantity":    2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "req-1", rec.Header().Get(middleware.HeaderRequestID))

	body := decode[struct {
		Kind    string `json:"kind"`
		Label   string `json:"label"`
		Numbers []struct {
			Number   string `json:"number"`
			Sequence int64  `json:"sequence"`
		} `json:"numbers"`
	}](t, rec)
	assert.Equal(t, "PRIMARY", body.Kind)
	assert.Equal(t, "CRT", body.Label)
	require.Len(t, body.Numbers, 2)
	assert.Equal(t, "BR602300001", body.Numbers[0].Number)
	assert.Equal(t, "BR602300002", body.Numbers[1].Number)

	rec = api.do(t, http.MethodGet, "/api/v1/sequences/PRIMARY/"+api.carrier.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[numbering.SequenceState](t, rec)
	assert.True(t, state.Started)
	assert.Equal(t, int64(2), state.Last)
	assert.Equal(t, int64(3), state.Next)
}

func TestAllocateNumbers_Errors(t *testing.T) {
	api := newTestAPI(t, stubPinger{})
	carrierID := api.carrier.ID.String()

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "same country",
			body:       map[string]any{"kind": "CRT", "carrierId": carrierID, "origin": "BR", "destination": "BR", "quantity": 1},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperror.CodeInvalidRoute,
		},
		{
			name:       "unknown country",
			body:       map[string]any{"kind": "CRT", "carrierId": carrierID, "origin": "BR", "destination": "XX", "quantity": 1},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperror.CodeInvalidCountry,
		},
		{
			name:       "quantity",
			body:       map[string]any{"kind": "CRT", "carrierId": carrierID, "origin": "BR", "destination": "AR", "quantity": 0},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperror.CodeInvalidQuantity,
		},
		{
			name:       "unknown kind",
			body:       map[string]any{"kind": "INVOICE", "carrierId": carrierID, "origin": "BR", "destination": "AR", "quantity": 1},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperror.CodeValidation,
		},
		{
			name:       "bad carrier id",
			body:       map[string]any{"kind": "CRT", "carrierId": "nope", "origin": "BR", "destination": "AR", "quantity": 1},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperror.CodeValidation,
		},
		{
			name:       "unknown carrier",
			body:       map[string]any{"kind": "CRT", "carrierId": "0190a1b2-0000-7000-8000-000000000001", "origin": "BR", "destination": "AR", "quantity": 1},
			wantStatus: http.StatusNotFound,
			wantCode:   apperror.CodeNotFound,
		},
		{
			name:       "no license",
			body:       map[string]any{"kind": "CRT", "carrierId": carrierID, "origin": "CL", "destination": "PY", "quantity": 1},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apperror.CodeNoLicenseForRoute,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/v1/numbers", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			body := decode[map[string]any](t, rec)
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}

	// None of the failures advanced the counter.
	rec := api.do(t, http.MethodGet, "/api/v1/sequences/CRT/"+carrierID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[numbering.SequenceState](t, rec).Started)
}

func TestRebase(t *testing.T) {
	api := newTestAPI(t, stubPinger{})
	path := "/api/v1/sequences/MANIFEST/" + api.carrier.ID.String()

	rec := api.do(t, http.MethodPost, path+"/rebase", map[string]any{"last": 41})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(42), decode[numbering.SequenceState](t, rec).Next)

	rec = api.do(t, http.MethodPost, path+"/rebase", map[string]any{"last": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReferenceRoutes(t *testing.T) {
	api := newTestAPI(t, stubPinger{})

	rec := api.do(t, http.MethodGet, "/api/v1/countries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	countries := decode[struct {
		Count int `json:"count"`
	}](t, rec)
	assert.Equal(t, 7, countries.Count)

	rec = api.do(t, http.MethodGet, "/api/v1/licenses/validity", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[carrier.ValidityReport](t, rec)
	require.Len(t, report.ExpiringSoon, 1)
	assert.Equal(t, "AR", report.ExpiringSoon[0].DestinationCountry)

	rec = api.do(t, http.MethodGet, "/api/v1/carriers/"+api.carrier.ID.String()+"/licenses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"status":"expiring_soon"`))
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, stubPinger{})
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/health/ready", nil).Code)

	down := newTestAPI(t, stubPinger{err: errors.New("connection refused")})
	assert.Equal(t, http.StatusServiceUnavailable, down.do(t, http.MethodGet, "/health/ready", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t, stubPinger{})
	api.do(t, http.MethodGet, "/api/v1/countries", nil)

	rec := api.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `path="/api/v1/countries"`))
}
