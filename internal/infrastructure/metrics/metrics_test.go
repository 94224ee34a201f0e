package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/numerator"
	"transdoc/internal/domain/carrier"
)

func TestObserver(t *testing.T) {
	m := New()

	m.AllocationSucceeded(numerator.KindPrimary, 3, 2*time.Millisecond)
	m.AllocationSucceeded(numerator.KindPrimary, 2, time.Millisecond)
	m.AllocationFailed(numerator.KindManifest, apperror.CodeNoLicenseForRoute, time.Millisecond)
	m.AllocationRetried(numerator.KindPrimary)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AllocationsTotal.WithLabelValues("PRIMARY", "success")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.NumbersIssued.WithLabelValues("PRIMARY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AllocationsTotal.WithLabelValues("MANIFEST", apperror.CodeNoLicenseForRoute)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AllocationRetries.WithLabelValues("PRIMARY")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordHTTPRequest(http.MethodPost, "/api/v1/numbers", http.StatusCreated, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "transdoc_http_requests_total"))
	assert.True(t, strings.Contains(body, `path="/api/v1/numbers"`))
}

func TestObserveValidity(t *testing.T) {
	m := New()
	report := &carrier.ValidityReport{
		Valid:        make([]carrier.LicenseStatus, 3),
		ExpiringSoon: make([]carrier.LicenseStatus, 1),
		Expired:      []carrier.LicenseStatus{},
		NoExpiry:     make([]carrier.LicenseStatus, 2),
	}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	m.ObserveValidity(report, at)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Licenses.WithLabelValues("valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Licenses.WithLabelValues("expiring_soon")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Licenses.WithLabelValues("expired")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Licenses.WithLabelValues("no_expiry")))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(m.LastValidityCheck))
}
