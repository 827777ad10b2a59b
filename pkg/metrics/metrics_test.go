package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "stowaway/pkg/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_RecordReservation(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordReservation("create", OutcomeSuccess)
	c.RecordReservation("create", OutcomeSuccess)
	c.RecordReservation("create", OutcomeConflict)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.reservationOps.WithLabelValues("create", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.reservationOps.WithLabelValues("create", OutcomeConflict)))
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordHTTPRequest(http.MethodPost, http.StatusCreated, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues(http.MethodPost, "201")))
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordShippingLookup(OutcomeSuccess, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stowaway_shipping_rate_lookups_total")
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, OutcomeOf(nil))
	assert.Equal(t, OutcomeValidation, OutcomeOf(apperrors.ValidationFields("x", nil)))
	assert.Equal(t, OutcomeConflict, OutcomeOf(apperrors.Conflict("x")))
	assert.Equal(t, OutcomeNotFound, OutcomeOf(apperrors.NotFound("x")))
	assert.Equal(t, OutcomeUnauthorized, OutcomeOf(apperrors.AccessDenied()))
	assert.Equal(t, OutcomeError, OutcomeOf(errors.New("boom")))
}
