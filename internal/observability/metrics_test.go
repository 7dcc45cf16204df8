package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics("parking_test")

	m.RecordRequest("/lots", "GET", 200, 15*time.Millisecond)
	m.RecordRequest("/lots", "GET", 200, 5*time.Millisecond)
	m.RecordError("/lots/:id/reservations", "POST", "NO_AVAILABLE_SPOT")
	m.RecordAllocation(AllocationGranted)
	m.RecordAllocation(AllocationNoSpot)
	m.RecordAllocation(AllocationNoSpot)
	m.RecordRelease()
	m.RecordEvent("lot_created")
	m.RecordSpotsChanged(3, 0)
	m.RecordSpotsChanged(0, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/lots", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/lots/:id/reservations", "POST", "NO_AVAILABLE_SPOT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.allocations.WithLabelValues(AllocationGranted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.allocations.WithLabelValues(AllocationNoSpot)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.releases))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.domainEvents.WithLabelValues("lot_created")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.spotsChanged.WithLabelValues("added")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.spotsChanged.WithLabelValues("removed")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordAllocation(AllocationConflict)
		m.RecordRelease()
		m.RecordEvent("lot_deleted")
		m.RecordSpotsChanged(1, 1)
	})
}
