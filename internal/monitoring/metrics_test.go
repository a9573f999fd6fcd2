package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"maily/backend/internal/domain"
	"maily/backend/internal/storage/memory"
)

// value 读取计数器或仪表的当前值
func value(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	if m.Counter != nil {
		return m.Counter.GetValue()
	}
	return m.Gauge.GetValue()
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// 每个实例使用独立的注册表，重复创建不会 panic
	first := NewMetrics()
	second := NewMetrics()

	first.RecordSubscriptionCreated(true)
	first.RecordSubscriptionCreated(false)
	first.RecordSubscriptionCreated(true)
	first.RecordStateChange("aggregate", false)

	assert.Equal(t, float64(2), value(t, first.SubscriptionsCreated.WithLabelValues("aggregated")))
	assert.Equal(t, float64(1), value(t, first.SubscriptionsCreated.WithLabelValues("standalone")))
	assert.Equal(t, float64(1), value(t, first.StateChanges.WithLabelValues("aggregate", "false")))
	assert.Equal(t, float64(0), value(t, second.SubscriptionsCreated.WithLabelValues("aggregated")))
}

func TestMetrics_HTTPHandler(t *testing.T) {
	m := NewMetrics()
	m.RecordAggregateCreated()

	rec := httptest.NewRecorder()
	m.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "maily_aggregates_created_total 1")
}

func TestCollector_Collect(t *testing.T) {
	store := memory.NewStore()
	group := &domain.SubscriptionGroup{ID: "grp-1", Name: "marketing"}
	require.NoError(t, store.CreateGroup(group))
	_, _, err := store.FindOrCreateAggregate(domain.NewAggregatedSubscription("agg-1", "user-1", group))
	require.NoError(t, err)

	m := NewMetrics()
	NewCollector(store, m, zap.NewNop()).Collect()

	assert.Equal(t, float64(0), value(t, m.SubscriptionsTotal))
	assert.Equal(t, float64(1), value(t, m.AggregatesTotal))
}
