package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"maily/backend/internal/domain"
	"maily/backend/internal/storage/memory"
)

// brokenStore 健康检查总是失败的存储
type brokenStore struct {
	*memory.Store
}

func (brokenStore) Health() error { return errors.New("connection refused") }

func TestHealthChecker(t *testing.T) {
	tests := []struct {
		name      string
		store     domain.Store
		wantReady int
		wantStore string
	}{
		{"存储可用", memory.NewStore(), http.StatusOK, "OK"},
		{"存储不可用", brokenStore{memory.NewStore()}, http.StatusServiceUnavailable, "ERROR: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker(tt.store, zap.NewNop())

			live := httptest.NewRecorder()
			hc.LiveHandler()(live, httptest.NewRequest(http.MethodGet, "/health/live", nil))
			assert.Equal(t, http.StatusOK, live.Code)

			ready := httptest.NewRecorder()
			hc.ReadyHandler()(ready, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			assert.Equal(t, tt.wantReady, ready.Code)

			assert.Equal(t, tt.wantStore, hc.CheckHealth()["store"])
		})
	}
}
