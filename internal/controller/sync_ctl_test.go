package controller

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"marketsync_v1_202608/internal/model"
	"marketsync_v1_202608/internal/service"
	"marketsync_v1_202608/internal/syncerr"
)

// fakeCollector 可编程的平台采集器
type fakeCollector struct {
	sellers  []string
	errs     map[string]error
	collects []string
}

func (f *fakeCollector) Collect(ctx context.Context, seller string) error {
	f.collects = append(f.collects, seller)
	return f.errs[seller]
}

func (f *fakeCollector) Sellers() []string { return f.sellers }

func setupSyncRouter(registry service.CollectorRegistry) *gin.Engine {
	r := gin.New()
	ctl := NewSyncController(registry)
	r.POST("/api/sync/:platform", ctl.SyncPlatform)
	r.POST("/api/sync/:platform/:seller", ctl.SyncSeller)
	return r
}

func TestSyncSeller_Success(t *testing.T) {
	collector := &fakeCollector{sellers: []string{"loja_a"}, errs: map[string]error{}}
	r := setupSyncRouter(service.CollectorRegistry{model.PlatformMagalu: collector})

	w := performRequest(r, "POST", "/api/sync/magalu/loja_a", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"loja_a"}, collector.collects)
}

func TestSyncSeller_UnknownPlatform(t *testing.T) {
	r := setupSyncRouter(service.CollectorRegistry{})

	w := performRequest(r, "POST", "/api/sync/ebay/loja_a", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSyncSeller_AuthError(t *testing.T) {
	collector := &fakeCollector{
		errs: map[string]error{"loja_x": syncerr.Auth(model.PlatformMagalu, syncerr.ErrSellerNotFound)},
	}
	r := setupSyncRouter(service.CollectorRegistry{model.PlatformMagalu: collector})

	w := performRequest(r, "POST", "/api/sync/magalu/loja_x", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSyncSeller_InternalError(t *testing.T) {
	collector := &fakeCollector{
		errs: map[string]error{"loja_a": errors.New("banco indisponível")},
	}
	r := setupSyncRouter(service.CollectorRegistry{model.PlatformMagalu: collector})

	w := performRequest(r, "POST", "/api/sync/magalu/loja_a", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSyncPlatform_AllSellers(t *testing.T) {
	// 单个卖家失败不中断其余卖家
	collector := &fakeCollector{
		sellers: []string{"loja_a", "loja_b", "loja_c"},
		errs:    map[string]error{"loja_b": errors.New("timeout")},
	}
	r := setupSyncRouter(service.CollectorRegistry{model.PlatformMercadoLivre: collector})

	w := performRequest(r, "POST", "/api/sync/mercadolivre", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"loja_a", "loja_b", "loja_c"}, collector.collects)
	assert.Contains(t, w.Body.String(), "timeout")
	assert.Contains(t, w.Body.String(), "ok")
}
