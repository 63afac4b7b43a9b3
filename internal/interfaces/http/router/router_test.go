package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/ceramica/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	block := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	r := NewRouter(engine, WithMiddleware(block))
	r.Register(NewDomainGroup("kits", "/kits").GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "kits")
	}))
	r.Setup()

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/kits").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
}

func TestDomainGroup(t *testing.T) {
	ok := func(body string) gin.HandlerFunc {
		return func(c *gin.Context) { c.String(http.StatusOK, body) }
	}

	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("produccion", "/produccion")
		assert.Equal(t, "produccion", g.Name())
		assert.Equal(t, "/produccion", g.Prefix())
	})

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("tasks", "/tasks").
			GET("", ok("list")).
			POST("", ok("create")).
			PUT("/:id", ok("update")).
			PATCH("/:id/status", ok("status")).
			DELETE("/:id", ok("delete"))
		g.RegisterRoutes(engine.Group("/api/v1"))

		tests := []struct {
			method, path, body string
		}{
			{http.MethodGet, "/api/v1/tasks", "list"},
			{http.MethodPost, "/api/v1/tasks", "create"},
			{http.MethodPut, "/api/v1/tasks/1", "update"},
			{http.MethodPatch, "/api/v1/tasks/1/status", "status"},
			{http.MethodDelete, "/api/v1/tasks/1", "delete"},
		}
		for _, tt := range tests {
			t.Run(tt.method, func(t *testing.T) {
				w := serve(engine, tt.method, tt.path)
				assert.Equal(t, http.StatusOK, w.Code)
				assert.Equal(t, tt.body, w.Body.String())
			})
		}
	})

	t.Run("group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("areas", "/areas").
			Use(func(c *gin.Context) {
				c.Header("X-Group", "areas")
				c.Next()
			}).
			GET("", ok("areas"))
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/areas")
		assert.Equal(t, "areas", w.Header().Get("X-Group"))
	})

	t.Run("subgroups and route listing", func(t *testing.T) {
		engine := gin.New()
		ventas := NewDomainGroup("ventas", "/ventas")
		ventas.Group("pedidos", "/pedidos").
			GET("", ok("pedidos")).
			POST("/:id/confirm", ok("confirm"))
		ventas.RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, "confirm", serve(engine, http.MethodPost, "/api/v1/ventas/pedidos/7/confirm").Body.String())
		assert.Equal(t, []Route{
			{Method: http.MethodGet, Path: "/ventas/pedidos"},
			{Method: http.MethodPost, Path: "/ventas/pedidos/:id/confirm"},
		}, ventas.Routes())
	})
}

// newTestHandlers builds handlers without services; only guards and routing
// are exercised
func newTestHandlers() Handlers {
	up := func(context.Context) error { return nil }
	return Handlers{
		Auth:             handler.NewAuthHandler(nil, nil),
		System:           handler.NewSystemHandler("test", up, nil),
		Areas:            handler.NewAreaHandler(nil),
		Tasks:            handler.NewTaskHandler(nil),
		PersonalTasks:    handler.NewPersonalTaskHandler(nil),
		Projects:         handler.NewProjectHandler(nil),
		Contacts:         handler.NewContactHandler(nil),
		Documents:        handler.NewDocumentHandler(nil),
		Attachments:      handler.NewAttachmentHandler(nil),
		LedgerUSD:        handler.NewLedgerHandler(nil, shared.CurrencyUSD),
		LedgerMXN:        handler.NewLedgerHandler(nil, shared.CurrencyMXN),
		Cotizaciones:     handler.NewCotizacionHandler(nil),
		Notifications:    handler.NewNotificationHandler(nil),
		Produccion:       handler.NewProduccionHandler(nil),
		Embalaje:         handler.NewEmbalajeHandler(nil),
		Quotations:       handler.NewQuotationHandler(nil),
		Pedidos:          handler.NewPedidoHandler(nil),
		Kits:             handler.NewKitHandler(nil),
		EcommercePedidos: handler.NewEcommercePedidoHandler(nil),
	}
}

func newAPIEngine(t *testing.T) *gin.Engine {
	t.Helper()
	engine := gin.New()
	h := newTestHandlers()
	guards := Guards{
		Admin:      func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) },
		Idempotent: func(c *gin.Context) { c.AbortWithStatus(http.StatusConflict) },
	}
	require.NotPanics(t, func() {
		RegisterHealth(engine, h.System)
		r := NewRouter(engine)
		for _, g := range APIGroups(h, guards) {
			r.Register(g)
		}
		r.Setup()
	})
	return engine
}

func TestAPIGroups_RouteTable(t *testing.T) {
	engine := newAPIEngine(t)

	registered := map[string]bool{}
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /health",
		"GET /api/v1/auth/me",
		"POST /api/v1/auth/logout",
		"DELETE /api/v1/areas/:id/subareas/:subareaId",
		"PATCH /api/v1/personal-tasks/:id/status",
		"GET /api/v1/projects/:id/tasks",
		"DELETE /api/v1/contacts/:id/attachments/:attachmentId",
		"POST /api/v1/documents/:id/attachments",
		"POST /api/v1/uploads/presign",
		"GET /api/v1/ledger-usd/summary",
		"GET /api/v1/ledger-mxn/:id/attachments",
		"DELETE /api/v1/ledger-usd/:id/facturas/:facturaId",
		"GET /api/v1/cotizaciones/summary",
		"PATCH /api/v1/notifications/read-all",
		"PATCH /api/v1/notifications/:id/read",
		"GET /api/v1/produccion/availability",
		"POST /api/v1/produccion/transfer",
		"POST /api/v1/produccion/reconcile",
		"GET /api/v1/produccion/:id/allocations",
		"GET /api/v1/embalaje/:id/movements",
		"GET /api/v1/ventas/quotations/:id/pdf",
		"POST /api/v1/ventas/quotations/:id/convert",
		"POST /api/v1/ventas/pedidos/:id/items/:itemId/allocations",
		"DELETE /api/v1/ventas/pedidos/:id/allocations/:allocationId",
		"POST /api/v1/ecommerce/kits/:id/stock",
		"POST /api/v1/ecommerce/pedidos/:id/ship",
		"PATCH /api/v1/ecommerce/pedidos/:id/status",
		"GET /api/v1/system/info",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing %s", route)
	}
}

func TestAPIGroups_Guards(t *testing.T) {
	engine := newAPIEngine(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"area create is admin only", http.MethodPost, "/api/v1/areas", http.StatusForbidden},
		{"subarea delete is admin only", http.MethodDelete, "/api/v1/areas/1/subareas/2", http.StatusForbidden},
		{"produccion adjust is admin only", http.MethodPost, "/api/v1/produccion/1/adjust", http.StatusForbidden},
		{"reconcile is admin only", http.MethodPost, "/api/v1/produccion/reconcile", http.StatusForbidden},
		{"embalaje adjust is admin only", http.MethodPost, "/api/v1/embalaje/1/adjust", http.StatusForbidden},
		{"sending notifications is admin only", http.MethodPost, "/api/v1/notifications", http.StatusForbidden},
		{"pedido confirm is idempotent", http.MethodPost, "/api/v1/ventas/pedidos/1/confirm", http.StatusConflict},
		{"pedido deliver is idempotent", http.MethodPost, "/api/v1/ventas/pedidos/1/deliver", http.StatusConflict},
		{"pedido cancel is idempotent", http.MethodPost, "/api/v1/ventas/pedidos/1/cancel", http.StatusConflict},
		{"kit stock is idempotent", http.MethodPost, "/api/v1/ecommerce/kits/1/stock", http.StatusConflict},
		{"ecommerce deliver is idempotent", http.MethodPost, "/api/v1/ecommerce/pedidos/1/deliver", http.StatusConflict},
		{"ecommerce cancel is idempotent", http.MethodPost, "/api/v1/ecommerce/pedidos/1/cancel", http.StatusConflict},
		// unguarded routes reach the handler, which rejects the bad id
		{"task read is open", http.MethodGet, "/api/v1/tasks/not-a-uuid", http.StatusBadRequest},
		{"area read is open", http.MethodGet, "/api/v1/areas/not-a-uuid", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serve(engine, tt.method, tt.path).Code)
		})
	}
}

func TestAPIGroups_NilGuards(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	for _, g := range APIGroups(newTestHandlers(), Guards{}) {
		r.Register(g)
	}
	r.Setup()

	// without an admin guard the handler runs and validates the path id
	w := serve(engine, http.MethodPost, "/api/v1/produccion/not-a-uuid/adjust")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterHealth(t *testing.T) {
	engine := gin.New()
	RegisterHealth(engine, handler.NewSystemHandler("1.2.3", func(context.Context) error { return nil }, nil))

	w := serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"database":"ok"`), w.Body.String())
}
