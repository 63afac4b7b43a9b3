package router

import (
	"github.com/ceramica/backend/internal/domain/records"
	"github.com/ceramica/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the HTTP handlers mounted under the versioned API group
type Handlers struct {
	Auth             *handler.AuthHandler
	System           *handler.SystemHandler
	Areas            *handler.AreaHandler
	Tasks            *handler.TaskHandler
	PersonalTasks    *handler.PersonalTaskHandler
	Projects         *handler.ProjectHandler
	Contacts         *handler.ContactHandler
	Documents        *handler.DocumentHandler
	Attachments      *handler.AttachmentHandler
	LedgerUSD        *handler.LedgerHandler
	LedgerMXN        *handler.LedgerHandler
	Cotizaciones     *handler.CotizacionHandler
	Notifications    *handler.NotificationHandler
	Produccion       *handler.ProduccionHandler
	Embalaje         *handler.EmbalajeHandler
	Quotations       *handler.QuotationHandler
	Pedidos          *handler.PedidoHandler
	Kits             *handler.KitHandler
	EcommercePedidos *handler.EcommercePedidoHandler
}

// Guards are middleware applied to individual routes. Nil guards let the
// request through.
type Guards struct {
	// Admin restricts a route to the admin role
	Admin gin.HandlerFunc
	// Idempotent rejects a repeated Idempotency-Key
	Idempotent gin.HandlerFunc
}

func (g Guards) admin(h gin.HandlerFunc) []gin.HandlerFunc {
	return chain(g.Admin, h)
}

func (g Guards) idempotent(h gin.HandlerFunc) []gin.HandlerFunc {
	return chain(g.Idempotent, h)
}

func chain(guard, h gin.HandlerFunc) []gin.HandlerFunc {
	if guard == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{guard, h}
}

// RegisterHealth mounts the unauthenticated health probe on the engine root
func RegisterHealth(engine *gin.Engine, h *handler.SystemHandler) {
	engine.GET("/health", h.Health)
}

// APIGroups builds the domain route groups of the API
func APIGroups(h Handlers, g Guards) []*DomainGroup {
	groups := []*DomainGroup{
		authRoutes(h),
		areaRoutes(h, g),
		taskRoutes(h),
		personalTaskRoutes(h),
		projectRoutes(h),
		contactRoutes(h),
		documentRoutes(h),
		uploadRoutes(h),
		ledgerRoutes("ledger-usd", "/ledger-usd", h.LedgerUSD, h.Attachments),
		ledgerRoutes("ledger-mxn", "/ledger-mxn", h.LedgerMXN, h.Attachments),
		cotizacionRoutes(h),
		notificationRoutes(h, g),
		produccionRoutes(h, g),
		embalajeRoutes(h, g),
		ventasRoutes(h, g),
		ecommerceRoutes(h, g),
	}
	if h.System != nil {
		groups = append(groups, NewDomainGroup("system", "/system").GET("/info", h.System.GetSystemInfo))
	}
	return groups
}

func authRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("auth", "/auth").
		GET("/me", h.Auth.Me).
		POST("/logout", h.Auth.Logout)
}

func areaRoutes(h Handlers, g Guards) *DomainGroup {
	a := h.Areas
	return NewDomainGroup("areas", "/areas").
		GET("", a.List).
		GET("/:id", a.Get).
		POST("", g.admin(a.Create)...).
		PUT("/:id", g.admin(a.Update)...).
		DELETE("/:id", g.admin(a.Delete)...).
		POST("/:id/subareas", g.admin(a.AddSubarea)...).
		PUT("/:id/subareas/:subareaId", g.admin(a.UpdateSubarea)...).
		DELETE("/:id/subareas/:subareaId", g.admin(a.DeleteSubarea)...)
}

func taskRoutes(h Handlers) *DomainGroup {
	t := h.Tasks
	return NewDomainGroup("tasks", "/tasks").
		GET("", t.List).
		POST("", t.Create).
		GET("/:id", t.Get).
		PUT("/:id", t.Update).
		PATCH("/:id/status", t.ChangeStatus).
		DELETE("/:id", t.Delete)
}

func personalTaskRoutes(h Handlers) *DomainGroup {
	t := h.PersonalTasks
	return NewDomainGroup("personal-tasks", "/personal-tasks").
		GET("", t.List).
		POST("", t.Create).
		GET("/:id", t.Get).
		PUT("/:id", t.Update).
		PATCH("/:id/status", t.ChangeStatus).
		DELETE("/:id", t.Delete)
}

func projectRoutes(h Handlers) *DomainGroup {
	p := h.Projects
	return NewDomainGroup("projects", "/projects").
		GET("", p.List).
		POST("", p.Create).
		GET("/:id", p.Get).
		GET("/:id/tasks", p.Tasks).
		PUT("/:id", p.Update).
		DELETE("/:id", p.Delete)
}

// attachmentRoutes adds the attachment endpoints of an owner to its group
func attachmentRoutes(dg *DomainGroup, a *handler.AttachmentHandler, owner records.OwnerType) *DomainGroup {
	return dg.
		GET("/:id/attachments", a.List(owner)).
		POST("/:id/attachments", a.Add(owner)).
		DELETE("/:id/attachments/:attachmentId", a.Remove(owner))
}

func contactRoutes(h Handlers) *DomainGroup {
	c := h.Contacts
	dg := NewDomainGroup("contacts", "/contacts").
		GET("", c.List).
		POST("", c.Create).
		GET("/:id", c.Get).
		PUT("/:id", c.Update).
		DELETE("/:id", c.Delete)
	return attachmentRoutes(dg, h.Attachments, records.OwnerContact)
}

func documentRoutes(h Handlers) *DomainGroup {
	d := h.Documents
	dg := NewDomainGroup("documents", "/documents").
		GET("", d.List).
		POST("", d.Create).
		GET("/:id", d.Get).
		PUT("/:id", d.Update).
		DELETE("/:id", d.Delete)
	return attachmentRoutes(dg, h.Attachments, records.OwnerDocument)
}

func uploadRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("uploads", "/uploads").
		POST("/presign", h.Attachments.Presign)
}

func ledgerRoutes(name, prefix string, l *handler.LedgerHandler, a *handler.AttachmentHandler) *DomainGroup {
	dg := NewDomainGroup(name, prefix).
		GET("", l.List).
		GET("/summary", l.Summary).
		POST("", l.Create).
		GET("/:id", l.Get).
		PUT("/:id", l.Update).
		DELETE("/:id", l.Delete).
		GET("/:id/facturas", l.Facturas).
		POST("/:id/facturas", l.AddFactura).
		DELETE("/:id/facturas/:facturaId", l.RemoveFactura)
	return attachmentRoutes(dg, a, l.AttachmentOwner())
}

func cotizacionRoutes(h Handlers) *DomainGroup {
	c := h.Cotizaciones
	return NewDomainGroup("cotizaciones", "/cotizaciones").
		GET("", c.List).
		GET("/summary", c.Summary).
		POST("", c.Create).
		GET("/:id", c.Get).
		PUT("/:id", c.Update).
		DELETE("/:id", c.Delete)
}

func notificationRoutes(h Handlers, g Guards) *DomainGroup {
	n := h.Notifications
	return NewDomainGroup("notifications", "/notifications").
		GET("", n.List).
		GET("/unread-count", n.UnreadCount).
		PATCH("/read-all", n.MarkAllRead).
		PATCH("/:id/read", n.MarkRead).
		DELETE("/:id", n.Delete).
		POST("", g.admin(n.Send)...)
}

func produccionRoutes(h Handlers, g Guards) *DomainGroup {
	p := h.Produccion
	return NewDomainGroup("produccion", "/produccion").
		GET("", p.List).
		POST("", p.Create).
		GET("/availability", p.Availability).
		POST("/transfer", p.Transfer).
		POST("/reconcile", g.admin(p.Reconcile)...).
		GET("/:id", p.Get).
		PUT("/:id", p.Update).
		DELETE("/:id", p.Delete).
		POST("/:id/input", p.Input).
		POST("/:id/output", p.Output).
		POST("/:id/adjust", g.admin(p.Adjust)...).
		GET("/:id/movements", p.Movements).
		GET("/:id/allocations", p.Allocations)
}

func embalajeRoutes(h Handlers, g Guards) *DomainGroup {
	e := h.Embalaje
	return NewDomainGroup("embalaje", "/embalaje").
		GET("", e.List).
		POST("", e.Create).
		GET("/:id", e.Get).
		PUT("/:id", e.Update).
		DELETE("/:id", e.Delete).
		POST("/:id/input", e.Input).
		POST("/:id/output", e.Output).
		POST("/:id/adjust", g.admin(e.Adjust)...).
		GET("/:id/movements", e.Movements)
}

func ventasRoutes(h Handlers, g Guards) *DomainGroup {
	ventas := NewDomainGroup("ventas", "/ventas")

	q := h.Quotations
	ventas.Group("quotations", "/quotations").
		GET("", q.List).
		POST("", q.Create).
		GET("/:id", q.Get).
		PUT("/:id", q.Update).
		DELETE("/:id", q.Delete).
		PATCH("/:id/status", q.ChangeStatus).
		POST("/:id/convert", q.Convert).
		GET("/:id/pdf", q.PDF)

	p := h.Pedidos
	ventas.Group("pedidos", "/pedidos").
		GET("", p.List).
		POST("", p.Create).
		GET("/:id", p.Get).
		PUT("/:id", p.Update).
		DELETE("/:id", p.Delete).
		POST("/:id/confirm", g.idempotent(p.Confirm)...).
		POST("/:id/deliver", g.idempotent(p.Deliver)...).
		POST("/:id/cancel", g.idempotent(p.Cancel)...).
		PATCH("/:id/status", p.ChangeStatus).
		GET("/:id/allocations", p.Allocations).
		POST("/:id/items/:itemId/allocations", p.Allocate).
		DELETE("/:id/allocations/:allocationId", p.ReleaseAllocation)

	return ventas
}

func ecommerceRoutes(h Handlers, g Guards) *DomainGroup {
	ecommerce := NewDomainGroup("ecommerce", "/ecommerce")

	k := h.Kits
	ecommerce.Group("kits", "/kits").
		GET("", k.List).
		POST("", k.Create).
		GET("/:id", k.Get).
		PUT("/:id", k.Update).
		DELETE("/:id", k.Delete).
		POST("/:id/stock", g.idempotent(k.AdjustStock)...).
		GET("/:id/allocations", k.Allocations)

	p := h.EcommercePedidos
	ecommerce.Group("pedidos", "/pedidos").
		GET("", p.List).
		POST("", p.Create).
		GET("/:id", p.Get).
		PUT("/:id", p.Update).
		DELETE("/:id", p.Delete).
		POST("/:id/ship", p.Ship).
		POST("/:id/deliver", g.idempotent(p.Deliver)...).
		POST("/:id/cancel", g.idempotent(p.Cancel)...).
		PATCH("/:id/status", p.ChangeStatus)

	return ecommerce
}
