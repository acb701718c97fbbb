package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"production-simulator/internal/catalog"
	"production-simulator/internal/models"
	"production-simulator/internal/service"
	"production-simulator/internal/sim"
	"production-simulator/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Handler contains HTTP handlers
type Handler struct {
	simulation *service.SimulationService
	catalog    *catalog.Store
}

// NewHandler creates a new HTTP handler
func NewHandler(simulation *service.SimulationService, catalogStore *catalog.Store) *Handler {
	return &Handler{
		simulation: simulation,
		catalog:    catalogStore,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.getProducts)
		v1.POST("/products", h.createProduct)

		v1.GET("/suppliers", h.getSuppliers)
		v1.POST("/suppliers", h.createSupplier)

		v1.GET("/bom", h.getBOM)
		v1.POST("/bom", h.createBOMLine)

		v1.GET("/inventory", h.getInventory)

		v1.GET("/purchase-orders", h.getPurchaseOrders)
		v1.POST("/purchase-orders", h.createPurchaseOrder)

		v1.GET("/manufacturing-orders", h.getManufacturingOrders)
		v1.POST("/manufacturing-orders", h.createManufacturingOrder)

		simGroup := v1.Group("/simulation")
		{
			simGroup.POST("/start", h.startSimulation)
			simGroup.POST("/advance-day", h.advanceDay)
			simGroup.GET("/state", h.getState)
			simGroup.GET("/suggestions", h.getSuggestions)
			simGroup.GET("/export", h.exportSimulation)
			simGroup.POST("/import", h.importSimulation)
			simGroup.GET("/snapshots", h.listSnapshots)
			simGroup.POST("/snapshots/:name", h.saveSnapshot)
			simGroup.POST("/snapshots/:name/restore", h.restoreSnapshot)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type createProductRequest struct {
	ID   int64  `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
	Kind string `json:"kind" binding:"required,oneof=raw finished"`
}

func (h *Handler) getProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Products())
}

func (h *Handler) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product := models.Product{ID: req.ID, Name: req.Name, Kind: req.Kind}
	if err := h.catalog.CreateProduct(product); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

type createSupplierRequest struct {
	ID           int64           `json:"id" binding:"required"`
	ProductID    int64           `json:"product_id" binding:"required"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	LeadTimeDays int             `json:"lead_time_days" binding:"min=0"`
}

func (h *Handler) getSuppliers(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Suppliers())
}

func (h *Handler) createSupplier(c *gin.Context) {
	var req createSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	supplier := models.Supplier{
		ID:           req.ID,
		ProductID:    req.ProductID,
		UnitCost:     req.UnitCost,
		LeadTimeDays: req.LeadTimeDays,
	}
	if err := h.catalog.CreateSupplier(supplier); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, supplier)
}

type createBOMLineRequest struct {
	FinishedProductID int64 `json:"finished_product_id" binding:"required"`
	RawMaterialID     int64 `json:"raw_material_id" binding:"required"`
	QuantityNeeded    int   `json:"quantity_needed" binding:"required,min=1"`
}

func (h *Handler) getBOM(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.BOMLines())
}

func (h *Handler) createBOMLine(c *gin.Context) {
	var req createBOMLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	line := models.BOMLine{
		FinishedProductID: req.FinishedProductID,
		RawMaterialID:     req.RawMaterialID,
		QuantityNeeded:    req.QuantityNeeded,
	}
	if err := h.catalog.CreateBOMLine(line); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, line)
}

func (h *Handler) getInventory(c *gin.Context) {
	inventory, err := h.simulation.Inventory()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inventory)
}

func (h *Handler) getPurchaseOrders(c *gin.Context) {
	orders, err := h.simulation.PurchaseOrders(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) createPurchaseOrder(c *gin.Context) {
	var req service.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.simulation.CreatePurchaseOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) getManufacturingOrders(c *gin.Context) {
	orders, err := h.simulation.ManufacturingOrders(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) createManufacturingOrder(c *gin.Context) {
	var req service.CreateManufacturingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.simulation.CreateManufacturingOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) startSimulation(c *gin.Context) {
	var cfg models.SimulationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	state, err := h.simulation.Start(c.Request.Context(), cfg)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *Handler) advanceDay(c *gin.Context) {
	state, err := h.simulation.AdvanceDay(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) getState(c *gin.Context) {
	state, err := h.simulation.State()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) getSuggestions(c *gin.Context) {
	suggestions, err := h.simulation.Suggestions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if suggestions == nil {
		suggestions = []models.PurchaseSuggestion{}
	}
	c.JSON(http.StatusOK, suggestions)
}

func (h *Handler) exportSimulation(c *gin.Context) {
	doc, err := h.simulation.Export()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) importSimulation(c *gin.Context) {
	var doc models.SimulationExport
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.simulation.Import(doc); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Simulation imported successfully"})
}

func (h *Handler) listSnapshots(c *gin.Context) {
	names, err := h.simulation.ListSnapshots(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, names)
}

func (h *Handler) saveSnapshot(c *gin.Context) {
	name := c.Param("name")
	if err := h.simulation.SaveSnapshot(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": name})
}

func (h *Handler) restoreSnapshot(c *gin.Context) {
	name := c.Param("name")
	if err := h.simulation.LoadSnapshot(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name})
}

// respondError maps domain errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, sim.ErrDuplicateID),
		errors.Is(err, catalog.ErrDuplicateID),
		errors.Is(err, catalog.ErrDuplicateBOMLine):
		status = http.StatusConflict
	case errors.Is(err, sim.ErrMissingSupplier),
		errors.Is(err, sim.ErrUnknownProduct),
		errors.Is(err, catalog.ErrUnknownProduct):
		status = http.StatusNotFound
	case errors.Is(err, sim.ErrSimulationNotStarted),
		errors.Is(err, sim.ErrNotFinishedProduct),
		errors.Is(err, service.ErrSnapshotsDisabled):
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
