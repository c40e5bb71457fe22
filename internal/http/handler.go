package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fleet-service/internal/http/middleware"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

type Handler struct {
	assignmentService  *service.AssignmentService
	maintenanceService *service.MaintenanceService
	fleetService       *service.FleetService
	renewalService     *service.RenewalService
	registryService    *service.RegistryService
	log                zerolog.Logger
}

func NewHandler(
	assignmentService *service.AssignmentService,
	maintenanceService *service.MaintenanceService,
	fleetService *service.FleetService,
	renewalService *service.RenewalService,
	registryService *service.RegistryService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		assignmentService:  assignmentService,
		maintenanceService: maintenanceService,
		fleetService:       fleetService,
		renewalService:     renewalService,
		registryService:    registryService,
		log:                log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := r.Group("/")
	protected.Use(authMiddleware)

	dispatcher := protected.Group("/dispatcher")
	{
		dispatcher.POST("/assignments", h.createAssignment)
		dispatcher.DELETE("/assignments/:id", h.terminateAssignment)
		dispatcher.GET("/assignments", h.listAssignments)
		dispatcher.GET("/fleet/available-drivers", h.listAvailableDrivers)
		dispatcher.GET("/fleet/available-trucks", h.listAvailableTrucks)
		dispatcher.GET("/trucks/:id/board", h.getTruckBoard)
	}

	mechanic := protected.Group("/mechanic")
	{
		mechanic.POST("/maintenance", h.openMaintenanceJob)
		mechanic.PUT("/maintenance/:id/close", h.closeMaintenanceJob)
		mechanic.PUT("/maintenance/:id/cancel", h.cancelMaintenanceJob)
		mechanic.GET("/trucks/:id/maintenance", h.listMaintenanceJobs)
	}

	admin := protected.Group("/admin")
	{
		admin.POST("/assignments", h.createAssignment)
		admin.DELETE("/assignments/:id", h.terminateAssignment)
		admin.GET("/assignments", h.listAssignments)
		admin.GET("/fleet/available-drivers", h.listAvailableDrivers)
		admin.GET("/fleet/available-trucks", h.listAvailableTrucks)
		admin.GET("/trucks/:id/board", h.getTruckBoard)
		// Продления
		admin.PUT("/trucks/:id/renewals/:type/start", h.startRenewal)
		admin.PUT("/trucks/:id/renewals/:type/complete", h.completeRenewal)
		admin.GET("/trucks/:id/renewals", h.listRenewalHistory)
		// Онбординг
		admin.POST("/trucks", h.registerTruck)
		admin.POST("/drivers", h.registerDriver)
	}

	driver := protected.Group("/driver")
	{
		driver.GET("/assignments", h.listAssignments)
		driver.GET("/assignments/:id", h.getAssignment)
	}
}

func (h *Handler) createAssignment(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		TruckID   string `json:"truck_id" binding:"required"`
		DriverID  string `json:"driver_id" binding:"required"`
		AdminName string `json:"admin_name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), principal, service.CreateAssignmentInput{
		TruckID:   req.TruckID,
		DriverID:  req.DriverID,
		AdminName: req.AdminName,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(assignment))
}

func (h *Handler) terminateAssignment(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid assignment id"))
		return
	}

	if err := h.assignmentService.Terminate(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "assignment terminated"}))
}

func (h *Handler) getAssignment(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid assignment id"))
		return
	}

	assignment, err := h.assignmentService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(assignment))
}

func (h *Handler) listAssignments(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	filter := repository.AssignmentListFilter{}

	if raw := strings.TrimSpace(c.Query("truck_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid truck_id"))
			return
		}
		filter.TruckID = &id
	}

	if raw := strings.TrimSpace(c.Query("driver_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
			return
		}
		filter.DriverID = &id
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.AssignmentStatus(strings.ToUpper(raw))
		filter.Status = &status
	}

	assignments, err := h.assignmentService.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(assignments))
}

func (h *Handler) listAvailableDrivers(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	drivers, err := h.fleetService.AvailableDrivers(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(drivers))
}

func (h *Handler) listAvailableTrucks(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var ownership *model.TruckOwnership
	if raw := strings.TrimSpace(c.Query("ownership")); raw != "" {
		o := model.TruckOwnership(strings.ToUpper(raw))
		if o != model.TruckOwnershipOwned && o != model.TruckOwnershipSubcontractor {
			c.JSON(http.StatusBadRequest, errorResponse("invalid ownership"))
			return
		}
		ownership = &o
	}

	trucks, err := h.fleetService.AvailableTrucks(c.Request.Context(), principal, ownership)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(trucks))
}

func (h *Handler) getTruckBoard(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid truck id"))
		return
	}

	board, err := h.fleetService.Board(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(board))
}

func (h *Handler) openMaintenanceJob(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		TruckID            string  `json:"truck_id" binding:"required"`
		Category           string  `json:"category" binding:"required"`
		ServiceDescription string  `json:"service_description"`
		StartDate          string  `json:"start_date" binding:"required"`
		LaborCost          float64 `json:"labor_cost"`
		PartsCost          float64 `json:"parts_cost"`
		Odometer           *int64  `json:"odometer"`
		Provider           string  `json:"provider"`
		PaymentMethod      string  `json:"payment_method"`
		ReceiptRef         *string `json:"receipt_ref"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	job, err := h.maintenanceService.Open(c.Request.Context(), principal, service.OpenJobInput{
		TruckID:            req.TruckID,
		Category:           strings.ToUpper(req.Category),
		ServiceDescription: req.ServiceDescription,
		StartDate:          req.StartDate,
		LaborCost:          req.LaborCost,
		PartsCost:          req.PartsCost,
		Odometer:           req.Odometer,
		Provider:           req.Provider,
		PaymentMethod:      req.PaymentMethod,
		ReceiptRef:         req.ReceiptRef,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(job))
}

func (h *Handler) closeMaintenanceJob(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid job id"))
		return
	}

	var req struct {
		EndDate             string  `json:"end_date" binding:"required"`
		LaborCost           float64 `json:"labor_cost"`
		PartsCost           float64 `json:"parts_cost"`
		FinalOdometer       *int64  `json:"final_odometer"`
		NextServiceOdometer *int64  `json:"next_service_odometer"`
		NextServiceDate     *string `json:"next_service_date"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	job, err := h.maintenanceService.Close(c.Request.Context(), principal, id, service.CloseJobInput{
		EndDate:             req.EndDate,
		LaborCost:           req.LaborCost,
		PartsCost:           req.PartsCost,
		FinalOdometer:       req.FinalOdometer,
		NextServiceOdometer: req.NextServiceOdometer,
		NextServiceDate:     req.NextServiceDate,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(job))
}

func (h *Handler) cancelMaintenanceJob(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid job id"))
		return
	}

	if err := h.maintenanceService.Cancel(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "maintenance job cancelled"}))
}

func (h *Handler) listMaintenanceJobs(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid truck id"))
		return
	}

	jobs, err := h.maintenanceService.ListByTruck(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(jobs))
}

func (h *Handler) startRenewal(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	truckID := strings.TrimSpace(c.Param("id"))
	renewalType := strings.ToUpper(strings.TrimSpace(c.Param("type")))

	var req struct {
		Responsible string `json:"responsible"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.renewalService.Start(c.Request.Context(), principal, truckID, renewalType, req.Responsible); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "renewal started"}))
}

func (h *Handler) completeRenewal(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	truckID := strings.TrimSpace(c.Param("id"))
	renewalType := strings.ToUpper(strings.TrimSpace(c.Param("type")))

	var req struct {
		NewExpiry     string  `json:"new_expiry" binding:"required"`
		Expense       float64 `json:"expense"`
		PaymentMethod string  `json:"payment_method"`
		DocumentRef   *string `json:"document_ref"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.renewalService.Complete(c.Request.Context(), principal, truckID, renewalType, service.CompleteRenewalInput{
		NewExpiry:     req.NewExpiry,
		Expense:       req.Expense,
		PaymentMethod: req.PaymentMethod,
		DocumentRef:   req.DocumentRef,
	}); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "renewal completed"}))
}

func (h *Handler) listRenewalHistory(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid truck id"))
		return
	}

	history, err := h.renewalService.History(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(history))
}

func (h *Handler) registerTruck(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		PlateNumber     string  `json:"plate_number" binding:"required"`
		Model           string  `json:"model"`
		Ownership       string  `json:"ownership"`
		CurrentOdometer int64   `json:"current_odometer"`
		TaxExpiry       *string `json:"tax_expiry"`
		InsuranceExpiry *string `json:"insurance_expiry"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	truck, err := h.registryService.RegisterTruck(c.Request.Context(), principal, service.RegisterTruckInput{
		PlateNumber:     req.PlateNumber,
		Model:           req.Model,
		Ownership:       strings.ToUpper(req.Ownership),
		CurrentOdometer: req.CurrentOdometer,
		TaxExpiry:       req.TaxExpiry,
		InsuranceExpiry: req.InsuranceExpiry,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(truck))
}

func (h *Handler) registerDriver(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		FullName string `json:"full_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driver, err := h.registryService.RegisterDriver(c.Request.Context(), principal, service.RegisterDriverInput{
		FullName: req.FullName,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(driver))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrTransient):
		// Конкурентные изменения не разрешились за отведённые попытки —
		// клиенту предлагается повторить запрос.
		c.JSON(http.StatusServiceUnavailable, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
