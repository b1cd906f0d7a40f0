package handler

import (
	"net/http"

	"pharmaledger/internal/middleware"
	"pharmaledger/internal/model"
	"pharmaledger/internal/service"
	"pharmaledger/pkg/apperror"
	"pharmaledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UnitHandler struct {
	unitService service.UnitService
}

func NewUnitHandler(unitService service.UnitService) *UnitHandler {
	return &UnitHandler{unitService: unitService}
}

func (h *UnitHandler) RegisterRoutes(router *gin.RouterGroup) {
	units := router.Group("/api/units")
	{
		units.GET("", middleware.RequirePermission(model.ModuleUnits, model.ActionRead), h.List)
		units.GET("/:id", middleware.RequirePermission(model.ModuleUnits, model.ActionRead), h.GetByID)
		units.POST("", middleware.RequirePermission(model.ModuleUnits, model.ActionCreate), h.Create)
	}
}

// List handles GET /api/units
// @Summary      List units
// @Tags         units
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.UnitResponse}
// @Router       /api/units [get]
func (h *UnitHandler) List(c *gin.Context) {
	units, err := h.unitService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, units))
}

// GetByID handles GET /api/units/:id
// @Summary      Get unit by id
// @Tags         units
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Unit id"
// @Success      200  {object}  response.Response{data=service.UnitResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/units/{id} [get]
func (h *UnitHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperror.ErrNotFound)
		return
	}

	unit, err := h.unitService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, unit))
}

// Create handles POST /api/units
// @Summary      Create unit
// @Tags         units
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateUnitRequest  true  "Unit payload"
// @Success      201      {object}  response.Response{data=service.UnitResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/units [post]
func (h *UnitHandler) Create(c *gin.Context) {
	var req service.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	unit, err := h.unitService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, unit))
}
