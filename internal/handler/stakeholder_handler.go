package handler

import (
	"net/http"

	"pharmaledger/internal/middleware"
	"pharmaledger/internal/model"
	"pharmaledger/internal/service"
	"pharmaledger/pkg/apperror"
	"pharmaledger/pkg/pagination"
	"pharmaledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StakeholderHandler struct {
	stakeholderService service.StakeholderService
}

func NewStakeholderHandler(stakeholderService service.StakeholderService) *StakeholderHandler {
	return &StakeholderHandler{stakeholderService: stakeholderService}
}

func (h *StakeholderHandler) RegisterRoutes(router *gin.RouterGroup) {
	stakeholders := router.Group("/api/stakeholders")
	{
		stakeholders.GET("", middleware.RequirePermission(model.ModuleStakeholders, model.ActionRead), h.List)
		stakeholders.GET("/:id", middleware.RequirePermission(model.ModuleStakeholders, model.ActionRead), h.GetByID)
		stakeholders.POST("", middleware.RequirePermission(model.ModuleStakeholders, model.ActionCreate), h.Create)
	}
}

// List handles GET /api/stakeholders
// @Summary      List stakeholders
// @Tags         stakeholders
// @Produce      json
// @Security     BearerAuth
// @Param        type   query  string  false  "Stakeholder type filter"
// @Param        page   query  int     false  "Page"
// @Param        limit  query  int     false  "Page size"
// @Success      200  {object}  response.Response{data=[]service.StakeholderResponse}
// @Router       /api/stakeholders [get]
func (h *StakeholderHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	stakeholders, total, err := h.stakeholderService.List(c.Request.Context(), c.Query("type"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"stakeholders": stakeholders,
		"pagination": response.Pagination{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: pagination.TotalPages(total, params.Limit),
		},
	}))
}

// GetByID handles GET /api/stakeholders/:id
// @Summary      Get stakeholder by id
// @Tags         stakeholders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Stakeholder id"
// @Success      200  {object}  response.Response{data=service.StakeholderResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/stakeholders/{id} [get]
func (h *StakeholderHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperror.ErrNotFound)
		return
	}

	stakeholder, err := h.stakeholderService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stakeholder))
}

// Create handles POST /api/stakeholders
// @Summary      Create stakeholder
// @Tags         stakeholders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateStakeholderRequest  true  "Stakeholder payload"
// @Success      201      {object}  response.Response{data=service.StakeholderResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/stakeholders [post]
func (h *StakeholderHandler) Create(c *gin.Context) {
	var req service.CreateStakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	stakeholder, err := h.stakeholderService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, stakeholder))
}
