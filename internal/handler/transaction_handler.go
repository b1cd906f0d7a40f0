package handler

import (
	"net/http"
	"strconv"

	"pharmaledger/internal/middleware"
	"pharmaledger/internal/scope"
	"pharmaledger/internal/service"
	"pharmaledger/pkg/apperror"
	"pharmaledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TransactionHandler struct {
	txService service.TransactionService
}

func NewTransactionHandler(txService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txService: txService}
}

// RegisterRoutes binds the transaction endpoints. The group must already run
// the Authenticate middleware; module- and record-level checks happen in the
// service.
func (h *TransactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	txs := router.Group("/api/transactions")
	{
		txs.GET("", h.List)
		txs.POST("", h.Create)
		txs.GET("/:id", h.GetByID)
		txs.PUT("/:id", h.Update)
		txs.DELETE("/:id", h.Delete)
	}
}

// List returns the transactions visible to the caller
// @Summary      List transactions
// @Description  Lists transactions within the caller's visibility scope, newest first
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        category         query  string  false  "Category filter"
// @Param        stakeholderId    query  string  false  "Stakeholder id filter"
// @Param        stakeholderType  query  string  false  "Stakeholder type filter"
// @Param        startDate        query  string  false  "Inclusive lower date bound"
// @Param        endDate          query  string  false  "Inclusive upper date bound"
// @Param        page             query  int     false  "Page (default 1)"
// @Param        limit            query  int     false  "Page size (1-100, default 50)"
// @Success      200  {object}  response.Response{data=service.TransactionListResult}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		respondError(c, apperror.ErrUnauthenticated)
		return
	}

	filters := scope.Filters{
		Category:        c.Query("category"),
		StakeholderType: c.Query("stakeholderType"),
	}

	if raw := c.Query("stakeholderId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, apperror.Validation(apperror.FieldError{Field: "stakeholderId", Message: "must be a valid uuid"}))
			return
		}
		filters.StakeholderID = &id
	}

	from, ok := parseDateParam(c.Query("startDate"), false)
	if !ok {
		respondError(c, apperror.Validation(apperror.FieldError{Field: "startDate", Message: "must be a date or RFC3339 timestamp"}))
		return
	}
	filters.DateFrom = from

	to, ok := parseDateParam(c.Query("endDate"), true)
	if !ok {
		respondError(c, apperror.Validation(apperror.FieldError{Field: "endDate", Message: "must be a date or RFC3339 timestamp"}))
		return
	}
	filters.DateTo = to

	// Non-numeric page/limit fall back to defaults inside Normalize.
	filters.Page, _ = strconv.Atoi(c.Query("page"))
	filters.Limit, _ = strconv.Atoi(c.Query("limit"))

	result, err := h.txService.List(c.Request.Context(), p, filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Create records a new transaction
// @Summary      Create transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTransactionRequest  true  "Transaction payload"
// @Success      201      {object}  response.Response{data=service.TransactionResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		respondError(c, apperror.ErrUnauthenticated)
		return
	}

	var req service.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tx, err := h.txService.Create(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tx))
}

// GetByID returns a single transaction after the record-level check
// @Summary      Get transaction by id
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transaction id"
// @Success      200  {object}  response.Response{data=service.TransactionResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		respondError(c, apperror.ErrUnauthenticated)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperror.ErrNotFound)
		return
	}

	tx, err := h.txService.GetByID(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tx))
}

// Update patches a transaction
// @Summary      Update transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Transaction id"
// @Param        payload  body      service.UpdateTransactionRequest  true  "Fields to update"
// @Success      200      {object}  response.Response{data=service.TransactionResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		respondError(c, apperror.ErrUnauthenticated)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperror.ErrNotFound)
		return
	}

	var req service.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tx, err := h.txService.Update(c.Request.Context(), p, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tx))
}

// Delete permanently removes a transaction
// @Summary      Delete transaction
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transaction id"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		respondError(c, apperror.ErrUnauthenticated)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperror.ErrNotFound)
		return
	}

	deletedID, err := h.txService.Delete(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deletedId": deletedID.String()}))
}
