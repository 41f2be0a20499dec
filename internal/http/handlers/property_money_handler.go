// README: PropertyMoney REST handlers (create, update, list, get, delete).
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"propertyapi/internal/logger"
	"propertyapi/internal/modules/propertymoney"
	"propertyapi/internal/types"
)

const PropertyMoniesPath = "/api/property-monies"

type PropertyMoneyService interface {
	Save(ctx context.Context, pm propertymoney.PropertyMoney) (propertymoney.PropertyMoney, error)
	FindAll(ctx context.Context, p types.Pageable) (types.Page[propertymoney.PropertyMoney], error)
	FindOne(ctx context.Context, id int64) (propertymoney.PropertyMoney, bool, error)
	Delete(ctx context.Context, id int64) error
}

type PropertyMoneyHandler struct {
	svc     PropertyMoneyService
	headers HeaderUtil
	log     logger.Logger
}

func NewPropertyMoneyHandler(svc PropertyMoneyService, headers HeaderUtil, log logger.Logger) *PropertyMoneyHandler {
	return &PropertyMoneyHandler{svc: svc, headers: headers, log: log}
}

// Create handles POST /api/property-monies.
func (h *PropertyMoneyHandler) Create(c *gin.Context) {
	var pm propertymoney.PropertyMoney
	if err := c.ShouldBindJSON(&pm); err != nil {
		writeBindError(c, propertymoney.EntityName, err)
		return
	}
	h.log.Debugf("REST request to save PropertyMoney : %s", pm)
	if pm.ID != nil {
		writeBadRequestAlert(c, h.headers, "A new propertyMoney cannot already have an ID", propertymoney.EntityName, "idexists")
		return
	}
	result, err := h.svc.Save(c.Request.Context(), pm)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	id := strconv.FormatInt(*result.ID, 10)
	c.Header("Location", PropertyMoniesPath+"/"+id)
	h.headers.EntityCreationAlert(c.Writer.Header(), propertymoney.EntityName, id)
	writeJSON(c, http.StatusCreated, result)
}

// Update handles PUT /api/property-monies.
func (h *PropertyMoneyHandler) Update(c *gin.Context) {
	var pm propertymoney.PropertyMoney
	if err := c.ShouldBindJSON(&pm); err != nil {
		writeBindError(c, propertymoney.EntityName, err)
		return
	}
	h.log.Debugf("REST request to update PropertyMoney : %s", pm)
	if pm.ID == nil {
		writeBadRequestAlert(c, h.headers, "Invalid id", propertymoney.EntityName, "idnull")
		return
	}
	result, err := h.svc.Save(c.Request.Context(), pm)
	if errors.Is(err, propertymoney.ErrNotFound) {
		writeBadRequestAlert(c, h.headers, "Entity not found", propertymoney.EntityName, "idnotfound")
		return
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	h.headers.EntityUpdateAlert(c.Writer.Header(), propertymoney.EntityName, strconv.FormatInt(*pm.ID, 10))
	writeJSON(c, http.StatusOK, result)
}

// List handles GET /api/property-monies?page=&size=&sort=.
func (h *PropertyMoneyHandler) List(c *gin.Context) {
	h.log.Debugf("REST request to get a page of PropertyMonies")
	pageable, err := ParsePageable(c, propertymoney.IsSortable)
	if err != nil {
		writeHTTPProblem(c, http.StatusBadRequest, err.Error())
		return
	}
	page, err := h.svc.FindAll(c.Request.Context(), pageable)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	PaginationHeaders(c.Writer.Header(), page, PropertyMoniesPath)
	writeJSON(c, http.StatusOK, page.Content)
}

// Get handles GET /api/property-monies/:id.
func (h *PropertyMoneyHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	h.log.Debugf("REST request to get PropertyMoney : %d", id)
	pm, found, err := h.svc.FindOne(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !found {
		writeHTTPProblem(c, http.StatusNotFound, "")
		return
	}
	writeJSON(c, http.StatusOK, pm)
}

// Delete handles DELETE /api/property-monies/:id. A missing id still succeeds.
func (h *PropertyMoneyHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	h.log.Debugf("REST request to delete PropertyMoney : %d", id)
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	h.headers.EntityDeletionAlert(c.Writer.Header(), propertymoney.EntityName, strconv.FormatInt(id, 10))
	c.Status(http.StatusOK)
}
