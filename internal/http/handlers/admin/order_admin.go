package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/compoundrx/storefront/internal/http/response"
	"github.com/compoundrx/storefront/internal/repository"
	"github.com/compoundrx/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderStatusRequest moves an order to a new status.
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

var orderAdminErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest, msg: "status transition not allowed"},
	{target: service.ErrOrderCancelNotAllowed, code: response.CodeBadRequest, msg: "order can no longer be cancelled"},
}

// GetAdminOrders lists orders with filtering.
func (h *Handler) GetAdminOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
		OrderNo:       strings.TrimSpace(c.Query("order_no")),
	}
	if raw := c.Query("user_id"); raw != "" {
		if uid, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.UserID = uint(uid)
		}
	}
	if from, ok := parseTimeQuery(c.Query("created_from")); ok {
		filter.CreatedFrom = &from
	}
	if to, ok := parseTimeQuery(c.Query("created_to")); ok {
		filter.CreatedTo = &to
	}

	orders, total, err := h.OrderService.ListOrders(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, orders, pagination)
}

// GetAdminOrder returns one order with its items.
func (h *Handler) GetAdminOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrder(id)
	if err != nil {
		respondWithMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "order fetch failed")
		return
	}
	response.Success(c, order)
}

// UpdateAdminOrderStatus moves an order along its lifecycle. Re-applying
// the current status succeeds without effect.
func (h *Handler) UpdateAdminOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.OrderService.UpdateOrderStatus(id, strings.TrimSpace(req.Status)); err != nil {
		respondWithMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "order update failed")
		return
	}
	response.Success(c, gin.H{"updated": true})
}

func parseTimeQuery(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
