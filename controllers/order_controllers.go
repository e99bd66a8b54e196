package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chaiadda/backend/models"
	"github.com/chaiadda/backend/services"
	"github.com/chaiadda/backend/utils"
)

// OrderController is the thin HTTP layer over the order lifecycle engine.
// Every transition decision lives in the service.
type OrderController struct {
	Service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{Service: service}
}

// actorFrom rebuilds the authenticated principal set by the auth middleware.
func actorFrom(c *gin.Context) services.Actor {
	id, _ := c.Get("user_id")
	role, _ := c.Get("role")

	actor := services.Actor{}
	if uid, ok := id.(uint); ok {
		actor.ID = uid
	}
	if r, ok := role.(string); ok {
		actor.Role = r
	}
	return actor
}

func orderIDParam(c *gin.Context) uint {
	id, _ := strconv.Atoi(c.Param("order_id"))
	return uint(id)
}

// PlaceOrder -> POST /api/orders
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var req struct {
		Items         []services.PlacedItem `json:"items" binding:"required"`
		Notes         string                `json:"notes"`
		ScheduledTime *time.Time            `json:"scheduled_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.PlaceOrder(actorFrom(c), req.Items, req.Notes, req.ScheduledTime)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

// GetMyOrders -> GET /api/orders/my-orders
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	orders, err := oc.Service.ListMyOrders(actorFrom(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "My orders", orders)
}

// GetAllOrders -> GET /api/orders?status=Pending (admin)
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	status := c.Query("status")
	if !statusFilterValid(status) {
		utils.RespondError(c, http.StatusBadRequest,
			utils.Errorf(utils.KindInvalidInput, "invalid status filter: %s", status))
		return
	}

	orders, err := oc.Service.ListAllOrders(status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All orders", orders)
}

// GetOrder -> GET /api/orders/:order_id
func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.Service.GetOrder(orderIDParam(c), actorFrom(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// AcceptOrder -> PATCH /api/orders/:order_id/accept (admin)
//
// The pickup time is computed here, not in the engine: base time is the
// scheduled time for scheduled orders, otherwise now, plus the prep
// minutes the admin chose.
func (oc *OrderController) AcceptOrder(c *gin.Context) {
	var req struct {
		PickupTime  *time.Time `json:"pickup_time"`
		PrepMinutes int        `json:"prep_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	pickup := time.Time{}
	switch {
	case req.PickupTime != nil:
		pickup = *req.PickupTime
	case req.PrepMinutes > 0:
		base := time.Now()
		if order, err := oc.Service.GetOrder(orderIDParam(c), actorFrom(c)); err == nil && order.IsScheduled && order.ScheduledTime != nil {
			base = *order.ScheduledTime
		}
		pickup = base.Add(time.Duration(req.PrepMinutes) * time.Minute)
	default:
		utils.RespondError(c, http.StatusBadRequest,
			utils.Errorf(utils.KindInvalidInput, "pickup_time or prep_minutes is required"))
		return
	}

	order, err := oc.Service.AcceptOrder(orderIDParam(c), pickup)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order accepted", order)
}

// RejectOrder -> PATCH /api/orders/:order_id/reject (admin)
func (oc *OrderController) RejectOrder(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional for a rejection without a reason.
	_ = c.ShouldBindJSON(&req)

	order, err := oc.Service.RejectOrder(orderIDParam(c), req.Reason)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order rejected", order)
}

// UpdateOrderStatus -> PATCH /api/orders/:order_id/status (admin)
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Service.AdvanceStatus(orderIDParam(c), req.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// CancelOrder -> POST /api/orders/:order_id/cancel
func (oc *OrderController) CancelOrder(c *gin.Context) {
	order, err := oc.Service.CancelOrder(orderIDParam(c), actorFrom(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", order)
}

// GetDailyStats -> GET /api/orders/stats/daily (admin)
func (oc *OrderController) GetDailyStats(c *gin.Context) {
	stats, err := oc.Service.GetDailyStats()
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Daily stats", stats)
}

// statusFilterValid guards list filters against junk values.
func statusFilterValid(status string) bool {
	switch status {
	case "", models.OrderStatusPending, models.OrderStatusAccepted, models.OrderStatusRejected,
		models.OrderStatusReady, models.OrderStatusCompleted, models.OrderStatusCancelled:
		return true
	}
	return false
}
