package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/global-bites/services"
	"github.com/yeremiapane/global-bites/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

type orderItemRequest struct {
	DishID   string      `json:"dish_id"`
	Quantity json.Number `json:"quantity"`
}

type createOrderRequest struct {
	Items []orderItemRequest `json:"items"`
	// Total is what the client displayed. It is logged and otherwise ignored.
	Total *json.Number `json:"total,omitempty"`
}

// quantity returns 0 for anything that is not a whole number so the service rejects it.
func (r orderItemRequest) quantity() int {
	q, err := strconv.Atoi(r.Quantity.String())
	if err != nil {
		return 0
	}
	return q
}

// CreateOrder -> price the cart server-side and store it as pending
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var body createOrderRequest
	if !bindJSON(c, &body) {
		return
	}

	cart := make([]services.CartItem, len(body.Items))
	for i, item := range body.Items {
		cart[i] = services.CartItem{DishID: item.DishID, Quantity: item.quantity()}
	}

	order, err := oc.Orders.PlaceOrder(c.Request.Context(), cart)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if body.Total != nil && body.Total.String() != order.TotalPrice.String() {
		utils.InfoLogger.WithFields(logrus.Fields{
			"order_id":     order.ID,
			"client_total": body.Total.String(),
			"total":        order.TotalPrice.StringFixed(2),
		}).Info("Client total differs from computed total")
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

// GetOrder -> order with items, used by the customer confirmation page
func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.Orders.GetOrder(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order details", order)
}

// ListOrders -> newest first, optional ?status=
func (oc *OrderController) ListOrders(c *gin.Context) {
	page := utils.PaginationFromQuery(c)
	orders, total, err := oc.Orders.ListOrders(c.Request.Context(), c.Query("status"), page)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", utils.PageResult{
		Items:    orders,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	})
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &body) {
		return
	}

	order, err := oc.Orders.TransitionStatus(c.Request.Context(), c.Param("order_id"), body.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}
