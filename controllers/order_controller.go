package controllers

import (
	"context"
	"errors"
	"net/http"

	apperrors "attire-service/common/errors"
	"attire-service/models"
	"attire-service/services"
	"attire-service/status"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderController struct {
	orderService *services.OrderService
}

func NewOrderController(orderService *services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// ListOrders handles GET /orders
func (oc *OrderController) ListOrders(c *gin.Context) {
	filter := models.OrderFilter{
		Type:        models.OrderType(c.Query("type")),
		Fulfillment: models.FulfillmentState(c.Query("status")),
		Search:      c.Query("search"),
	}
	if raw := c.Query("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apperrors.Respond(c, apperrors.BadRequest(errors.New("invalid customer_id")))
			return
		}
		filter.CustomerID = id
	}
	page, limit := parsePaginationParams(c)

	result, err := oc.orderService.ListOrders(c.Request.Context(), filter, page, limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PlaceOrder handles POST /orders
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var req models.PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oc.orderService.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, oc.view(order))
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	order, err := oc.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, oc.view(order))
}

func (oc *OrderController) EditOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req models.EditOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oc.orderService.EditOrder(c.Request.Context(), id, &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, oc.view(order))
}

func (oc *OrderController) RecordPayment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req models.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oc.orderService.RecordPayment(c.Request.Context(), id, req.Amount, req.Note)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, oc.view(order))
}

func (oc *OrderController) DispatchOrder(c *gin.Context) {
	oc.transition(c, oc.orderService.DispatchOrder)
}

func (oc *OrderController) CancelOrder(c *gin.Context) {
	oc.transition(c, oc.orderService.CancelOrder)
}

func (oc *OrderController) RefundDeposit(c *gin.Context) {
	oc.transition(c, oc.orderService.RefundDeposit)
}

func (oc *OrderController) MarkItemReturned(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUIDParam(c, "item_id")
	if !ok {
		return
	}
	order, err := oc.orderService.MarkItemReturned(c.Request.Context(), id, itemID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, oc.view(order))
}

type transitionFunc func(ctx context.Context, id uuid.UUID) (*models.Order, error)

func (oc *OrderController) transition(c *gin.Context, fn transitionFunc) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	order, err := fn(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, oc.view(order))
}

func (oc *OrderController) view(order *models.Order) status.OrderView {
	return status.OrderView{Order: order, Status: status.Derive(order, oc.orderService.Now())}
}
