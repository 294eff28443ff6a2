package controllers

import (
	"net/http"
	"strings"

	apperrors "attire-service/common/errors"
	"attire-service/models"
	"attire-service/services"

	"github.com/gin-gonic/gin"
)

type CustomerController struct {
	customerService *services.CustomerService
}

func NewCustomerController(customerService *services.CustomerService) *CustomerController {
	return &CustomerController{customerService: customerService}
}

// ListCustomers handles GET /customers. A search term switches to the
// unpaginated name/phone lookup.
func (cc *CustomerController) ListCustomers(c *gin.Context) {
	if term := strings.TrimSpace(c.Query("search")); term != "" {
		_, limit := parsePaginationParams(c)
		customers, err := cc.customerService.Search(c.Request.Context(), term, limit)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"customers": customers})
		return
	}

	page, limit := parsePaginationParams(c)
	result, err := cc.customerService.List(c.Request.Context(), page, limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var req models.CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := cc.customerService.Create(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GetCustomer returns the customer profile with orders and totals
func (cc *CustomerController) GetCustomer(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	profile, err := cc.customerService.Profile(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req models.CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := cc.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := cc.customerService.Delete(c.Request.Context(), id); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
