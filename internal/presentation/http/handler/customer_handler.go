package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/response"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService *service.CustomerService
	priceService    *service.CustomPriceService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService, priceService *service.CustomPriceService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		priceService:    priceService,
	}
}

// List handles listing customers
func (h *CustomerHandler) List(c *gin.Context) {
	if !requireUser(c) {
		return
	}

	result, err := h.customerService.ListCustomers(c.Request.Context(), pageParams(c), c.Query("search"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Customers retrieved successfully", result)
}

// Create handles creating a customer
func (h *CustomerHandler) Create(c *gin.Context) {
	if !requireUser(c) {
		return
	}

	var req request.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), &service.CreateCustomerInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		TaxID:    req.TaxID,
		Address:  req.Address,
		Currency: req.Currency,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, "Customer created successfully", customer)
}

// Get handles getting a single customer
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Customer retrieved successfully", customer)
}

// Update handles updating a customer
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "customer")
	if !ok {
		return
	}

	var req request.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), &service.UpdateCustomerInput{
		ID:       id,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		TaxID:    req.TaxID,
		Address:  req.Address,
		Currency: req.Currency,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Customer updated successfully", customer)
}

// Delete handles deleting a customer
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "customer")
	if !ok {
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	response.NoContent(c)
}

// ListPrices lists the custom prices of a customer
func (h *CustomerHandler) ListPrices(c *gin.Context) {
	id, ok := paramID(c, "id", "customer")
	if !ok {
		return
	}

	prices, err := h.priceService.ListForCustomer(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Custom prices retrieved successfully", prices)
}

// SetPrice creates or replaces a customer's price for a product
func (h *CustomerHandler) SetPrice(c *gin.Context) {
	id, ok := paramID(c, "id", "customer")
	if !ok {
		return
	}

	var req request.SetCustomPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	price, err := h.priceService.SetCustomPrice(c.Request.Context(), &service.SetCustomPriceInput{
		CustomerID: id,
		ProductID:  req.ProductID,
		Price:      req.Price,
		Currency:   req.Currency,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Custom price saved successfully", price)
}

// DeletePrice removes a custom price
func (h *CustomerHandler) DeletePrice(c *gin.Context) {
	priceID, ok := paramID(c, "priceId", "custom price")
	if !ok {
		return
	}

	if err := h.priceService.DeleteCustomPrice(c.Request.Context(), priceID); err != nil {
		handleError(c, err)
		return
	}

	response.NoContent(c)
}
