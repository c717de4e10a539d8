package handler

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/domain/repository"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/response"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService *service.ProductService
	maxUploadSize  int64
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService, maxUploadSize int64) *ProductHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 10 << 20
	}
	return &ProductHandler{
		productService: productService,
		maxUploadSize:  maxUploadSize,
	}
}

// List handles listing products
func (h *ProductHandler) List(c *gin.Context) {
	if !requireUser(c) {
		return
	}

	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.ProductFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search:     filter.Search,
		Currency:   strings.ToUpper(filter.Currency),
		ActiveOnly: filter.ActiveOnly,
		SortBy:     filter.SortBy,
		SortOrder:  filter.SortOrder,
	}

	result, err := h.productService.ListProducts(c.Request.Context(), params)
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Products retrieved successfully", result)
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	if !requireUser(c) {
		return
	}

	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Unit:        req.Unit,
		Price:       req.Price,
		Currency:    req.Currency,
		IsActive:    req.IsActive,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// Get handles getting a single product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}

	var req request.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), &service.UpdateProductInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Unit:        req.Unit,
		Price:       req.Price,
		Currency:    req.Currency,
		IsActive:    req.IsActive,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	response.NoContent(c)
}

// Import bulk-creates products from an uploaded .xlsx workbook
func (h *ProductHandler) Import(c *gin.Context) {
	if !requireUser(c) {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "An .xlsx file is required in the 'file' field")
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".xlsx") {
		response.BadRequest(c, "Only .xlsx files are supported")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Could not read the uploaded file")
		return
	}
	defer file.Close()

	result, err := h.productService.ImportProducts(c.Request.Context(), file, c.PostForm("currency"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Products imported", result)
}

// ImportTemplate downloads an import workbook with an example row
func (h *ProductHandler) ImportTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.productService.WriteImportTemplate(&buf); err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="products-template.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
