package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/response"
)

// SenderProfileHandler handles sender profiles and their bank accounts
type SenderProfileHandler struct {
	profileService *service.SenderProfileService
}

// NewSenderProfileHandler creates a new sender profile handler
func NewSenderProfileHandler(profileService *service.SenderProfileService) *SenderProfileHandler {
	return &SenderProfileHandler{profileService: profileService}
}

func profileInput(req *request.SenderProfileRequest) *service.SenderProfileInput {
	return &service.SenderProfileInput{
		Name:                 req.Name,
		Email:                req.Email,
		Phone:                req.Phone,
		TaxID:                req.TaxID,
		Address:              req.Address,
		InvoicePrefix:        req.InvoicePrefix,
		DefaultBankAccountID: req.DefaultBankAccountID,
	}
}

// List handles listing sender profiles
func (h *SenderProfileHandler) List(c *gin.Context) {
	if !requireUser(c) {
		return
	}

	result, err := h.profileService.ListSenderProfiles(c.Request.Context(), pageParams(c), c.Query("search"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Sender profiles retrieved successfully", result)
}

// Create handles creating a sender profile
func (h *SenderProfileHandler) Create(c *gin.Context) {
	if !requireUser(c) {
		return
	}

	var req request.SenderProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	profile, err := h.profileService.CreateSenderProfile(c.Request.Context(), profileInput(&req))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, "Sender profile created successfully", profile)
}

// Get handles getting a single sender profile with its bank accounts
func (h *SenderProfileHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "sender profile")
	if !ok {
		return
	}

	profile, err := h.profileService.GetSenderProfile(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Sender profile retrieved successfully", profile)
}

// Update handles updating a sender profile
func (h *SenderProfileHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "sender profile")
	if !ok {
		return
	}

	var req request.SenderProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	profile, err := h.profileService.UpdateSenderProfile(c.Request.Context(), id, profileInput(&req))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Sender profile updated successfully", profile)
}

// Delete handles deleting a sender profile
func (h *SenderProfileHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "sender profile")
	if !ok {
		return
	}

	if err := h.profileService.DeleteSenderProfile(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	response.NoContent(c)
}

// ListBankAccounts lists the bank accounts of a sender profile
func (h *SenderProfileHandler) ListBankAccounts(c *gin.Context) {
	id, ok := paramID(c, "id", "sender profile")
	if !ok {
		return
	}

	accounts, err := h.profileService.ListBankAccounts(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Bank accounts retrieved successfully", accounts)
}

// AddBankAccount adds a bank account to a sender profile
func (h *SenderProfileHandler) AddBankAccount(c *gin.Context) {
	id, ok := paramID(c, "id", "sender profile")
	if !ok {
		return
	}

	var req request.BankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	account, err := h.profileService.AddBankAccount(c.Request.Context(), id, &service.BankAccountInput{
		BankName:      req.BankName,
		AccountHolder: req.AccountHolder,
		AccountNumber: req.AccountNumber,
		SwiftCode:     req.SwiftCode,
		Currency:      req.Currency,
		MakeDefault:   req.MakeDefault,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, "Bank account created successfully", account)
}

// UpdateBankAccount updates a bank account. Its currency cannot change.
func (h *SenderProfileHandler) UpdateBankAccount(c *gin.Context) {
	accountID, ok := paramID(c, "accountId", "bank account")
	if !ok {
		return
	}

	var req request.BankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	account, err := h.profileService.UpdateBankAccount(c.Request.Context(), accountID, &service.BankAccountInput{
		BankName:      req.BankName,
		AccountHolder: req.AccountHolder,
		AccountNumber: req.AccountNumber,
		SwiftCode:     req.SwiftCode,
		Currency:      req.Currency,
		MakeDefault:   req.MakeDefault,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, "Bank account updated successfully", account)
}

// DeleteBankAccount deletes a bank account
func (h *SenderProfileHandler) DeleteBankAccount(c *gin.Context) {
	accountID, ok := paramID(c, "accountId", "bank account")
	if !ok {
		return
	}

	if err := h.profileService.DeleteBankAccount(c.Request.Context(), accountID); err != nil {
		handleError(c, err)
		return
	}

	response.NoContent(c)
}
