package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/invoicer-api/internal/application/editor"
	"github.com/sangkips/invoicer-api/internal/presentation/http/dto/response"
	"github.com/sangkips/invoicer-api/pkg/apperror"
	"github.com/sangkips/invoicer-api/pkg/pagination"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserRoles extracts the user roles from the Gin context
func GetUserRoles(c *gin.Context) []string {
	roles, exists := c.Get("user_roles")
	if !exists {
		return nil
	}
	list, _ := roles.([]string)
	return list
}

// requireUser writes a 401 and returns false when the request is anonymous
func requireUser(c *gin.Context) bool {
	if GetUserID(c) == nil {
		response.Unauthorized(c, "User not authenticated")
		return false
	}
	return true
}

// paramID parses a uuid path parameter, answering 400 when it is malformed
func paramID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional uuid query parameter. Malformed values are ignored.
func queryID(c *gin.Context, name string) *uuid.UUID {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func pageParams(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	return &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	}
}

// editorErrors maps the editor's sentinel errors to HTTP statuses
var editorErrors = []struct {
	err  error
	code int
}{
	{editor.ErrUnknownField, http.StatusBadRequest},
	{editor.ErrInvalidFieldValue, http.StatusBadRequest},
	{editor.ErrIndexOutOfRange, http.StatusBadRequest},
	{editor.ErrItemNotFound, http.StatusNotFound},
	{editor.ErrUnknownSenderProfile, http.StatusUnprocessableEntity},
	{editor.ErrUnknownBankAccount, http.StatusUnprocessableEntity},
	{editor.ErrUnknownCustomer, http.StatusUnprocessableEntity},
	{editor.ErrUnknownProduct, http.StatusUnprocessableEntity},
	{editor.ErrSenderNotSelectable, http.StatusUnprocessableEntity},
	{editor.ErrBankAccountNotAvailable, http.StatusUnprocessableEntity},
	{editor.ErrSaveInProgress, http.StatusConflict},
}

// handleError answers with the status of err. Application errors keep their
// own code; editor errors are translated first.
func handleError(c *gin.Context, err error) {
	if !apperror.IsAppError(err) {
		for _, e := range editorErrors {
			if errors.Is(err, e.err) {
				response.Error(c, apperror.Wrap(e.code, err.Error(), err))
				return
			}
		}
	}
	response.Error(c, err)
}
