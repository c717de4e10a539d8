package request

import "github.com/sangkips/invoicer-api/internal/domain/enum"

// InvoiceFilterRequest represents invoice filter parameters. customer_id and
// sender_profile_id are read separately as uuids.
type InvoiceFilterRequest struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	From      string `form:"from"`
	To        string `form:"to"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}

// ChangeStatusRequest moves an invoice to another status. The status may be
// sent by name or by number.
type ChangeStatusRequest struct {
	Status *enum.InvoiceStatus `json:"status" binding:"required"`
}
