package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// LocationSortFields contains allowed sort fields for locations
var LocationSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"kind":       true,
	"name":       true,
}

// StockItemSortFields contains allowed sort fields for stock items
var StockItemSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"sku":         true,
	"name":        true,
	"category":    true,
	"location_id": true,
	"reserved":    true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"client_id":    true,
	"client_name":  true,
	"status":       true,
	"total_price":  true,
	"paid":         true,
	"remaining":    true,
	"delivered_at": true,
	"finished_at":  true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_id":     true,
	"amount":       true,
	"status":       true,
	"type":         true,
	"payment_date": true,
}

// CustodySortFields contains allowed sort fields for custody records
var CustodySortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"order_id":    true,
	"type":        true,
	"status":      true,
	"returned_at": true,
}

// TransferSortFields contains allowed sort fields for transfers
var TransferSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"status":        true,
	"transfer_date": true,
}
