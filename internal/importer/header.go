// Package importer turns uploaded sales files into canonical sales
// events. Header names are matched against an alias table so files from
// different marketplaces map onto the same canonical fields.
package importer

import "strings"

// Canonical field names recognized by the row mapper.
const (
	FieldTransactionID          = "transaction_id"
	FieldTransactionDate        = "transaction_date"
	FieldTransactionType        = "transaction_type"
	FieldAmount                 = "amount"
	FieldShipping               = "shipping"
	FieldSalesTax               = "sales_tax"
	FieldCurrency               = "currency"
	FieldProvider               = "provider"
	FieldMarketplaceFacilitator = "marketplace_facilitator"
	FieldCustomerID             = "customer_id"
	FieldExemptionType          = "exemption_type"
	FieldShipToState            = "ship_to_state"
	FieldShipToZip              = "ship_to_zip"
	FieldShipToCity             = "ship_to_city"
)

// headerAliases maps each canonical field to its accepted aliases in
// priority order: the first alias that matches any column wins.
var headerAliases = map[string][]string{
	FieldTransactionID:          {"transaction_id", "transactionid", "txn_id", "order_id", "id"},
	FieldTransactionDate:        {"transaction_date", "date", "order_date", "txn_date", "sold_at"},
	FieldTransactionType:        {"transaction_type", "type"},
	FieldAmount:                 {"amount", "total", "total_amount", "gross_amount", "revenue", "sale_amount"},
	FieldShipping:               {"shipping", "shipping_amount", "freight"},
	FieldSalesTax:               {"sales_tax", "tax", "tax_amount", "tax_collected"},
	FieldCurrency:               {"currency", "currency_code"},
	FieldProvider:               {"provider", "marketplace", "channel", "platform", "source"},
	FieldMarketplaceFacilitator: {"marketplace_facilitator", "facilitator", "mf"},
	FieldCustomerID:             {"customer_id", "customer", "buyer_id"},
	FieldExemptionType:          {"exemption_type", "exemption", "tax_exemption"},
	FieldShipToState:            {"ship_to_state", "state", "ship_state", "destination_state", "to_state"},
	FieldShipToZip:              {"ship_to_zip", "zip", "postal_code", "ship_zip"},
	FieldShipToCity:             {"ship_to_city", "city", "ship_city"},
}

// FieldIndex maps canonical field names to column positions; absent
// fields hold -1 and the row mapper supplies the documented default.
type FieldIndex map[string]int

// MapHeaders resolves an uploaded file's header row to canonical column
// positions. Matching is case-insensitive after trimming whitespace and
// surrounding quotes.
func MapHeaders(headers []string) FieldIndex {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.ToLower(cleanField(h))
	}

	index := make(FieldIndex, len(headerAliases))
	for field, aliases := range headerAliases {
		index[field] = -1
		for _, alias := range aliases {
			if col := indexOf(normalized, alias); col >= 0 {
				index[field] = col
				break
			}
		}
	}
	return index
}

func indexOf(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}

// get returns the cleaned cell for a canonical field, or "" when the
// column is absent or the row is short.
func (ix FieldIndex) get(row []string, field string) string {
	col, ok := ix[field]
	if !ok || col < 0 || col >= len(row) {
		return ""
	}
	return cleanField(row[col])
}

func cleanField(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), `"`)
}
