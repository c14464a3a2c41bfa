package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	transactiondomain "github.com/nexorahq/nexora/internal/transaction/domain"
)

// Result is the outcome of mapping one uploaded file. Row-level
// problems are counted rather than raised: short rows are dropped,
// bad numbers default to zero, bad dates and unknown destination
// states are flagged on the event and tallied here.
type Result struct {
	Events []*transactiondomain.SalesEvent

	RowCount      int
	SkippedRows   int
	InvalidDates  int
	UnknownStates int
}

// Mapper builds canonical sales events from raw rows.
type Mapper struct {
	node *snowflake.Node
	now  func() time.Time
}

func NewMapper(node *snowflake.Node, now func() time.Time) *Mapper {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Mapper{node: node, now: now}
}

// mapRows runs the shared row pipeline: rows[0] is the header.
func (m *Mapper) mapRows(rows [][]string, orgID snowflake.ID) *Result {
	result := &Result{}
	if len(rows) == 0 {
		return result
	}

	index := MapHeaders(rows[0])
	headerLen := len(rows[0])

	for i, row := range rows[1:] {
		line := i + 1
		result.RowCount++

		// Short rows are dropped, matching the tolerant source behavior;
		// the count is surfaced on the ingestion run instead of an error.
		if len(row) < headerLen {
			result.SkippedRows++
			continue
		}

		result.Events = append(result.Events, m.mapRow(index, row, orgID, line, result))
	}
	return result
}

func (m *Mapper) mapRow(index FieldIndex, row []string, orgID snowflake.ID, line int, result *Result) *transactiondomain.SalesEvent {
	now := m.now()

	event := &transactiondomain.SalesEvent{
		ID:                     m.node.Generate(),
		OrgID:                  orgID,
		TransactionID:          index.get(row, FieldTransactionID),
		TransactionType:        defaultString(index.get(row, FieldTransactionType), "sale"),
		Amount:                 ParseAmount(index.get(row, FieldAmount)),
		Shipping:               ParseAmount(index.get(row, FieldShipping)),
		SalesTax:               ParseAmount(index.get(row, FieldSalesTax)),
		Currency:               defaultString(index.get(row, FieldCurrency), "USD"),
		Provider:               defaultString(index.get(row, FieldProvider), "unknown"),
		MarketplaceFacilitator: parseBool(index.get(row, FieldMarketplaceFacilitator)),
		CustomerID:             optionalString(index.get(row, FieldCustomerID)),
		ExemptionType:          defaultString(index.get(row, FieldExemptionType), transactiondomain.ExemptionNonExempt),
		ShipToZip:              optionalString(index.get(row, FieldShipToZip)),
		ShipToCity:             optionalString(index.get(row, FieldShipToCity)),
		CreatedAt:              now,
	}

	if event.TransactionID == "" {
		// Synthesized ids are unique within the file only; cross-file
		// uniqueness rides on the (org, transaction_id) insert conflict.
		event.TransactionID = fmt.Sprintf("tx_%d", line)
	}

	if date, ok := parseDate(index.get(row, FieldTransactionDate)); ok {
		event.TransactionDate = date
		event.DateValid = true
	} else {
		event.TransactionDate = now
		event.DateValid = false
		result.InvalidDates++
	}

	if state, ok := normalizeStateCode(index.get(row, FieldShipToState)); ok {
		event.ShipToState = state
	} else {
		event.ShipToState = transactiondomain.StateUnknown
		result.UnknownStates++
	}

	return event
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func defaultString(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
