package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Default values written by self-healing when the server returns a legacy row
// without them.
const (
	DefaultCurrency        = "USD"
	DefaultCategoryKind    = "expense"
	DefaultInboxItemStatus = "new"
)

// transactionGroupNamespace seeds the deterministic group ids generated for
// legacy transactions that arrive without one.
var transactionGroupNamespace = uuid.MustParse("6f1c2b8e-4d0a-5a8e-9b57-3c1f0e2d4a61")

// Reference is a foreign key carried by a payload.
type Reference struct {
	// Column is the remote column name, e.g. "account_id".
	Column string
	// Table is the referenced table.
	Table TableName
	// ID is the referenced record id. Empty means null.
	ID string
}

// Payload is implemented by every table-specific record body.
type Payload interface {
	// Table returns the table the payload belongs to.
	Table() TableName
	// RequiredRefs returns the foreign keys the remote store declares NOT NULL.
	RequiredRefs() []Reference
	// Heal fills legacy null fields with local defaults derived from the
	// record id. It reports whether anything was changed.
	Heal(recordID string) bool
}

// AccountPayload is the body of an accounts row.
type AccountPayload struct {
	Name           string          `json:"name"`
	Currency       *string         `json:"currency"`
	Kind           string          `json:"kind,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Archived       bool            `json:"archived,omitempty"`
}

func (p *AccountPayload) Table() TableName { return TableAccounts }

func (p *AccountPayload) RequiredRefs() []Reference { return nil }

func (p *AccountPayload) Heal(_ string) bool {
	if p.Currency == nil || strings.TrimSpace(*p.Currency) == "" {
		currency := DefaultCurrency
		p.Currency = &currency
		return true
	}
	return false
}

// CategoryPayload is the body of a categories row.
type CategoryPayload struct {
	Name     string  `json:"name"`
	Kind     *string `json:"kind"`
	ParentID *string `json:"parent_id,omitempty"`
	Color    string  `json:"color,omitempty"`
}

func (p *CategoryPayload) Table() TableName { return TableCategories }

func (p *CategoryPayload) RequiredRefs() []Reference { return nil }

func (p *CategoryPayload) Heal(_ string) bool {
	if p.Kind == nil || *p.Kind == "" {
		kind := DefaultCategoryKind
		p.Kind = &kind
		return true
	}
	return false
}

// TransactionPayload is the body of a transactions row.
//
// AccountID is NOT NULL on the remote store. GroupID links the legs of a
// split or transfer; legacy rows may carry it as null.
type TransactionPayload struct {
	AccountID         *string         `json:"account_id"`
	CategoryID        *string         `json:"category_id,omitempty"`
	TransferAccountID *string         `json:"transfer_account_id,omitempty"`
	GroupID           *string         `json:"group_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	OccurredOn        string          `json:"occurred_on"`
	Description       string          `json:"description,omitempty"`
	Reconciled        bool            `json:"reconciled,omitempty"`
}

func (p *TransactionPayload) Table() TableName { return TableTransactions }

func (p *TransactionPayload) RequiredRefs() []Reference {
	return []Reference{{Column: "account_id", Table: TableAccounts, ID: deref(p.AccountID)}}
}

// Heal assigns a group id derived from the transaction id, so two devices
// healing the same legacy row produce the same value.
func (p *TransactionPayload) Heal(recordID string) bool {
	if p.GroupID == nil || *p.GroupID == "" {
		groupID := uuid.NewSHA1(transactionGroupNamespace, []byte(recordID)).String()
		p.GroupID = &groupID
		return true
	}
	return false
}

// InboxItemPayload is the body of an inbox_items row: an imported or captured
// entry that has not been turned into a transaction yet.
type InboxItemPayload struct {
	AccountID  *string          `json:"account_id,omitempty"`
	RawText    string           `json:"raw_text"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Currency   string           `json:"currency,omitempty"`
	Status     string           `json:"status"`
	ReceivedOn string           `json:"received_on,omitempty"`
}

func (p *InboxItemPayload) Table() TableName { return TableInboxItems }

func (p *InboxItemPayload) RequiredRefs() []Reference { return nil }

func (p *InboxItemPayload) Heal(_ string) bool {
	if p.Status == "" {
		p.Status = DefaultInboxItemStatus
		return true
	}
	return false
}

// NewPayload returns an empty payload variant for table.
func NewPayload(table TableName) (Payload, error) {
	switch table {
	case TableAccounts:
		return &AccountPayload{}, nil
	case TableCategories:
		return &CategoryPayload{}, nil
	case TableTransactions:
		return &TransactionPayload{}, nil
	case TableInboxItems:
		return &InboxItemPayload{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
}

// DecodePayload decodes raw into the payload variant of table.
func DecodePayload(table TableName, raw json.RawMessage) (Payload, error) {
	payload, err := NewPayload(table)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}
	if err = json.Unmarshal(raw, payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return payload, nil
}

// EncodePayload marshals a payload variant back into its wire form.
func EncodePayload(payload Payload) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return raw, nil
}

// MergePayload applies fields to raw as a shallow JSON merge: every key in
// fields replaces the key of the same name in raw. The result is validated
// against the table's payload variant.
func MergePayload(table TableName, raw json.RawMessage, fields map[string]any) (json.RawMessage, error) {
	merged := make(map[string]any)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &merged); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
	}
	for key, value := range fields {
		merged[key] = value
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if _, err = DecodePayload(table, out); err != nil {
		return nil, err
	}
	return out, nil
}

// MissingRequiredRefs returns the required references of payload whose id is
// empty.
func MissingRequiredRefs(payload Payload) []Reference {
	var missing []Reference
	for _, ref := range payload.RequiredRefs() {
		if strings.TrimSpace(ref.ID) == "" {
			missing = append(missing, ref)
		}
	}
	return missing
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
