package models

import (
	"time"

	"github.com/volatiletech/null"
)

type LoanStatus string

const (
	LoanPending  LoanStatus = "pending"
	LoanActive   LoanStatus = "active"
	LoanOverdue  LoanStatus = "overdue"
	LoanRejected LoanStatus = "rejected"
	LoanClosed   LoanStatus = "closed"
)

// loanTransitions lists the allowed source states per transition target.
// rejected and closed are terminal, a loan never leaves them.
var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanActive:   {LoanPending},
	LoanRejected: {LoanPending},
	LoanOverdue:  {LoanActive},
	LoanClosed:   {LoanActive, LoanOverdue},
}

// CanTransition reports whether a loan may move from one status to another.
func CanTransition(from, to LoanStatus) bool {
	for _, s := range loanTransitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

// TransitionSources returns the allowed source states for a target status,
// for use in conditional status updates.
func TransitionSources(to LoanStatus) []LoanStatus {
	return loanTransitions[to]
}

type Loan struct {
	ID           int         `json:"id" db:"l_id"`
	UserID       int         `json:"userId" db:"u_id"`
	Status       LoanStatus  `json:"status" db:"l_status"`
	CheckedOutAt null.Time   `json:"checkedOutAt" db:"l_checked_out_at"`
	DueAt        time.Time   `json:"dueAt" db:"l_due_at"`
	CheckedInAt  null.Time   `json:"checkedInAt" db:"l_checked_in_at"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UserFname    null.String `json:"userFirstName" db:"u_fname"`
	UserLname    null.String `json:"userLastName" db:"u_lname"`
	UserEmail    null.String `json:"userEmail" db:"u_email"`
	Lines        []LoanLine  `json:"lines" db:"-"`
}

// LoanLine is one reserved asset on a loan, joined with its item for display.
type LoanLine struct {
	LoanID    int         `json:"-" db:"l_id"`
	AssetID   int         `json:"assetId" db:"a_id"`
	ItemID    int         `json:"itemId" db:"it_id"`
	ItemName  string      `json:"itemName" db:"it_name"`
	ItemSKU   string      `json:"itemSku" db:"it_sku"`
	Condition null.String `json:"condition" db:"a_condition"`
}

// LoanSummary is a dashboard row: one loan with borrower identity and the
// number of reserved assets.
type LoanSummary struct {
	ID           int        `json:"id" db:"l_id"`
	Status       LoanStatus `json:"status" db:"l_status"`
	UserFname    string     `json:"userFirstName" db:"u_fname"`
	UserLname    string     `json:"userLastName" db:"u_lname"`
	UserEmail    string     `json:"userEmail" db:"u_email"`
	ItemCount    int        `json:"itemCount" db:"item_count"`
	CheckedOutAt null.Time  `json:"checkedOutAt" db:"l_checked_out_at"`
	DueAt        null.Time  `json:"dueAt" db:"l_due_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	IsOverdue    bool       `json:"isOverdue" db:"is_overdue"`
}

// LoanRequestLine is one (item, quantity) pair handed to checkout.
type LoanRequestLine struct {
	ItemID   int `json:"itemId"`
	Quantity int `json:"quantity"`
}

// AllocationShortfall records an item whose requested quantity could not be
// fully satisfied at checkout.
type AllocationShortfall struct {
	ItemID    int `json:"itemId"`
	Requested int `json:"requested"`
	Allocated int `json:"allocated"`
}
