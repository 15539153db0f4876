package event_bus

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionCreatedEvent EventType = "transaction.created"
	TransactionUpdatedEvent EventType = "transaction.updated"
	TransactionDeletedEvent EventType = "transaction.deleted"
	UserCreatedEvent        EventType = "user.created"
)

// TransactionChange carries the fields of a transaction that account balances
// depend on. Amount is always non-negative; Type decides the sign.
type TransactionChange struct {
	TransactionId int
	AccountId     int
	// TransferAccountId is the receiving account of a transfer, 0 otherwise.
	TransferAccountId int
	Type              string
	Amount            decimal.Decimal
	Currency          string
	Date              time.Time
}

type TransactionCreated struct {
	Transaction TransactionChange
}

type TransactionUpdated struct {
	Before TransactionChange
	After  TransactionChange
}

type TransactionDeleted struct {
	Transaction TransactionChange
}

type UserCreated struct {
	UserId int
}
