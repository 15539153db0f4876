package transaction

import (
	"context"
	"fmt"
	"io"

	"github.com/centavo/centavo/internal/event_bus"
	"github.com/centavo/centavo/internal/utils"
	"github.com/centavo/centavo/pkg/account"
	"github.com/centavo/centavo/pkg/user"
)

// AccountReader is the narrow view of the account service this package needs.
type AccountReader interface {
	Get(ctx context.Context, id int) (account.Account, error)
}

type Service interface {
	Create(ctx context.Context, transaction Transaction) (Transaction, error)
	Get(ctx context.Context, id int) (Transaction, error)
	List(ctx context.Context, filter Filter) ([]Transaction, error)
	Update(ctx context.Context, transaction Transaction) (Transaction, error)
	Delete(ctx context.Context, id int) error
	ImportCSV(ctx context.Context, accountId int, file io.Reader) (ImportResult, error)
}

type ServiceImpl struct {
	repo     Repository
	accounts AccountReader
	bus      *event_bus.EventBus
	clock    utils.Clock
}

func NewService(repo Repository, accounts AccountReader, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		accounts: accounts,
		bus:      bus,
		clock:    &utils.SystemClock{},
	}
}

func (s *ServiceImpl) Create(ctx context.Context, transaction Transaction) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}

	transaction, err = s.validate(ctx, transaction)
	if err != nil {
		return Transaction{}, err
	}

	created, err := s.repo.Create(ctx, userId, transaction)
	if err != nil {
		return Transaction{}, err
	}

	event := event_bus.NewEvent(ctx, event_bus.TransactionCreatedEvent,
		event_bus.TransactionCreated{Transaction: changeOf(created)})
	if err := s.bus.Publish(event); err != nil {
		return created, fmt.Errorf("transaction %d saved but balance update failed: %w", created.Id, err)
	}
	return created, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) List(ctx context.Context, filter Filter) ([]Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.List(ctx, userId, filter)
}

func (s *ServiceImpl) Update(ctx context.Context, transaction Transaction) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}

	before, err := s.repo.Get(ctx, userId, transaction.Id)
	if err != nil {
		return Transaction{}, err
	}

	transaction, err = s.validate(ctx, transaction)
	if err != nil {
		return Transaction{}, err
	}

	updated, err := s.repo.Update(ctx, userId, transaction)
	if err != nil {
		return Transaction{}, err
	}

	event := event_bus.NewEvent(ctx, event_bus.TransactionUpdatedEvent,
		event_bus.TransactionUpdated{Before: changeOf(before), After: changeOf(updated)})
	if err := s.bus.Publish(event); err != nil {
		return updated, fmt.Errorf("transaction %d saved but balance update failed: %w", updated.Id, err)
	}
	return updated, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	before, err := s.repo.Get(ctx, userId, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userId, id); err != nil {
		return err
	}

	event := event_bus.NewEvent(ctx, event_bus.TransactionDeletedEvent,
		event_bus.TransactionDeleted{Transaction: changeOf(before)})
	if err := s.bus.Publish(event); err != nil {
		return fmt.Errorf("transaction %d deleted but balance update failed: %w", id, err)
	}
	return nil
}

// validate fills defaults and checks the transaction against its accounts.
// The returned transaction has currency, status and date populated.
func (s *ServiceImpl) validate(ctx context.Context, t Transaction) (Transaction, error) {
	if !ValidType(t.Type) {
		return Transaction{}, fmt.Errorf("%w: unknown type %q", ErrTransactionInvalid, t.Type)
	}
	if t.Amount.IsNegative() {
		return Transaction{}, fmt.Errorf("%w: amount must not be negative", ErrTransactionInvalid)
	}
	if t.Status == "" {
		t.Status = StatusCleared
	}
	if !ValidStatus(t.Status) {
		return Transaction{}, fmt.Errorf("%w: unknown status %q", ErrTransactionInvalid, t.Status)
	}
	if t.Date.IsZero() {
		t.Date = s.clock.Now()
	}

	source, err := s.accounts.Get(ctx, t.AccountId)
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: account %d: %v", ErrTransactionInvalid, t.AccountId, err)
	}
	if t.Currency == "" {
		t.Currency = source.Currency
	}
	if t.Currency != source.Currency {
		return Transaction{}, fmt.Errorf("%w: currency %s does not match account currency %s",
			ErrTransactionInvalid, t.Currency, source.Currency)
	}

	if t.Type == TypeTransfer {
		if t.TransferAccountId == 0 {
			return Transaction{}, fmt.Errorf("%w: transfer requires a destination account", ErrTransactionInvalid)
		}
		if t.TransferAccountId == t.AccountId {
			return Transaction{}, fmt.Errorf("%w: transfer destination must differ from source", ErrTransactionInvalid)
		}
		destination, err := s.accounts.Get(ctx, t.TransferAccountId)
		if err != nil {
			return Transaction{}, fmt.Errorf("%w: account %d: %v", ErrTransactionInvalid, t.TransferAccountId, err)
		}
		if destination.Currency != source.Currency {
			return Transaction{}, fmt.Errorf("%w: transfer accounts must share a currency", ErrTransactionInvalid)
		}
		t.CategoryId = 0 // transfers are not spending
	} else {
		t.TransferAccountId = 0
	}

	return t, nil
}

func changeOf(t Transaction) event_bus.TransactionChange {
	return event_bus.TransactionChange{
		TransactionId:     t.Id,
		AccountId:         t.AccountId,
		TransferAccountId: t.TransferAccountId,
		Type:              string(t.Type),
		Amount:            t.Amount,
		Currency:          t.Currency,
		Date:              t.Date,
	}
}
