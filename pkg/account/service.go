package account

import (
	"context"
	"fmt"

	"github.com/centavo/centavo/internal/event_bus"
	"github.com/centavo/centavo/pkg/currency"
	"github.com/centavo/centavo/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Create(ctx context.Context, account Account) (Account, error)
	Get(ctx context.Context, id int) (Account, error)
	GetAll(ctx context.Context, includeArchived bool) ([]Account, error)
	Summary(ctx context.Context) (BalanceSummary, error)
	Update(ctx context.Context, account Account) (Account, error)
	MoveAfter(ctx context.Context, id int, precedingId int) error
	Delete(ctx context.Context, id int) error
}

type ServiceImpl struct {
	repo      Repository
	converter *currency.Converter
}

func NewService(repo Repository, converter *currency.Converter) *ServiceImpl {
	return &ServiceImpl{repo: repo, converter: converter}
}

// RegisterSubscriptions keeps account balances in sync with the transaction
// history. Updates revert the old amounts and apply the new ones in a single
// database transaction, so a crash cannot leave a half-applied move.
func (s *ServiceImpl) RegisterSubscriptions(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped[event_bus.TransactionCreated](bus, event_bus.TransactionCreatedEvent,
		func(e event_bus.EventT[event_bus.TransactionCreated]) error {
			return s.applyChanges(e.Context(), balanceDeltas(e.Data.Transaction, false))
		})
	event_bus.SubscribeTyped[event_bus.TransactionDeleted](bus, event_bus.TransactionDeletedEvent,
		func(e event_bus.EventT[event_bus.TransactionDeleted]) error {
			return s.applyChanges(e.Context(), balanceDeltas(e.Data.Transaction, true))
		})
	event_bus.SubscribeTyped[event_bus.TransactionUpdated](bus, event_bus.TransactionUpdatedEvent,
		func(e event_bus.EventT[event_bus.TransactionUpdated]) error {
			deltas := append(balanceDeltas(e.Data.Before, true), balanceDeltas(e.Data.After, false)...)
			return s.applyChanges(e.Context(), deltas)
		})
}

type balanceDelta struct {
	accountId int
	delta     decimal.Decimal
}

// balanceDeltas translates a transaction into per-account balance movements.
// revert flips the signs to undo a previously applied transaction.
func balanceDeltas(change event_bus.TransactionChange, revert bool) []balanceDelta {
	var deltas []balanceDelta
	switch change.Type {
	case "income":
		deltas = []balanceDelta{{accountId: change.AccountId, delta: change.Amount}}
	case "expense":
		deltas = []balanceDelta{{accountId: change.AccountId, delta: change.Amount.Neg()}}
	case "transfer":
		deltas = []balanceDelta{
			{accountId: change.AccountId, delta: change.Amount.Neg()},
			{accountId: change.TransferAccountId, delta: change.Amount},
		}
	default:
		log.Warnf("unknown transaction type %q, balances untouched", change.Type)
		return nil
	}
	if revert {
		for i := range deltas {
			deltas[i].delta = deltas[i].delta.Neg()
		}
	}
	return deltas
}

func (s *ServiceImpl) applyChanges(ctx context.Context, deltas []balanceDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.WithTransaction(ctx, func(repo Repository) error {
		for _, d := range deltas {
			if err := repo.AdjustBalance(ctx, userId, d.accountId, d.delta); err != nil {
				return fmt.Errorf("adjusting balance of account %d: %w", d.accountId, err)
			}
		}
		return nil
	})
}

func (s *ServiceImpl) Create(ctx context.Context, account Account) (Account, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Account{}, fmt.Errorf("failed to get current user: %w", err)
	}

	if account.Currency == "" {
		account.Currency = currentUser.Settings.PrimaryCurrency
	}
	if !currency.IsKnown(account.Currency) {
		return Account{}, fmt.Errorf("unknown currency %q", account.Currency)
	}
	if account.Type == "" {
		account.Type = TypeChecking
	}
	if !ValidType(account.Type) {
		return Account{}, fmt.Errorf("unknown account type %q", account.Type)
	}
	account.Status = StatusActive

	maxPosition, err := s.repo.FindMaxPosition(ctx, currentUser.Id)
	if err != nil {
		return Account{}, err
	}
	account.Position = maxPosition + 100

	return s.repo.Create(ctx, currentUser.Id, account)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Account, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Account{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) GetAll(ctx context.Context, includeArchived bool) ([]Account, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId, includeArchived)
}

// Summary totals the active accounts in the user's display currency. Archived
// accounts keep their money out of the headline number.
func (s *ServiceImpl) Summary(ctx context.Context) (BalanceSummary, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return BalanceSummary{}, fmt.Errorf("failed to get current user: %w", err)
	}
	display := currentUser.Settings.EffectiveDisplayCurrency()

	accounts, err := s.repo.GetAll(ctx, currentUser.Id, false)
	if err != nil {
		return BalanceSummary{}, err
	}

	summary := BalanceSummary{Currency: display, Total: decimal.Zero}
	for _, acc := range accounts {
		converted, err := s.converter.Convert(acc.Balance, acc.Currency, display)
		if err != nil {
			return BalanceSummary{}, fmt.Errorf("failed to convert account %d balance: %w", acc.Id, err)
		}
		summary.Total = summary.Total.Add(converted)
		summary.Accounts = append(summary.Accounts, ConvertedBalance{
			AccountId: acc.Id,
			Name:      acc.Name,
			Balance:   acc.Balance,
			Currency:  acc.Currency,
			Converted: converted,
		})
	}
	return summary, nil
}

func (s *ServiceImpl) Update(ctx context.Context, account Account) (Account, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Account{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !ValidType(account.Type) {
		return Account{}, fmt.Errorf("unknown account type %q", account.Type)
	}
	if account.Status == "" {
		account.Status = StatusActive
	}
	return s.repo.Update(ctx, userId, account)
}

// MoveAfter places the account directly after precedingId (0 moves it to the
// top). Positions are spaced by 100 so most moves only touch one row; when
// two neighbours collide, all accounts are renumbered.
func (s *ServiceImpl) MoveAfter(ctx context.Context, id int, precedingId int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	accounts, err := s.repo.GetAll(ctx, userId, true)
	if err != nil {
		return err
	}
	if findAccount(id, accounts) == -1 {
		return ErrAccountNotFound
	}
	if len(accounts) < 2 {
		return nil
	}

	newPos := 0
	prevPos, nextPos := findPreviousAndNextPositions(precedingId, accounts)
	if nextPos == -1 {
		newPos = prevPos + 100
	} else if nextPos-prevPos > 1 {
		newPos = prevPos + ((nextPos - prevPos) / 2)
	} else { // no space between prev and next - reorder all accounts
		return s.reorderAccounts(ctx, userId, id, precedingId, accounts)
	}
	return s.repo.UpdatePosition(ctx, userId, id, newPos)
}

func (s *ServiceImpl) reorderAccounts(ctx context.Context, userId int, id int, precedingId int, accounts []Account) error {
	moved := accounts[findAccount(id, accounts)]
	remaining := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		if a.Id != id {
			remaining = append(remaining, a)
		}
	}
	ordered := make([]Account, 0, len(accounts))
	if precedingId == 0 {
		ordered = append(ordered, moved)
	}
	for _, a := range remaining {
		ordered = append(ordered, a)
		if a.Id == precedingId {
			ordered = append(ordered, moved)
		}
	}
	return s.repo.WithTransaction(ctx, func(repo Repository) error {
		for i, a := range ordered {
			if err := repo.UpdatePosition(ctx, userId, a.Id, (i+1)*100); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}

func findPreviousAndNextPositions(previousId int, accounts []Account) (int, int) {
	previousIdx := findAccount(previousId, accounts)
	if previousIdx == -1 {
		return 0, accounts[0].Position
	}
	previousPos := accounts[previousIdx].Position
	if previousIdx == len(accounts)-1 { // it is the last one
		return previousPos, -1
	}
	return previousPos, accounts[previousIdx+1].Position
}

func findAccount(id int, accounts []Account) int {
	for idx, account := range accounts {
		if account.Id == id {
			return idx
		}
	}
	return -1
}
