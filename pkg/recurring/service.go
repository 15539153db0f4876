package recurring

import (
	"context"
	"fmt"

	"github.com/centavo/centavo/internal/utils"
	"github.com/centavo/centavo/pkg/account"
	"github.com/centavo/centavo/pkg/transaction"
	"github.com/centavo/centavo/pkg/user"
	log "github.com/sirupsen/logrus"
)

// maxCatchUpOccurrences caps how many entries one template may materialize
// in a single generate call, in case its next date is far in the past.
const maxCatchUpOccurrences = 36

// AccountReader is what the recurring service needs from the account service.
type AccountReader interface {
	Get(ctx context.Context, id int) (account.Account, error)
}

// Transactions is what the recurring service needs from the transaction
// service: history for detection and creation for generated occurrences.
type Transactions interface {
	List(ctx context.Context, filter transaction.Filter) ([]transaction.Transaction, error)
	Create(ctx context.Context, transaction transaction.Transaction) (transaction.Transaction, error)
}

type Service interface {
	Create(ctx context.Context, recurring RecurringTransaction) (RecurringTransaction, error)
	Get(ctx context.Context, id int) (RecurringTransaction, error)
	GetAll(ctx context.Context) ([]RecurringTransaction, error)
	Update(ctx context.Context, recurring RecurringTransaction) (RecurringTransaction, error)
	Delete(ctx context.Context, id int) error
	Pause(ctx context.Context, id int) error
	Resume(ctx context.Context, id int) error
	GenerateDue(ctx context.Context) ([]transaction.Transaction, error)
	Detect(ctx context.Context) ([]Candidate, error)
}

type ServiceImpl struct {
	repo         Repository
	accounts     AccountReader
	transactions Transactions
	clock        utils.Clock
}

func NewService(repo Repository, accounts AccountReader, transactions Transactions) *ServiceImpl {
	return &ServiceImpl{
		repo:         repo,
		accounts:     accounts,
		transactions: transactions,
		clock:        &utils.SystemClock{},
	}
}

func (s *ServiceImpl) Create(ctx context.Context, recurring RecurringTransaction) (RecurringTransaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return RecurringTransaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	recurring, err = s.validate(ctx, recurring)
	if err != nil {
		return RecurringTransaction{}, err
	}
	recurring.Active = true
	return s.repo.Create(ctx, userId, recurring)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (RecurringTransaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return RecurringTransaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]RecurringTransaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *ServiceImpl) Update(ctx context.Context, recurring RecurringTransaction) (RecurringTransaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return RecurringTransaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	current, err := s.repo.Get(ctx, userId, recurring.Id)
	if err != nil {
		return RecurringTransaction{}, err
	}
	recurring, err = s.validate(ctx, recurring)
	if err != nil {
		return RecurringTransaction{}, err
	}
	recurring.Active = current.Active
	return s.repo.Update(ctx, userId, recurring)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}

func (s *ServiceImpl) Pause(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.SetActive(ctx, userId, id, false)
}

func (s *ServiceImpl) Resume(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.SetActive(ctx, userId, id, true)
}

// GenerateDue materializes every occurrence whose date has arrived across
// all active templates, stamping each created transaction with the template
// id, and advances the templates past today. Nothing runs on a timer; this
// is the only place occurrences are created.
func (s *ServiceImpl) GenerateDue(ctx context.Context) ([]transaction.Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	templates, err := s.repo.GetAll(ctx, userId)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	created := make([]transaction.Transaction, 0)
	for _, template := range templates {
		if !template.Active {
			continue
		}
		next := template.NextDate
		generated := 0
		for !next.After(now) && generated < maxCatchUpOccurrences {
			t, err := s.transactions.Create(ctx, transaction.Transaction{
				AccountId:   template.AccountId,
				CategoryId:  template.CategoryId,
				Type:        transactionType(template.Kind),
				Amount:      template.Amount,
				Currency:    template.Currency,
				Date:        next,
				Description: template.Description,
				Merchant:    template.Merchant,
				RecurringId: template.Id,
			})
			if err != nil {
				return created, fmt.Errorf("recurring %d failed to generate: %w", template.Id, err)
			}
			created = append(created, t)
			next = template.Frequency.Advance(next)
			generated++
		}
		if generated > 0 {
			if err := s.repo.UpdateNextDate(ctx, userId, template.Id, next); err != nil {
				return created, err
			}
			log.Debugf("recurring %d generated %d transactions, next on %s",
				template.Id, generated, next.Format("2006-01-02"))
		}
	}
	return created, nil
}

// Detect scans recent cleared history for series that repeat on a steady
// cadence and aren't covered by an existing template.
func (s *ServiceImpl) Detect(ctx context.Context) ([]Candidate, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	transactions, err := s.transactions.List(ctx, transaction.Filter{
		From:   s.clock.Now().AddDate(0, -detectLookbackMonths, 0),
		Status: transaction.StatusCleared,
	})
	if err != nil {
		return nil, err
	}
	templates, err := s.repo.GetAll(ctx, userId)
	if err != nil {
		return nil, err
	}
	return detectCandidates(transactions, templates), nil
}

func (s *ServiceImpl) validate(ctx context.Context, recurring RecurringTransaction) (RecurringTransaction, error) {
	if recurring.Description == "" {
		return RecurringTransaction{}, fmt.Errorf("%w: description is required", ErrRecurringInvalid)
	}
	if !recurring.Amount.IsPositive() {
		return RecurringTransaction{}, fmt.Errorf("%w: amount must be positive", ErrRecurringInvalid)
	}
	if !ValidKind(recurring.Kind) {
		return RecurringTransaction{}, fmt.Errorf("%w: unknown kind %q", ErrRecurringInvalid, recurring.Kind)
	}
	if !ValidFrequency(recurring.Frequency) {
		return RecurringTransaction{}, fmt.Errorf("%w: unknown frequency %q", ErrRecurringInvalid, recurring.Frequency)
	}
	if recurring.NextDate.IsZero() {
		return RecurringTransaction{}, fmt.Errorf("%w: next date is required", ErrRecurringInvalid)
	}

	source, err := s.accounts.Get(ctx, recurring.AccountId)
	if err != nil {
		return RecurringTransaction{}, fmt.Errorf("%w: account %d: %v", ErrRecurringInvalid, recurring.AccountId, err)
	}
	if recurring.Currency == "" {
		recurring.Currency = source.Currency
	}
	if recurring.Currency != source.Currency {
		return RecurringTransaction{}, fmt.Errorf("%w: currency %s does not match account currency %s",
			ErrRecurringInvalid, recurring.Currency, source.Currency)
	}
	return recurring, nil
}

func transactionType(kind Kind) transaction.Type {
	if kind == KindIncome {
		return transaction.TypeIncome
	}
	return transaction.TypeExpense
}
