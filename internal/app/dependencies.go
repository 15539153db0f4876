package app

import (
	"time"

	"github.com/centavo/centavo/internal/config"
	"github.com/centavo/centavo/internal/event_bus"
	"github.com/centavo/centavo/internal/utils"
	"github.com/centavo/centavo/pkg/account"
	"github.com/centavo/centavo/pkg/analytics"
	"github.com/centavo/centavo/pkg/bill"
	"github.com/centavo/centavo/pkg/budget"
	"github.com/centavo/centavo/pkg/category"
	"github.com/centavo/centavo/pkg/currency"
	"github.com/centavo/centavo/pkg/exchange"
	"github.com/centavo/centavo/pkg/goal"
	"github.com/centavo/centavo/pkg/google"
	"github.com/centavo/centavo/pkg/liability"
	"github.com/centavo/centavo/pkg/onboarding"
	"github.com/centavo/centavo/pkg/payment"
	"github.com/centavo/centavo/pkg/recurring"
	"github.com/centavo/centavo/pkg/transaction"
	"github.com/centavo/centavo/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	UserService user.Service
	UserHandler *user.Handler

	ExchangeService *exchange.Service
	ExchangeHandler *exchange.Handler
	Converter       *currency.Converter
	CurrencyHandler *currency.Handler

	AccountRepo    account.Repository
	AccountService *account.ServiceImpl
	AccountHandler *account.AccountHandler

	CategoryService *category.ServiceImpl
	CategoryHandler *category.Handler

	TransactionService *transaction.ServiceImpl
	TransactionHandler *transaction.TransactionHandler

	BudgetService *budget.BudgetServiceImpl
	BudgetHandler *budget.BudgetHandler

	PaymentService *payment.ServiceImpl
	PaymentHandler *payment.PaymentHandler

	GoalService *goal.ServiceImpl
	GoalHandler *goal.GoalHandler

	LiabilityService *liability.ServiceImpl
	LiabilityHandler *liability.LiabilityHandler

	BillService  *bill.ServiceImpl
	BillHandler  *bill.BillHandler
	CycleService *bill.CycleServiceImpl
	CycleHandler *bill.CycleHandler

	RecurringService *recurring.ServiceImpl
	RecurringHandler *recurring.RecurringHandler

	AnalyticsService    *analytics.ServiceImpl
	CsvCashflowRenderer *analytics.CsvCashflowRendererImpl
	AnalyticsHandler    *analytics.AnalyticsHandler

	OnboardingService *onboarding.ServiceImpl
	OnboardingHandler *onboarding.OnboardingHandler

	GoogleAuth    *google.GoogleAuth
	GoogleService google.Service
	GoogleHandler *google.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	deps.UserService = user.NewUserService(user.NewUserRepo(db), deps.EventBus)
	deps.UserHandler = user.NewHandler(deps.UserService)

	exchangeClient := exchange.NewHttpClient(cfg.Exchange.Url, cfg.Exchange.RatesPath, cfg.Exchange.BaseCurrency)
	deps.ExchangeService = exchange.NewService(exchangeClient, deps.Clock, time.Duration(cfg.Exchange.RefreshMinutes)*time.Minute)
	deps.ExchangeHandler = exchange.NewHandler(deps.ExchangeService)
	deps.Converter = currency.NewConverter(deps.ExchangeService)
	deps.CurrencyHandler = currency.NewHandler(deps.Converter)

	deps.AccountRepo = account.NewRepository(db)
	deps.AccountService = account.NewService(deps.AccountRepo, deps.Converter)
	deps.AccountService.RegisterSubscriptions(deps.EventBus)
	deps.AccountHandler = account.NewAccountHandler(deps.AccountService)

	deps.CategoryService = category.NewService(category.NewRepository(db))
	deps.CategoryService.RegisterSubscriptions(deps.EventBus)
	deps.CategoryHandler = category.NewHandler(deps.CategoryService)

	deps.TransactionService = transaction.NewService(transaction.NewRepository(db), deps.AccountService, deps.EventBus)
	deps.TransactionHandler = transaction.NewTransactionHandler(deps.TransactionService)

	deps.BudgetService = budget.NewBudgetService(budget.NewBudgetRepo(db), deps.TransactionService, deps.Converter)
	deps.BudgetHandler = budget.NewBudgetHandler(deps.BudgetService)

	deps.PaymentService = payment.NewService(payment.NewRepository(db))
	deps.PaymentHandler = payment.NewPaymentHandler(deps.PaymentService)

	deps.GoalService = goal.NewService(goal.NewRepository(db), deps.PaymentService, deps.TransactionService)
	deps.GoalHandler = goal.NewGoalHandler(deps.GoalService)

	deps.LiabilityService = liability.NewService(liability.NewRepository(db), deps.PaymentService, deps.TransactionService)
	deps.LiabilityHandler = liability.NewLiabilityHandler(deps.LiabilityService)

	deps.BillService = bill.NewService(bill.NewRepository(db), deps.PaymentService, deps.TransactionService)
	deps.BillHandler = bill.NewBillHandler(deps.BillService)
	deps.CycleService = bill.NewCycleService(bill.NewCycleRepository(db), deps.AccountService, deps.TransactionService, deps.PaymentService)
	deps.CycleHandler = bill.NewCycleHandler(deps.CycleService)

	deps.RecurringService = recurring.NewService(recurring.NewRepository(db), deps.AccountService, deps.TransactionService)
	deps.RecurringHandler = recurring.NewRecurringHandler(deps.RecurringService)

	deps.AnalyticsService = analytics.NewService(
		deps.AccountService,
		deps.LiabilityService,
		deps.TransactionService,
		deps.PaymentService,
		deps.CategoryService,
		deps.BillService,
		deps.GoalService,
		deps.Converter,
	)
	deps.CsvCashflowRenderer = analytics.NewCsvCashflowRenderer()
	deps.AnalyticsHandler = analytics.NewAnalyticsHandler(deps.AnalyticsService, deps.CsvCashflowRenderer)

	deps.OnboardingService = onboarding.NewService(deps.UserService, deps.AccountService, deps.BudgetService)
	deps.OnboardingHandler = onboarding.NewOnboardingHandler(deps.OnboardingService)

	deps.GoogleAuth = google.NewGoogleAuth(db, deps.UserService, cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth, deps.BillService)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	return deps
}
