package app

import (
	"github.com/centavo/centavo/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints. Fixed segments (e.g. /summary,
// /upcoming) are registered before their sibling {id} routes so mux does not
// swallow them as path variables.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/user/current/photo", deps.UserHandler.UploadPhoto).Methods("PUT")
	r.HandleFunc("/api/user/current/photo", deps.UserHandler.GetPhoto).Methods("GET")
	r.HandleFunc("/api/user/current/photo", deps.UserHandler.DeletePhoto).Methods("DELETE")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/name-availability", deps.UserHandler.IsUsernameAvailable).Methods("GET").Queries("username", "{username}")
	r.HandleFunc("/api/user", deps.UserHandler.GetAvailableUsers).Methods("GET")
	r.HandleFunc("/api/user/{userUid}", deps.UserHandler.DeleteUser).Methods("DELETE")
	r.HandleFunc("/api/user/{userUid}/photo", deps.UserHandler.GetPhoto).Methods("GET")

	// Accounts
	r.HandleFunc("/api/accounts", deps.AccountHandler.Create).Methods("POST")
	r.HandleFunc("/api/accounts", deps.AccountHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/accounts/summary", deps.AccountHandler.GetSummary).Methods("GET")
	r.HandleFunc("/api/accounts/{accountId}", deps.AccountHandler.Get).Methods("GET")
	r.HandleFunc("/api/accounts/{accountId}", deps.AccountHandler.Update).Methods("PUT")
	r.HandleFunc("/api/accounts/{accountId}/position", deps.AccountHandler.SetPosition).Methods("PUT")
	r.HandleFunc("/api/accounts/{accountId}", deps.AccountHandler.Delete).Methods("DELETE")

	// Credit card cycles
	r.HandleFunc("/api/accounts/{accountId}/cycles", deps.CycleHandler.Open).Methods("POST")
	r.HandleFunc("/api/accounts/{accountId}/cycles", deps.CycleHandler.ListByAccount).Methods("GET")
	r.HandleFunc("/api/cycles/{cycleId}", deps.CycleHandler.Get).Methods("GET")
	r.HandleFunc("/api/cycles/{cycleId}/close", deps.CycleHandler.Close).Methods("POST")
	r.HandleFunc("/api/cycles/{cycleId}/pay", deps.CycleHandler.Pay).Methods("POST")
	r.HandleFunc("/api/cycles/{cycleId}", deps.CycleHandler.Delete).Methods("DELETE")

	// Transactions
	r.HandleFunc("/api/transactions", deps.TransactionHandler.Create).Methods("POST")
	r.HandleFunc("/api/transactions", deps.TransactionHandler.List).Methods("GET")
	r.HandleFunc("/api/transactions/import", deps.TransactionHandler.Import).Methods("POST")
	r.HandleFunc("/api/transactions/{transactionId}", deps.TransactionHandler.Get).Methods("GET")
	r.HandleFunc("/api/transactions/{transactionId}", deps.TransactionHandler.Update).Methods("PUT")
	r.HandleFunc("/api/transactions/{transactionId}", deps.TransactionHandler.Delete).Methods("DELETE")

	// Categories
	r.HandleFunc("/api/categories", deps.CategoryHandler.GetCategories).Methods("GET")
	r.HandleFunc("/api/categories", deps.CategoryHandler.CreateCategory).Methods("POST")
	r.HandleFunc("/api/categories/{categoryId}", deps.CategoryHandler.UpdateCategory).Methods("PUT")
	r.HandleFunc("/api/categories/{categoryId}", deps.CategoryHandler.DeleteCategory).Methods("DELETE")

	// Budgets
	r.HandleFunc("/api/budgets", deps.BudgetHandler.Create).Methods("POST")
	r.HandleFunc("/api/budgets", deps.BudgetHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/budgets/progress", deps.BudgetHandler.Progress).Methods("GET")
	r.HandleFunc("/api/budgets/{budgetId}", deps.BudgetHandler.Get).Methods("GET")
	r.HandleFunc("/api/budgets/{budgetId}", deps.BudgetHandler.Update).Methods("PUT")
	r.HandleFunc("/api/budgets/{budgetId}", deps.BudgetHandler.Delete).Methods("DELETE")

	// Goals
	r.HandleFunc("/api/goals", deps.GoalHandler.Create).Methods("POST")
	r.HandleFunc("/api/goals", deps.GoalHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/goals/{goalId}", deps.GoalHandler.Get).Methods("GET")
	r.HandleFunc("/api/goals/{goalId}", deps.GoalHandler.Update).Methods("PUT")
	r.HandleFunc("/api/goals/{goalId}", deps.GoalHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/goals/{goalId}/contributions", deps.GoalHandler.Contribute).Methods("POST")
	r.HandleFunc("/api/goals/{goalId}/contributions", deps.GoalHandler.Contributions).Methods("GET")

	// Liabilities
	r.HandleFunc("/api/liabilities", deps.LiabilityHandler.Create).Methods("POST")
	r.HandleFunc("/api/liabilities", deps.LiabilityHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/liabilities/{liabilityId}", deps.LiabilityHandler.Get).Methods("GET")
	r.HandleFunc("/api/liabilities/{liabilityId}", deps.LiabilityHandler.Update).Methods("PUT")
	r.HandleFunc("/api/liabilities/{liabilityId}", deps.LiabilityHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/liabilities/{liabilityId}/payments", deps.LiabilityHandler.RecordPayment).Methods("POST")
	r.HandleFunc("/api/liabilities/{liabilityId}/payments", deps.LiabilityHandler.Payments).Methods("GET")
	r.HandleFunc("/api/liabilities/{liabilityId}/payoff", deps.LiabilityHandler.Payoff).Methods("GET")

	// Bills
	r.HandleFunc("/api/bills", deps.BillHandler.Create).Methods("POST")
	r.HandleFunc("/api/bills", deps.BillHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/bills/upcoming", deps.BillHandler.Upcoming).Methods("GET")
	r.HandleFunc("/api/bills/insights", deps.BillHandler.Insights).Methods("GET")
	r.HandleFunc("/api/bills/{billId}", deps.BillHandler.Get).Methods("GET")
	r.HandleFunc("/api/bills/{billId}", deps.BillHandler.Update).Methods("PUT")
	r.HandleFunc("/api/bills/{billId}", deps.BillHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/bills/{billId}/pay", deps.BillHandler.Pay).Methods("POST")

	// Payment history
	r.HandleFunc("/api/payments", deps.PaymentHandler.List).Methods("GET")
	r.HandleFunc("/api/payments/{paymentId}", deps.PaymentHandler.Delete).Methods("DELETE")

	// Recurring transactions
	r.HandleFunc("/api/recurring", deps.RecurringHandler.Create).Methods("POST")
	r.HandleFunc("/api/recurring", deps.RecurringHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/recurring/detect", deps.RecurringHandler.Detect).Methods("GET")
	r.HandleFunc("/api/recurring/generate", deps.RecurringHandler.Generate).Methods("POST")
	r.HandleFunc("/api/recurring/{recurringId}", deps.RecurringHandler.Get).Methods("GET")
	r.HandleFunc("/api/recurring/{recurringId}", deps.RecurringHandler.Update).Methods("PUT")
	r.HandleFunc("/api/recurring/{recurringId}", deps.RecurringHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/recurring/{recurringId}/pause", deps.RecurringHandler.Pause).Methods("POST")
	r.HandleFunc("/api/recurring/{recurringId}/resume", deps.RecurringHandler.Resume).Methods("POST")

	// Currencies
	r.HandleFunc("/api/currencies", deps.CurrencyHandler.ListCurrencies).Methods("GET")
	r.HandleFunc("/api/currencies/convert", deps.CurrencyHandler.Convert).Methods("GET")
	r.HandleFunc("/api/currencies/{code}/preview", deps.CurrencyHandler.Preview).Methods("GET")

	// Exchange rates
	r.HandleFunc("/api/exchange/rates", deps.ExchangeHandler.GetStatus).Methods("GET")
	r.HandleFunc("/api/exchange/refresh", deps.ExchangeHandler.RefreshRates).Methods("POST")

	// Analytics
	r.HandleFunc("/api/analytics/summary", deps.AnalyticsHandler.GetSummary).Methods("GET")
	r.HandleFunc("/api/analytics/cashflow", deps.AnalyticsHandler.GetCashflow).Methods("GET")
	r.HandleFunc("/api/analytics/spending", deps.AnalyticsHandler.GetSpending).Methods("GET")
	r.HandleFunc("/api/analytics/networth", deps.AnalyticsHandler.GetNetWorth).Methods("GET")
	r.HandleFunc("/api/analytics/upcoming", deps.AnalyticsHandler.GetUpcoming).Methods("GET")

	// Onboarding
	r.HandleFunc("/api/onboarding", deps.OnboardingHandler.GetState).Methods("GET")
	r.HandleFunc("/api/onboarding/step", deps.OnboardingHandler.SetStep).Methods("PUT")
	r.HandleFunc("/api/onboarding/complete", deps.OnboardingHandler.Complete).Methods("POST")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")
	r.HandleFunc("/api/integrations/google/reminders/sync", deps.GoogleHandler.SyncReminders).Methods("POST")
}
