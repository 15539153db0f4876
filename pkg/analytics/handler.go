package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/centavo/centavo/internal/rest"
	"github.com/centavo/centavo/pkg/currency"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

type SummaryDTO struct {
	Currency              string  `json:"currency"`
	NetWorth              string  `json:"netWorth"`
	FormattedNetWorth     string  `json:"formattedNetWorth"`
	Assets                string  `json:"assets"`
	FormattedAssets       string  `json:"formattedAssets"`
	Liabilities           string  `json:"liabilities"`
	FormattedLiabilities  string  `json:"formattedLiabilities"`
	MonthIncome           string  `json:"monthIncome"`
	FormattedMonthIncome  string  `json:"formattedMonthIncome"`
	MonthExpense          string  `json:"monthExpense"`
	FormattedMonthExpense string  `json:"formattedMonthExpense"`
	MonthNet              string  `json:"monthNet"`
	FormattedMonthNet     string  `json:"formattedMonthNet"`
	SavingsRate           float64 `json:"savingsRate"`
	AccountCount          int     `json:"accountCount"`
	LiabilityCount        int     `json:"liabilityCount"`
	ActiveGoalCount       int     `json:"activeGoalCount"`
}

type CashflowPointDTO struct {
	Month            string `json:"month"`
	Income           string `json:"income"`
	Expense          string `json:"expense"`
	Net              string `json:"net"`
	FormattedNet     string `json:"formattedNet"`
	FormattedIncome  string `json:"formattedIncome"`
	FormattedExpense string `json:"formattedExpense"`
}

type CashflowReportDTO struct {
	Currency string             `json:"currency"`
	Months   []CashflowPointDTO `json:"months"`
}

type CategorySpendingDTO struct {
	CategoryId     int     `json:"categoryId"`
	CategoryName   string  `json:"categoryName"`
	Total          string  `json:"total"`
	FormattedTotal string  `json:"formattedTotal"`
	Share          float64 `json:"share"`
}

type SpendingReportDTO struct {
	From           string                `json:"from"`
	To             string                `json:"to"`
	Currency       string                `json:"currency"`
	Total          string                `json:"total"`
	FormattedTotal string                `json:"formattedTotal"`
	Categories     []CategorySpendingDTO `json:"categories"`
}

type NetWorthPointDTO struct {
	Month          string `json:"month"`
	Value          string `json:"value"`
	FormattedValue string `json:"formattedValue"`
}

type NetWorthReportDTO struct {
	Currency string             `json:"currency"`
	Points   []NetWorthPointDTO `json:"points"`
}

type UpcomingItemDTO struct {
	Kind            string `json:"kind"`
	Id              int    `json:"id"`
	Name            string `json:"name"`
	Amount          string `json:"amount"`
	FormattedAmount string `json:"formattedAmount"`
	Date            string `json:"date"`
	DaysLeft        int    `json:"daysLeft"`
}

type UpcomingReportDTO struct {
	Currency string            `json:"currency"`
	Items    []UpcomingItemDTO `json:"items"`
}

type AnalyticsHandler struct {
	service     Service
	csvRenderer CashflowRenderer
}

func NewAnalyticsHandler(service Service, csvRenderer CashflowRenderer) *AnalyticsHandler {
	return &AnalyticsHandler{service, csvRenderer}
}

func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	summary, err := h.service.Summary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(summaryToDTO(summary)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *AnalyticsHandler) GetCashflow(w http.ResponseWriter, r *http.Request) {
	months, ok := monthsParam(w, r)
	if !ok {
		return
	}

	report, err := h.service.Cashflow(r.Context(), months)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		csv, err := h.csvRenderer.RenderCashflow(report)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if _, err := w.Write([]byte(csv)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cashflowToDTO(report)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *AnalyticsHandler) GetSpending(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var from, to time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Invalid from format",
				Details: "from must be a date in YYYY-MM-DD format",
			})
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
				Error:   "Invalid to format",
				Details: "to must be a date in YYYY-MM-DD format",
			})
			return
		}
		to = parsed
	}

	report, err := h.service.Spending(r.Context(), from, to)
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(spendingToDTO(report)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *AnalyticsHandler) GetNetWorth(w http.ResponseWriter, r *http.Request) {
	months, ok := monthsParam(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")

	report, err := h.service.NetWorth(r.Context(), months)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(netWorthToDTO(report)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *AnalyticsHandler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	report, err := h.service.Upcoming(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(upcomingToDTO(report)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// monthsParam reads the optional ?months= query parameter. It writes the 400
// response itself and reports ok=false when the value is not a number.
func monthsParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("months")
	if raw == "" {
		return 0, true
	}
	months, err := strconv.Atoi(raw)
	if err != nil || months < 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid months parameter",
			Details: "months must be a positive number",
		})
		return 0, false
	}
	return months, true
}

func summaryToDTO(summary Summary) SummaryDTO {
	return SummaryDTO{
		Currency:              summary.Currency,
		NetWorth:              summary.NetWorth.String(),
		FormattedNetWorth:     currency.Format(summary.NetWorth, summary.Currency),
		Assets:                summary.Assets.String(),
		FormattedAssets:       currency.Format(summary.Assets, summary.Currency),
		Liabilities:           summary.Liabilities.String(),
		FormattedLiabilities:  currency.Format(summary.Liabilities, summary.Currency),
		MonthIncome:           summary.MonthIncome.String(),
		FormattedMonthIncome:  currency.Format(summary.MonthIncome, summary.Currency),
		MonthExpense:          summary.MonthExpense.String(),
		FormattedMonthExpense: currency.Format(summary.MonthExpense, summary.Currency),
		MonthNet:              summary.MonthNet.String(),
		FormattedMonthNet:     currency.Format(summary.MonthNet, summary.Currency),
		SavingsRate:           summary.SavingsRate,
		AccountCount:          summary.AccountCount,
		LiabilityCount:        summary.LiabilityCount,
		ActiveGoalCount:       summary.ActiveGoalCount,
	}
}

func cashflowToDTO(report CashflowReport) CashflowReportDTO {
	months := make([]CashflowPointDTO, 0, len(report.Months))
	for _, point := range report.Months {
		months = append(months, CashflowPointDTO{
			Month:            point.Month.Format(monthLayout),
			Income:           point.Income.String(),
			Expense:          point.Expense.String(),
			Net:              point.Net.String(),
			FormattedIncome:  currency.Format(point.Income, report.Currency),
			FormattedExpense: currency.Format(point.Expense, report.Currency),
			FormattedNet:     currency.Format(point.Net, report.Currency),
		})
	}
	return CashflowReportDTO{Currency: report.Currency, Months: months}
}

func spendingToDTO(report SpendingReport) SpendingReportDTO {
	categories := make([]CategorySpendingDTO, 0, len(report.Categories))
	for _, item := range report.Categories {
		categories = append(categories, CategorySpendingDTO{
			CategoryId:     item.CategoryId,
			CategoryName:   item.CategoryName,
			Total:          item.Total.String(),
			FormattedTotal: currency.Format(item.Total, report.Currency),
			Share:          item.Share,
		})
	}
	return SpendingReportDTO{
		From:           report.From.Format(dateLayout),
		To:             report.To.Format(dateLayout),
		Currency:       report.Currency,
		Total:          report.Total.String(),
		FormattedTotal: currency.Format(report.Total, report.Currency),
		Categories:     categories,
	}
}

func netWorthToDTO(report NetWorthReport) NetWorthReportDTO {
	points := make([]NetWorthPointDTO, 0, len(report.Points))
	for _, point := range report.Points {
		points = append(points, NetWorthPointDTO{
			Month:          point.Month.Format(monthLayout),
			Value:          point.Value.String(),
			FormattedValue: currency.Format(point.Value, report.Currency),
		})
	}
	return NetWorthReportDTO{Currency: report.Currency, Points: points}
}

func upcomingToDTO(report UpcomingReport) UpcomingReportDTO {
	items := make([]UpcomingItemDTO, 0, len(report.Items))
	for _, item := range report.Items {
		items = append(items, UpcomingItemDTO{
			Kind:            string(item.Kind),
			Id:              item.Id,
			Name:            item.Name,
			Amount:          item.Amount.String(),
			FormattedAmount: currency.Format(item.Amount, report.Currency),
			Date:            item.Date.Format(dateLayout),
			DaysLeft:        item.DaysLeft,
		})
	}
	return UpcomingReportDTO{Currency: report.Currency, Items: items}
}
