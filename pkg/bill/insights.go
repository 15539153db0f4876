package bill

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/centavo/centavo/pkg/currency"
	"github.com/centavo/centavo/pkg/payment"
	"github.com/shopspring/decimal"
)

type InsightKind string

const (
	InsightDuplicate InsightKind = "possible_duplicate"
	InsightCluster   InsightKind = "due_date_cluster"
	InsightCreep     InsightKind = "amount_creep"
)

// Insight is a rule-based suggestion about the user's bills.
type Insight struct {
	Kind    InsightKind
	Message string
	BillIds []int
}

const (
	// duplicateNameThreshold is the normalized levenshtein distance under
	// which two bill names count as the same vendor.
	duplicateNameThreshold = 0.34
	// duplicateAmountTolerance is the relative amount difference under which
	// two bills look like the same charge.
	duplicateAmountTolerance = 0.20
	// clusterWindowDays is the span checked for due-date pile-ups.
	clusterWindowDays = 5
	// clusterMinBills is how many due dates must pile up to suggest spreading.
	clusterMinBills = 3
	// creepFactor flags a bill priced >10% above its recent payment average.
	creepFactor = 1.10
	// creepSampleSize is how many recent payments form the average.
	creepSampleSize = 3
)

// Insights runs the duplicate, clustering and creep heuristics over the
// user's bills.
func (s *ServiceImpl) Insights(ctx context.Context) ([]Insight, error) {
	bills, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	insights := make([]Insight, 0)
	insights = append(insights, duplicateInsights(bills)...)
	insights = append(insights, clusterInsights(bills)...)

	creep, err := s.creepInsights(ctx, bills)
	if err != nil {
		return nil, err
	}
	return append(insights, creep...), nil
}

// duplicateInsights flags bill pairs whose names are nearly identical and
// whose amounts are within tolerance of each other.
func duplicateInsights(bills []Bill) []Insight {
	insights := make([]Insight, 0)
	for i := 0; i < len(bills); i++ {
		for j := i + 1; j < len(bills); j++ {
			a, b := bills[i], bills[j]
			if a.Currency != b.Currency {
				continue
			}
			if nameDistance(a.Name, b.Name) >= duplicateNameThreshold {
				continue
			}
			if !amountsWithin(a.Amount, b.Amount, duplicateAmountTolerance) {
				continue
			}
			insights = append(insights, Insight{
				Kind:    InsightDuplicate,
				Message: fmt.Sprintf("%q and %q look like the same bill", a.Name, b.Name),
				BillIds: []int{a.Id, b.Id},
			})
		}
	}
	return insights
}

// clusterInsights finds due dates piling up inside a short window and
// suggests spreading them out.
func clusterInsights(bills []Bill) []Insight {
	unpaid := make([]Bill, 0, len(bills))
	for _, bill := range bills {
		if bill.Status != StatusPaid {
			unpaid = append(unpaid, bill)
		}
	}
	sort.Slice(unpaid, func(i, j int) bool { return unpaid[i].DueDate.Before(unpaid[j].DueDate) })

	insights := make([]Insight, 0)
	for i := 0; i < len(unpaid); {
		j := i
		for j+1 < len(unpaid) && daysBetween(unpaid[i].DueDate, unpaid[j+1].DueDate) < clusterWindowDays {
			j++
		}
		if j-i+1 >= clusterMinBills {
			ids := make([]int, 0, j-i+1)
			for _, bill := range unpaid[i : j+1] {
				ids = append(ids, bill.Id)
			}
			insights = append(insights, Insight{
				Kind: InsightCluster,
				Message: fmt.Sprintf("%d bills are due within %d days of %s; consider spreading the due dates",
					len(ids), clusterWindowDays, unpaid[i].DueDate.Format("2006-01-02")),
				BillIds: ids,
			})
			i = j + 1
			continue
		}
		i++
	}
	return insights
}

// creepInsights flags bills priced noticeably above the average of their
// recent payments.
func (s *ServiceImpl) creepInsights(ctx context.Context, bills []Bill) ([]Insight, error) {
	insights := make([]Insight, 0)
	for _, bill := range bills {
		payments, err := s.payments.List(ctx, payment.Filter{
			SourceType: payment.SourceBill,
			SourceId:   bill.Id,
			Limit:      creepSampleSize,
		})
		if err != nil {
			return nil, err
		}
		if len(payments) < creepSampleSize {
			continue
		}
		sum := decimal.Zero
		for _, p := range payments {
			sum = sum.Add(p.Amount)
		}
		average := sum.Div(decimal.NewFromInt(creepSampleSize))
		if bill.Amount.GreaterThan(average.Mul(decimal.NewFromFloat(creepFactor))) {
			insights = append(insights, Insight{
				Kind: InsightCreep,
				Message: fmt.Sprintf("%q is now %s, more than 10%% above its recent average of %s",
					bill.Name, currency.Format(bill.Amount, bill.Currency), currency.Format(average.Round(2), bill.Currency)),
				BillIds: []int{bill.Id},
			})
		}
	}
	return insights, nil
}

// nameDistance is the levenshtein distance between uppercased names,
// normalized by the longer length. 0 = identical, 1 = nothing in common.
func nameDistance(a, b string) float64 {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}

func amountsWithin(a, b decimal.Decimal, tolerance float64) bool {
	larger := decimal.Max(a, b)
	if larger.IsZero() {
		return true
	}
	diff := a.Sub(b).Abs()
	ratio, _ := diff.Div(larger).Float64()
	return ratio <= tolerance
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
