package recurring

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/centavo/centavo/pkg/transaction"
	"github.com/shopspring/decimal"
)

const (
	detectLookbackMonths = 6
	detectMinOccurrences = 3
	// detectNameThreshold is the normalized levenshtein distance under which
	// two descriptions count as the same series.
	detectNameThreshold = 0.3
	// detectAmountSpread caps how far amounts may drift from the median.
	detectAmountSpread = 0.15
	// detectGapTolerance is the relative slack when matching the median gap
	// to a known cadence.
	detectGapTolerance = 0.20
)

// Candidate is a recurring series found in transaction history, ready to be
// turned into a template.
type Candidate struct {
	Description string
	Merchant    string
	Amount      decimal.Decimal
	Currency    string
	AccountId   int
	CategoryId  int
	Kind        Kind
	Frequency   Frequency
	NextDate    time.Time
	Occurrences int
	Confidence  float64
}

var frequencyDays = []struct {
	frequency Frequency
	days      float64
}{
	{FrequencyWeekly, 7},
	{FrequencyBiweekly, 14},
	{FrequencyMonthly, 30},
	{FrequencyQuarterly, 91},
	{FrequencyYearly, 365},
}

// detectCandidates groups history into fuzzy series and keeps the ones that
// look like a steady cadence with steady amounts. Series already covered by
// an active template are dropped.
func detectCandidates(transactions []transaction.Transaction, templates []RecurringTransaction) []Candidate {
	candidates := make([]Candidate, 0)
	for _, s := range groupSeries(transactions) {
		candidate, ok := s.candidate()
		if !ok {
			continue
		}
		if coveredByTemplate(candidate, templates) {
			continue
		}
		candidates = append(candidates, candidate)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence == candidates[j].Confidence {
			return candidates[i].Occurrences > candidates[j].Occurrences
		}
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}

type series struct {
	key          string
	kind         transaction.Type
	transactions []transaction.Transaction
}

// groupSeries buckets transactions by fuzzy description identity. Transfers
// never recur as income or expenses, so only those two types are considered.
func groupSeries(transactions []transaction.Transaction) []*series {
	groups := make([]*series, 0)
	for _, t := range transactions {
		if t.Type != transaction.TypeIncome && t.Type != transaction.TypeExpense {
			continue
		}
		key := normalizeIdentity(identityOf(t))
		if key == "" {
			continue
		}
		matched := false
		for _, g := range groups {
			if g.kind == t.Type && normalizedDistance(g.key, key) < detectNameThreshold {
				g.transactions = append(g.transactions, t)
				matched = true
				break
			}
		}
		if !matched {
			groups = append(groups, &series{key: key, kind: t.Type, transactions: []transaction.Transaction{t}})
		}
	}
	return groups
}

// candidate checks a series against the occurrence, amount-spread and
// cadence rules and scores it.
func (s *series) candidate() (Candidate, bool) {
	if len(s.transactions) < detectMinOccurrences {
		return Candidate{}, false
	}
	sort.Slice(s.transactions, func(i, j int) bool {
		return s.transactions[i].Date.Before(s.transactions[j].Date)
	})

	median := medianAmount(s.transactions)
	if !median.IsPositive() {
		return Candidate{}, false
	}
	spread := amountSpread(s.transactions, median)
	if spread > detectAmountSpread {
		return Candidate{}, false
	}

	gaps := dayGaps(s.transactions)
	medianGap := medianFloat(gaps)
	frequency, ok := matchFrequency(medianGap)
	if !ok {
		return Candidate{}, false
	}
	regularity := gapDeviation(gaps, medianGap)

	last := s.transactions[len(s.transactions)-1]
	kind := KindExpense
	if s.kind == transaction.TypeIncome {
		kind = KindIncome
	}
	return Candidate{
		Description: last.Description,
		Merchant:    last.Merchant,
		Amount:      median.Round(2),
		Currency:    last.Currency,
		AccountId:   last.AccountId,
		CategoryId:  last.CategoryId,
		Kind:        kind,
		Frequency:   frequency,
		NextDate:    frequency.Advance(last.Date),
		Occurrences: len(s.transactions),
		Confidence:  confidence(len(s.transactions), regularity, spread),
	}, true
}

// confidence blends how often the series occurred, how regular its cadence
// is, and how steady its amounts are into a 0..1 score.
func confidence(occurrences int, regularity float64, spread float64) float64 {
	countScore := math.Min(1, float64(occurrences)/6)
	regularityScore := 1 - math.Min(1, regularity/detectGapTolerance)
	spreadScore := 1 - math.Min(1, spread/detectAmountSpread)
	score := 0.4*countScore + 0.4*regularityScore + 0.2*spreadScore
	return math.Round(score*100) / 100
}

func coveredByTemplate(candidate Candidate, templates []RecurringTransaction) bool {
	key := normalizeIdentity(candidate.Merchant)
	if key == "" {
		key = normalizeIdentity(candidate.Description)
	}
	for _, template := range templates {
		if !template.Active || template.Kind != candidate.Kind {
			continue
		}
		templateKey := normalizeIdentity(template.Merchant)
		if templateKey == "" {
			templateKey = normalizeIdentity(template.Description)
		}
		if normalizedDistance(key, templateKey) < detectNameThreshold {
			return true
		}
	}
	return false
}

func identityOf(t transaction.Transaction) string {
	if t.Merchant != "" {
		return t.Merchant
	}
	return t.Description
}

// normalizeIdentity uppercases and strips digits so "NETFLIX 0423" and
// "NETFLIX 0518" land on the same key.
func normalizeIdentity(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// normalizedDistance is the levenshtein distance scaled by the longer
// length. 0 = identical, 1 = nothing in common.
func normalizedDistance(a, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}

func matchFrequency(medianGap float64) (Frequency, bool) {
	for _, f := range frequencyDays {
		if math.Abs(medianGap-f.days) <= f.days*detectGapTolerance {
			return f.frequency, true
		}
	}
	return "", false
}

func medianAmount(transactions []transaction.Transaction) decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(transactions))
	for _, t := range transactions {
		amounts = append(amounts, t.Amount)
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i].LessThan(amounts[j]) })
	middle := len(amounts) / 2
	if len(amounts)%2 == 1 {
		return amounts[middle]
	}
	return amounts[middle-1].Add(amounts[middle]).Div(decimal.NewFromInt(2))
}

// amountSpread is (max − min) relative to the median.
func amountSpread(transactions []transaction.Transaction, median decimal.Decimal) float64 {
	lowest, highest := transactions[0].Amount, transactions[0].Amount
	for _, t := range transactions[1:] {
		lowest = decimal.Min(lowest, t.Amount)
		highest = decimal.Max(highest, t.Amount)
	}
	spread, _ := highest.Sub(lowest).Div(median).Float64()
	return spread
}

func dayGaps(transactions []transaction.Transaction) []float64 {
	gaps := make([]float64, 0, len(transactions)-1)
	for i := 1; i < len(transactions); i++ {
		gaps = append(gaps, transactions[i].Date.Sub(transactions[i-1].Date).Hours()/24)
	}
	return gaps
}

func medianFloat(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	middle := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[middle]
	}
	return (sorted[middle-1] + sorted[middle]) / 2
}

// gapDeviation is the mean absolute deviation of the gaps from their
// median, relative to the median.
func gapDeviation(gaps []float64, medianGap float64) float64 {
	if medianGap == 0 {
		return 1
	}
	total := 0.0
	for _, gap := range gaps {
		total += math.Abs(gap - medianGap)
	}
	return total / float64(len(gaps)) / medianGap
}
