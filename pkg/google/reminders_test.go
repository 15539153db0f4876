package google

import (
	"testing"
	"time"

	"github.com/centavo/centavo/pkg/bill"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gcal "google.golang.org/api/calendar/v3"
)

func TestReminderSummary(t *testing.T) {
	// given
	electricity := bill.Bill{
		Id:       1,
		Name:     "Electricity",
		Amount:   decimal.NewFromFloat(1234.5),
		Currency: "USD",
		DueDate:  time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
	}
	internet := bill.Bill{
		Id:       2,
		Name:     "Internet",
		Amount:   decimal.NewFromFloat(49.9),
		Currency: "EUR",
	}

	// then
	assert.Equal(t, "Electricity due ($1,234.50)", reminderSummary(electricity))
	assert.Equal(t, "Internet due (49,90 €)", reminderSummary(internet))
}

func TestKnownBillIds(t *testing.T) {
	// given
	events := []*gcal.Event{
		{Summary: "Electricity due ($80.00)", Description: `{"billId":1,"dueDate":"2025-06-20"}`},
		{Summary: "Rent due ($1,200.00)", Description: `{"billId":7,"dueDate":"2025-06-09"}`},
		{Summary: "Dentist appointment", Description: ""},
		{Summary: "Team offsite", Description: "bring a laptop"},
	}

	// when
	known := knownBillIds(events)

	// then
	assert.Len(t, known, 2)
	assert.True(t, known[1])
	assert.True(t, known[7])
	assert.False(t, known[3])
}
