package google

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/centavo/centavo/pkg/bill"
	"github.com/centavo/centavo/pkg/currency"
	"github.com/centavo/centavo/pkg/user"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
)

const (
	dateLayout          = "2006-01-02"
	defaultReminderDays = 30
	// how far back existing reminder events are scanned, so overdue bills
	// that were already synced are not duplicated
	reminderLookbackDays = 90
)

// BillSource is the slice of the bill service the sync needs.
type BillSource interface {
	Upcoming(ctx context.Context, days int) ([]bill.Bill, error)
}

// reminderMetadata is stored in the event description so a later sync run can
// recognize the events this integration created.
type reminderMetadata struct {
	BillId  int    `json:"billId"`
	DueDate string `json:"dueDate"`
}

type ReminderEvent struct {
	BillId  int
	EventId string
	Summary string
	Date    time.Time
}

// SyncResult reports what one sync run did. Skipped counts bills that already
// had a reminder event.
type SyncResult struct {
	Created int
	Skipped int
	Events  []ReminderEvent
}

// SyncBillReminders creates one all-day calendar event per unpaid bill due in
// the next days. Re-running is safe: bills that already have an event on the
// calendar are skipped.
func (s *ServiceImpl) SyncBillReminders(ctx context.Context, calendarId string, days int) (SyncResult, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if days <= 0 {
		days = defaultReminderDays
	}
	if calendarId == "" {
		calendarId = "primary"
	}

	googleService, err := s.prepareGoogleService(ctx, userId)
	if err != nil {
		return SyncResult{}, err
	}

	dueBills, err := s.bills.Upcoming(ctx, days)
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to list upcoming bills: %w", err)
	}
	if len(dueBills) == 0 {
		return SyncResult{}, nil
	}

	now := time.Now()
	existing, err := googleService.Events.List(calendarId).
		TimeMin(now.AddDate(0, 0, -reminderLookbackDays).Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, days+1).Format(time.RFC3339)).
		SingleEvents(true).
		Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve events from Google Calendar: %v", err)
		log.Error(err)
		return SyncResult{}, err
	}
	known := knownBillIds(existing.Items)

	result := SyncResult{}
	for _, b := range dueBills {
		if known[b.Id] {
			result.Skipped++
			continue
		}

		summary := reminderSummary(b)
		metadata, err := json.Marshal(reminderMetadata{
			BillId:  b.Id,
			DueDate: b.DueDate.Format(dateLayout),
		})
		if err != nil {
			return SyncResult{}, fmt.Errorf("unable to marshal event metadata: %v", err)
		}

		inserted, err := googleService.Events.Insert(calendarId, &gcal.Event{
			Summary:     summary,
			Description: string(metadata),
			Start: &gcal.EventDateTime{
				Date: b.DueDate.Format(dateLayout),
			},
			End: &gcal.EventDateTime{
				// all-day events end on the next calendar day
				Date: b.DueDate.AddDate(0, 0, 1).Format(dateLayout),
			},
		}).Do()
		if err != nil {
			err := fmt.Errorf("unable to insert event in Google Calendar: %v", err)
			log.Error(err)
			return SyncResult{}, err
		}

		log.Debugf("Created bill reminder %q in calendar %s", summary, calendarId)
		result.Created++
		result.Events = append(result.Events, ReminderEvent{
			BillId:  b.Id,
			EventId: inserted.Id,
			Summary: summary,
			Date:    b.DueDate,
		})
	}
	return result, nil
}

func reminderSummary(b bill.Bill) string {
	return fmt.Sprintf("%s due (%s)", b.Name, currency.Format(b.Amount, b.Currency))
}

// knownBillIds extracts the bill ids of events a previous sync created.
// Events without parsable metadata were made by someone else and are ignored.
func knownBillIds(events []*gcal.Event) map[int]bool {
	known := make(map[int]bool)
	for _, event := range events {
		if event.Description == "" {
			continue
		}
		var metadata reminderMetadata
		if err := json.Unmarshal([]byte(event.Description), &metadata); err != nil {
			continue
		}
		if metadata.BillId != 0 {
			known[metadata.BillId] = true
		}
	}
	return known
}
