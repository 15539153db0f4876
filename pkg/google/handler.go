package google

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type CalendarItemDto struct {
	Id      string `json:"id"`
	Summary string `json:"summary"`
}

type SyncRequestDTO struct {
	CalendarId string `json:"calendarId,omitempty"`
	Days       int    `json:"days,omitempty"`
}

type ReminderEventDTO struct {
	BillId  int    `json:"billId"`
	EventId string `json:"eventId"`
	Summary string `json:"summary"`
	Date    string `json:"date"`
}

type SyncResultDTO struct {
	Created int                `json:"created"`
	Skipped int                `json:"skipped"`
	Events  []ReminderEventDTO `json:"events"`
}

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{s}
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	calendars, err := h.service.ListCalendars(r.Context())
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	calendarItems := make([]CalendarItemDto, 0, len(calendars))
	for _, c := range calendars {
		calendarItems = append(calendarItems, toCalendarItemDto(c))
	}

	if err := json.NewEncoder(w).Encode(calendarItems); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) SyncReminders(w http.ResponseWriter, r *http.Request) {
	log.Debug("Syncing bill reminders to Google Calendar")
	w.Header().Set("Content-Type", "application/json")

	// body is optional; an empty POST syncs the default window
	var dto SyncRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.SyncBillReminders(r.Context(), dto.CalendarId, dto.Days)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(syncResultToDTO(result)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toCalendarItemDto(ci CalendarItem) CalendarItemDto {
	return CalendarItemDto{
		Id:      ci.ID,
		Summary: ci.Summary,
	}
}

func syncResultToDTO(result SyncResult) SyncResultDTO {
	events := make([]ReminderEventDTO, 0, len(result.Events))
	for _, event := range result.Events {
		events = append(events, ReminderEventDTO{
			BillId:  event.BillId,
			EventId: event.EventId,
			Summary: event.Summary,
			Date:    event.Date.Format(dateLayout),
		})
	}
	return SyncResultDTO{
		Created: result.Created,
		Skipped: result.Skipped,
		Events:  events,
	}
}
