package exchange

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/centavo/centavo/internal/rest"
)

type StatusDto struct {
	Status    string            `json:"status"`
	Online    bool              `json:"online"`
	Base      string            `json:"base,omitempty"`
	FetchedAt string            `json:"fetchedAt,omitempty"`
	Rates     map[string]string `json:"rates,omitempty"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	snapshot, status := h.service.Current()

	if err := json.NewEncoder(w).Encode(toStatusDto(snapshot, status, h.service.Online())); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// RefreshRates triggers an immediate fetch outside the background schedule.
func (h *Handler) RefreshRates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := h.service.Refresh(r.Context()); err != nil {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "failed to refresh exchange rates", Details: err.Error()})
		return
	}

	snapshot, status := h.service.Current()
	if err := json.NewEncoder(w).Encode(toStatusDto(snapshot, status, h.service.Online())); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func toStatusDto(snapshot Snapshot, status Status, online bool) StatusDto {
	dto := StatusDto{
		Status: string(status),
		Online: online,
		Base:   snapshot.Base,
	}
	if !snapshot.FetchedAt.IsZero() {
		dto.FetchedAt = snapshot.FetchedAt.Format(time.RFC3339)
	}
	if len(snapshot.Rates) > 0 {
		dto.Rates = make(map[string]string, len(snapshot.Rates))
		for code, rate := range snapshot.Rates {
			dto.Rates[code] = rate.String()
		}
	}
	return dto
}
