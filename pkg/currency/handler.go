package currency

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/centavo/centavo/internal/rest"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type CurrencyDto struct {
	Code              string `json:"code"`
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	DecimalDigits     int    `json:"decimalDigits"`
	SymbolFirst       bool   `json:"symbolFirst"`
	ThousandSeparator string `json:"thousandSeparator"`
	DecimalSeparator  string `json:"decimalSeparator"`
}

type PreviewDto struct {
	Code      string `json:"code"`
	Formatted string `json:"formatted"`
}

type ConversionDto struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Converted string `json:"converted"`
	Formatted string `json:"formatted"`
}

type Handler struct {
	converter *Converter
}

func NewHandler(converter *Converter) *Handler {
	return &Handler{converter: converter}
}

func (h *Handler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	supported := Supported()
	dtos := make([]CurrencyDto, 0, len(supported))
	for _, c := range supported {
		dtos = append(dtos, toCurrencyDto(c))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Preview renders a sample amount in the requested currency so clients can
// show the exact output format next to a currency picker.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	code := mux.Vars(r)["code"]

	amount := 1234.5
	if raw := r.URL.Query().Get("amount"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "invalid amount", Details: err.Error()})
			return
		}
		amount = parsed
	}

	resolved := Lookup(code)
	dto := PreviewDto{
		Code:      resolved.Code,
		Formatted: FormatFloat(amount, code),
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "invalid amount", Details: err.Error()})
		return
	}

	converted, err := h.converter.Convert(amount, from, to)
	if err != nil {
		if errors.Is(err, ErrRateUnavailable) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "exchange rate unavailable"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	dto := ConversionDto{
		From:      from,
		To:        to,
		Amount:    amount.String(),
		Converted: converted.String(),
		Formatted: Format(converted, to),
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func toCurrencyDto(c Currency) CurrencyDto {
	return CurrencyDto{
		Code:              c.Code,
		Name:              c.Name,
		Symbol:            c.Symbol,
		DecimalDigits:     c.DecimalDigits,
		SymbolFirst:       c.SymbolFirst,
		ThousandSeparator: c.ThousandSeparator,
		DecimalSeparator:  c.DecimalSeparator,
	}
}
