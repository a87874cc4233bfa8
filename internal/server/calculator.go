package server

import (
	"net/http"

	"riabuilder/internal/store"
)

type calculatorResponse struct {
	store.CalculatorData
	MeetingHoursPerYear float64 `json:"meetingHoursPerYear"`
	WorkHoursPerYear    float64 `json:"workHoursPerYear"`
}

// GetCalculator returns the capacity calculator inputs plus derived
// hours.
func (h *Handler) GetCalculator(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.GetCalculator()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calculatorResponse{
		CalculatorData:      data,
		MeetingHoursPerYear: data.MeetingHoursPerYear(),
		WorkHoursPerYear:    data.WorkHoursPerYear(),
	})
}

// PutCalculator replaces the calculator inputs.
func (h *Handler) PutCalculator(w http.ResponseWriter, r *http.Request) {
	var data store.CalculatorData
	if err := decodeJSON(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.store.PutCalculator(data); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calculatorResponse{
		CalculatorData:      data,
		MeetingHoursPerYear: data.MeetingHoursPerYear(),
		WorkHoursPerYear:    data.WorkHoursPerYear(),
	})
}
