package handlers

import (
	"encoding/json"
	"net/http"

	"chiya-order-service/internal/store"
	"chiya-order-service/pkg/response"
)

func (h *Handler) StaffSettingsGet(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.Store.Settings())
}

func (h *Handler) StaffSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var patch store.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		badRequest(w, "Invalid request body")
		return
	}

	if patch.NumberOfTables != nil && *patch.NumberOfTables < 1 {
		badRequest(w, "Number of tables must be at least 1")
		return
	}

	response.Success(w, h.Store.UpdateSettings(patch))
}
