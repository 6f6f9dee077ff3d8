package settings

import (
	"net/http"

	"servecart/models"
	"servecart/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	Store *Store
}

func (h *Handler) GetSite(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	site, err := h.Store.Site(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, site)
}

// UpdateSite replaces the settings; blank fields fall back to the defaults.
func (h *Handler) UpdateSite(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in models.SiteSettings
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	site, err := h.Store.UpdateSite(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, site)
}

// ListPaymentMethods returns the active methods; ?all=true includes
// inactive ones.
func (h *Handler) ListPaymentMethods(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	methods, err := h.Store.PaymentMethods(r.Context(), r.URL.Query().Get("all") == "true")
	if err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, methods)
}

func (h *Handler) SavePaymentMethod(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var pm models.PaymentMethod
	if err := utils.DecodeJSON(w, r, &pm); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	pm.ID = ps.ByName("id")
	if err := h.Store.SavePaymentMethod(r.Context(), pm); err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, pm)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidSettings) {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Error().Err(err).Msg("settings request failed")
	utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
}
