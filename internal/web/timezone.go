package web

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/taskwise/web/internal/web/middleware"
)

// SetTimezone grava o fuso enviado por script na sessão e responde o valor
// resolvido em JSON, sem navegação.
func (h *Handler) SetTimezone(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess == nil {
		WriteError(w, http.StatusInternalServerError, "SESSION", "sessão indisponível")
		return
	}

	if tz := strings.TrimSpace(r.PostFormValue("tz")); tz != "" {
		sess.Timezone = tz
		if err := h.sessions.Save(r.Context(), sess); err != nil {
			log.Error().Err(err).Msg("falha ao salvar timezone na sessão")
		}
	}

	resolved := sess.Timezone
	if resolved == "" {
		resolved = h.cfg.DefaultTimezone
	}
	if resolved == "" {
		resolved = "UTC"
	}
	WriteJSON(w, http.StatusOK, map[string]string{"timezone": resolved})
}
