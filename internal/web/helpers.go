package web

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/taskwise/web/internal/session"
	"github.com/taskwise/web/internal/taskwise"
	"github.com/taskwise/web/internal/web/middleware"
)

const genericUpstreamMessage = "Falha ao comunicar com a API TaskWise. Verifique se o serviço está no ar."

// client constrói um cliente da API amarrado ao token e timezone da sessão
// corrente.
func (h *Handler) client(r *http.Request) *taskwise.Client {
	sess := middleware.GetSession(r.Context())
	if sess == nil {
		return h.api.Client("", "")
	}
	return h.api.Client(sess.Token, sess.Timezone)
}

// flashAndRedirect enfileira uma mensagem e redireciona; a mensagem aparece
// na próxima página renderizada.
func (h *Handler) flashAndRedirect(w http.ResponseWriter, r *http.Request, kind, message, target string) {
	if sess := middleware.GetSession(r.Context()); sess != nil {
		sess.AddFlash(kind, message)
		if err := h.sessions.Save(r.Context(), sess); err != nil {
			log.Error().Err(err).Msg("falha ao salvar sessão")
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// upstreamFlash traduz um erro da API em flash de perigo e redireciona.
// A tabela mapeia status HTTP para mensagens específicas da rota; fora
// dela vale a mensagem do corpo da resposta ou o fallback genérico.
func (h *Handler) upstreamFlash(w http.ResponseWriter, r *http.Request, err error, table map[int]string, target string) {
	h.flashAndRedirect(w, r, session.FlashDanger, upstreamMessage(err, table), target)
}

func upstreamMessage(err error, table map[int]string) string {
	if msg, ok := table[taskwise.ErrorStatus(err)]; ok {
		return msg
	}
	return taskwise.ErrorMessage(err, genericUpstreamMessage)
}
