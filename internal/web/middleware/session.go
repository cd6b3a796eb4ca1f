package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/taskwise/web/internal/session"
)

type contextKey string

const contextKeySession contextKey = "session"

// Sessions carrega (ou cria) a sessão do cookie e a injeta no contexto de
// toda requisição. Falha no store não derruba a página: segue com uma
// sessão efêmera, apenas não persistida.
func Sessions(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := manager.Load(w, r)
			if err != nil {
				log.Error().Err(err).Msg("falha ao carregar sessão")
				sess = &session.Session{}
			}

			ctx := context.WithValue(r.Context(), contextKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession recupera a sessão do contexto.
func GetSession(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(contextKeySession).(*session.Session)
	return sess
}

// ContextWithSession injeta uma sessão no contexto. Uso em testes.
func ContextWithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, contextKeySession, sess)
}

// Timezone persiste o parâmetro de query tz na sessão. Última escrita
// vence e o valor não é validado como IANA, comportamento herdado do
// cliente que envia o fuso detectado no navegador.
func Timezone(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tz := r.URL.Query().Get("tz"); tz != "" {
				if sess := GetSession(r.Context()); sess != nil && sess.Timezone != tz {
					sess.Timezone = tz
					if err := manager.Save(r.Context(), sess); err != nil {
						log.Error().Err(err).Msg("falha ao salvar timezone na sessão")
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
