package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/taskwise/web/internal/session"
)

// RequireAuth bloqueia navegação anônima redirecionando para o login.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := GetSession(r.Context())
		if sess == nil || !sess.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin garante papel Admin. Pressupõe RequireAuth já aplicado;
// não-admins voltam para a página de origem com um aviso.
func RequireAdmin(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSession(r.Context())
			if sess == nil || !sess.Authenticated() {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			if !sess.IsAdmin() {
				sess.AddFlash(session.FlashWarning, "Ação restrita a administradores")
				if err := manager.Save(r.Context(), sess); err != nil {
					log.Error().Err(err).Msg("falha ao salvar sessão")
				}
				http.Redirect(w, r, backURL(r), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// backURL resolve o destino do "voltar": o Referer quando presente, senão
// o dashboard.
func backURL(r *http.Request) string {
	if ref := r.Header.Get("Referer"); ref != "" {
		return ref
	}
	return "/dashboard"
}
