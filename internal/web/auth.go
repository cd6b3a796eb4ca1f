package web

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/taskwise/web/internal/session"
	"github.com/taskwise/web/internal/taskwise"
	"github.com/taskwise/web/internal/web/middleware"
)

// LoginForm exibe a tela de login.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.GetSession(r.Context()); sess != nil && sess.Authenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render.Render(w, r, "login", "Entrar", nil)
}

// Login troca credenciais por token na API e grava token e usuário na
// sessão. Falha nunca destrói uma sessão existente: só enfileira o aviso
// e volta para o login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	if err := validEmail(email); err != nil {
		h.flashAndRedirect(w, r, session.FlashWarning, err.Error(), "/login")
		return
	}
	if password == "" {
		h.flashAndRedirect(w, r, session.FlashWarning, "Informe a senha", "/login")
		return
	}

	result, err := h.client(r).Login(r.Context(), email, password)
	if err != nil {
		message := upstreamMessage(err, map[int]string{
			http.StatusUnauthorized: "Credenciais inválidas",
		})
		h.flashAndRedirect(w, r, session.FlashDanger, message, "/login")
		return
	}

	sess := middleware.GetSession(r.Context())
	sess.Token = result.Token
	sess.User = &result.User
	// Id novo após a troca de privilégio: o cookie pré-login deixa de valer.
	if err := h.sessions.Renew(r.Context(), w, sess); err != nil {
		log.Error().Err(err).Msg("falha ao renovar sessão após login")
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// SignupForm exibe a tela de cadastro.
func (h *Handler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "signup", "Criar conta", nil)
}

// Signup cadastra um usuário na API sem efetuar login.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("name")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	if err := requireField(name, "nome"); err != nil {
		h.flashAndRedirect(w, r, session.FlashWarning, err.Error(), "/signup")
		return
	}
	if err := validEmail(email); err != nil {
		h.flashAndRedirect(w, r, session.FlashWarning, err.Error(), "/signup")
		return
	}
	if err := validPassword(password); err != nil {
		h.flashAndRedirect(w, r, session.FlashWarning, err.Error(), "/signup")
		return
	}

	if err := h.client(r).CreateUser(r.Context(), name, email, password, ""); err != nil {
		h.upstreamFlash(w, r, err, nil, "/signup")
		return
	}

	h.flashAndRedirect(w, r, session.FlashSuccess, "Cadastro realizado, faça login para continuar", "/login")
}

// Logout encerra a sessão e volta para o login.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess != nil {
		if err := h.sessions.Destroy(r.Context(), w, sess); err != nil {
			log.Error().Err(err).Msg("falha ao destruir sessão")
		}
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Me devolve o usuário da sessão em JSON. Consumido por script: responde
// 401 diretamente em vez de redirecionar.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess == nil || !sess.Authenticated() {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão não autenticada")
		return
	}

	user, err := h.client(r).Me(r.Context())
	if err != nil {
		status := taskwise.ErrorStatus(err)
		if status == 0 {
			status = http.StatusBadGateway
		}
		WriteError(w, status, "UPSTREAM", taskwise.ErrorMessage(err, genericUpstreamMessage))
		return
	}
	WriteJSON(w, http.StatusOK, user)
}
