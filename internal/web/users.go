package web

import (
	"net/http"

	"github.com/taskwise/web/internal/session"
	"github.com/taskwise/web/internal/taskwise"
	"github.com/taskwise/web/internal/web/middleware"
)

type usersView struct {
	Users []taskwise.User
}

// ListUsers exibe todos os usuários. Rota restrita a administradores.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	view := usersView{}

	users, err := h.client(r).ListUsers(r.Context())
	if err != nil {
		if sess := middleware.GetSession(r.Context()); sess != nil {
			sess.AddFlash(session.FlashDanger, upstreamMessage(err, nil))
		}
		h.render.Render(w, r, "users", "Usuários", view)
		return
	}

	view.Users = users
	h.render.Render(w, r, "users", "Usuários", view)
}

// NewUserForm exibe o formulário de cadastro de usuário.
func (h *Handler) NewUserForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "user_form", "Novo usuário", nil)
}

// CreateUser cadastra um usuário com papel escolhido pelo administrador.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("name")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	role := r.PostFormValue("role")

	if err := requireField(name, "nome"); err != nil {
		h.flashAndRedirect(w, r, session.FlashWarning, err.Error(), "/users/new")
		return
	}
	if err := validEmail(email); err != nil {
		h.flashAndRedirect(w, r, session.FlashWarning, err.Error(), "/users/new")
		return
	}
	if err := validPassword(password); err != nil {
		h.flashAndRedirect(w, r, session.FlashWarning, err.Error(), "/users/new")
		return
	}

	if err := h.client(r).CreateUser(r.Context(), name, email, password, role); err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusConflict: "Já existe usuário com este e-mail",
		}, "/users/new")
		return
	}

	h.flashAndRedirect(w, r, session.FlashSuccess, "Usuário criado", "/users")
}
