package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/rs/zerolog/log"

	"github.com/taskwise/web/internal/session"
	"github.com/taskwise/web/internal/taskwise"
	"github.com/taskwise/web/internal/web/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login", "signup", "dashboard",
	"tasks", "task_detail", "task_form",
	"sprints", "sprint_detail", "sprint_form",
	"users", "user_form",
}

// ViewData é o contexto comum entregue a todo template: usuário corrente,
// timezone resolvido, fila de flashes drenada e o view-model da página.
type ViewData struct {
	Title     string
	User      *taskwise.User
	Timezone  string
	Flashes   []session.Flash
	CSRFField template.HTML
	CSRFToken string
	Data      any
}

// Renderer executa os templates embarcados sobre o layout base.
type Renderer struct {
	pages    map[string]*template.Template
	sessions *session.Manager
}

// NewRenderer compila cada página junto do layout base.
func NewRenderer(sessions *session.Manager) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages, sessions: sessions}, nil
}

// Render monta o ViewData da sessão corrente e executa a página. A fila de
// flashes é drenada aqui: toda mensagem aparece em exatamente uma
// renderização.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	tmpl, ok := rd.pages[page]
	if !ok {
		log.Error().Str("page", page).Msg("template desconhecido")
		http.Error(w, "Erro interno", http.StatusInternalServerError)
		return
	}

	view := ViewData{
		Title:     title,
		CSRFField: csrf.TemplateField(r),
		CSRFToken: csrf.Token(r),
		Data:      data,
	}
	if sess := middleware.GetSession(r.Context()); sess != nil {
		view.User = sess.User
		view.Timezone = sess.Timezone
		view.Flashes = sess.TakeFlashes()
		if len(view.Flashes) > 0 {
			if err := rd.sessions.Save(r.Context(), sess); err != nil {
				log.Error().Err(err).Msg("falha ao limpar flashes da sessão")
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", view); err != nil {
		log.Error().Err(err).Str("page", page).Msg("falha ao renderizar template")
	}
}
