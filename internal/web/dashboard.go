package web

import (
	"net/http"

	"github.com/taskwise/web/internal/session"
	"github.com/taskwise/web/internal/taskwise"
	"github.com/taskwise/web/internal/web/middleware"
)

type dashboardView struct {
	Sprints  []taskwise.Sprint
	Selected *taskwise.Sprint
	Summary  *taskwise.Summary
}

// Dashboard mostra a sprint selecionada e seu resumo. A seleção segue a
// precedência: sprintId da query, sprint com status Started, primeira da
// lista. Falha parcial do re-fetch ou do resumo não derruba a página.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	api := h.client(r)
	view := dashboardView{}

	sprints, err := api.ListSprints(r.Context())
	if err != nil {
		if sess := middleware.GetSession(r.Context()); sess != nil {
			sess.AddFlash(session.FlashDanger, upstreamMessage(err, nil))
		}
		h.render.Render(w, r, "dashboard", "Dashboard", view)
		return
	}
	view.Sprints = sprints

	selected := selectSprint(sprints, r.URL.Query().Get("sprintId"))
	if selected == nil {
		h.render.Render(w, r, "dashboard", "Dashboard", view)
		return
	}

	// Re-busca a sprint pelo id para campos atualizados; em falha fica a
	// cópia vinda da listagem.
	if fresh, err := api.GetSprint(r.Context(), selected.ID); err == nil {
		selected = &fresh
	}
	view.Selected = selected

	if summary, err := api.DashboardSummary(r.Context(), selected.ID); err == nil {
		view.Summary = &summary
	}

	h.render.Render(w, r, "dashboard", "Dashboard", view)
}

func selectSprint(sprints []taskwise.Sprint, explicitID string) *taskwise.Sprint {
	if len(sprints) == 0 {
		return nil
	}
	if explicitID != "" {
		for i := range sprints {
			if sprints[i].ID == explicitID {
				return &sprints[i]
			}
		}
	}
	for i := range sprints {
		if sprints[i].Status == taskwise.SprintStarted {
			return &sprints[i]
		}
	}
	return &sprints[0]
}
