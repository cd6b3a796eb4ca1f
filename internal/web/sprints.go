package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskwise/web/internal/session"
	"github.com/taskwise/web/internal/taskwise"
	"github.com/taskwise/web/internal/web/middleware"
)

// Limite de tarefas buscadas de uma vez: lote das telas de sprint e teto
// do pageSize aceito na listagem.
const sprintTaskFetchLimit = 1000

type sprintRow struct {
	Sprint  taskwise.Sprint
	Pending bool
}

type sprintsView struct {
	Sprints   []sprintRow
	Available []taskwise.Task
}

type sprintDetailView struct {
	Sprint    taskwise.Sprint
	Tasks     []taskwise.Task
	Available []taskwise.Task
	Pending   bool
}

// ListSprints exibe todas as sprints, as tarefas sem sprint disponíveis
// para vínculo e a marcação de pendência por sprint.
func (h *Handler) ListSprints(w http.ResponseWriter, r *http.Request) {
	api := h.client(r)
	view := sprintsView{}

	sprints, err := api.ListSprints(r.Context())
	if err != nil {
		if sess := middleware.GetSession(r.Context()); sess != nil {
			sess.AddFlash(session.FlashDanger, upstreamMessage(err, nil))
		}
		h.render.Render(w, r, "sprints", "Sprints", view)
		return
	}

	var tasks []taskwise.Task
	if list, err := api.ListTasks(r.Context(), taskwise.TaskFilter{Page: 1, PageSize: sprintTaskFetchLimit}); err == nil {
		tasks = list.Items
	}

	pending := pendingBySprint(tasks)
	for _, sprint := range sprints {
		view.Sprints = append(view.Sprints, sprintRow{Sprint: sprint, Pending: pending[sprint.ID]})
	}
	for _, task := range tasks {
		if task.SprintID == "" {
			view.Available = append(view.Available, task)
		}
	}

	h.render.Render(w, r, "sprints", "Sprints", view)
}

// SprintDetail exibe uma sprint com suas tarefas e o pool de tarefas sem
// sprint.
func (h *Handler) SprintDetail(w http.ResponseWriter, r *http.Request) {
	api := h.client(r)
	id := chi.URLParam(r, "id")

	sprint, err := api.GetSprint(r.Context(), id)
	if err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusNotFound: "Sprint não encontrada",
		}, "/sprints")
		return
	}

	view := sprintDetailView{Sprint: sprint}

	var tasks []taskwise.Task
	if list, err := api.ListTasks(r.Context(), taskwise.TaskFilter{Page: 1, PageSize: sprintTaskFetchLimit}); err == nil {
		tasks = list.Items
	}
	for _, task := range tasks {
		switch task.SprintID {
		case sprint.ID:
			view.Tasks = append(view.Tasks, task)
			if task.Status != taskwise.TaskConcluida {
				view.Pending = true
			}
		case "":
			view.Available = append(view.Available, task)
		}
	}
	enrichTasks(r, api, view.Tasks)

	h.render.Render(w, r, "sprint_detail", sprint.Name, view)
}

// NewSprintForm exibe o formulário de criação de sprint.
func (h *Handler) NewSprintForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "sprint_form", "Nova sprint", nil)
}

// CreateSprint cria uma sprint.
func (h *Handler) CreateSprint(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("name")
	if err := requireField(name, "nome"); err != nil {
		h.flashAndRedirect(w, r, session.FlashWarning, err.Error(), "/sprints/new")
		return
	}

	capacity := capacityFromForm(r)
	if err := h.client(r).CreateSprint(r.Context(), name, r.PostFormValue("dueDate"), capacity); err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusUnprocessableEntity: "Dados da sprint inválidos",
		}, "/sprints/new")
		return
	}

	h.flashAndRedirect(w, r, session.FlashSuccess, "Sprint criada", "/sprints")
}

// StartSprint inicia uma sprint.
func (h *Handler) StartSprint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sprintURL := "/sprints/" + id

	if err := h.client(r).StartSprint(r.Context(), id); err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusUnprocessableEntity: "Sprint sem tarefas para iniciar",
		}, sprintURL)
		return
	}

	h.flashAndRedirect(w, r, session.FlashSuccess, "Sprint iniciada", sprintURL)
}

// CloseSprint encerra uma sprint.
func (h *Handler) CloseSprint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sprintURL := "/sprints/" + id

	if err := h.client(r).CloseSprint(r.Context(), id); err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusConflict: "Há tarefas não concluídas na sprint",
		}, sprintURL)
		return
	}

	h.flashAndRedirect(w, r, session.FlashSuccess, "Sprint encerrada", sprintURL)
}

// UpdateCapacity ajusta a capacidade por senioridade da sprint.
func (h *Handler) UpdateCapacity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sprintURL := "/sprints/" + id

	if err := h.client(r).UpdateCapacity(r.Context(), id, capacityFromForm(r)); err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusUnprocessableEntity: "Capacidade inválida",
		}, sprintURL)
		return
	}

	h.flashAndRedirect(w, r, session.FlashSuccess, "Capacidade atualizada", sprintURL)
}

// AddSprintTasks vincula as tarefas selecionadas à sprint.
func (h *Handler) AddSprintTasks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sprintURL := "/sprints/" + id

	if err := r.ParseForm(); err != nil {
		h.flashAndRedirect(w, r, session.FlashWarning, "Formulário inválido", sprintURL)
		return
	}

	if err := h.client(r).AddSprintTasks(r.Context(), id, r.PostForm["taskIds"]); err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusConflict:            "Sprint não editável ou tarefa já vinculada a outra sprint",
			http.StatusUnprocessableEntity: "Selecione ao menos uma tarefa",
		}, sprintURL)
		return
	}

	h.flashAndRedirect(w, r, session.FlashSuccess, "Tarefas adicionadas à sprint", sprintURL)
}

// RemoveSprintTasks desvincula as tarefas selecionadas da sprint.
func (h *Handler) RemoveSprintTasks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sprintURL := "/sprints/" + id

	if err := r.ParseForm(); err != nil {
		h.flashAndRedirect(w, r, session.FlashWarning, "Formulário inválido", sprintURL)
		return
	}

	if err := h.client(r).RemoveSprintTasks(r.Context(), id, r.PostForm["taskIds"]); err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusConflict:            "Sprint não editável",
			http.StatusUnprocessableEntity: "A seleção precisa pertencer à sprint",
		}, sprintURL)
		return
	}

	h.flashAndRedirect(w, r, session.FlashSuccess, "Tarefas removidas da sprint", sprintURL)
}

// pendingBySprint marca as sprints com ao menos uma tarefa não concluída.
func pendingBySprint(tasks []taskwise.Task) map[string]bool {
	pending := make(map[string]bool)
	for _, task := range tasks {
		if task.SprintID != "" && task.Status != taskwise.TaskConcluida {
			pending[task.SprintID] = true
		}
	}
	return pending
}

func capacityFromForm(r *http.Request) taskwise.Capacity {
	return taskwise.Capacity{
		Junior: formFloat(r.PostFormValue("junior")),
		Pleno:  formFloat(r.PostFormValue("pleno")),
		Senior: formFloat(r.PostFormValue("senior")),
	}
}
