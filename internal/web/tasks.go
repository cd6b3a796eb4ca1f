package web

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/taskwise/web/internal/pert"
	"github.com/taskwise/web/internal/session"
	"github.com/taskwise/web/internal/taskwise"
	"github.com/taskwise/web/internal/web/middleware"
)

// taskStatuses alimenta o select de transição de status nas telas.
var taskStatuses = []string{
	taskwise.TaskNaoIniciada,
	taskwise.TaskEmAndamento,
	taskwise.TaskBloqueada,
	taskwise.TaskConcluida,
}

type tasksView struct {
	Tasks      []taskwise.Task
	Sprints    []taskwise.Sprint
	Assignees  []taskwise.User
	Filter     taskwise.TaskFilter
	Total      int
	TotalPages int
}

type taskFormView struct {
	Task      taskwise.Task
	Sprints   []taskwise.Sprint
	Phases    []string
	Labels    map[string]string
	Estimates map[string]taskwise.Estimativa
	Editing   bool
}

type taskDetailView struct {
	Task      taskwise.Task
	Assignees []taskwise.User
	Statuses  []string
}

// ListTasks exibe a listagem filtrada e paginada de tarefas.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	api := h.client(r)
	q := r.URL.Query()

	pageSize := formInt(q.Get("pageSize"), 10)
	if pageSize > sprintTaskFetchLimit {
		pageSize = sprintTaskFetchLimit
	}

	filter := taskwise.TaskFilter{
		Status:       q.Get("status"),
		SprintID:     q.Get("sprintId"),
		Risco:        q.Get("risco"),
		Complexidade: q.Get("complexidade"),
		AssigneeID:   q.Get("assigneeId"),
		Page:         formInt(q.Get("page"), 1),
		PageSize:     pageSize,
	}
	view := tasksView{Filter: filter}

	list, err := api.ListTasks(r.Context(), filter)
	if err != nil {
		if sess := middleware.GetSession(r.Context()); sess != nil {
			sess.AddFlash(session.FlashDanger, upstreamMessage(err, nil))
		}
		h.render.Render(w, r, "tasks", "Tarefas", view)
		return
	}

	enrichTasks(r, api, list.Items)
	view.Tasks = list.Items
	view.Total = list.Total
	if filter.PageSize > 0 {
		view.TotalPages = (list.Total + filter.PageSize - 1) / filter.PageSize
	}

	if sprints, err := api.ListSprints(r.Context()); err == nil {
		view.Sprints = sprints
	}
	view.Assignees = h.loadAssignees(r, api)

	h.render.Render(w, r, "tasks", "Tarefas", view)
}

// enrichTasks completa itens de listagem sem totalHours/totalDays/dueDate
// buscando o detalhe de cada um em paralelo. Item cujo detalhe falha segue
// com os campos originais.
func enrichTasks(r *http.Request, api *taskwise.Client, tasks []taskwise.Task) {
	var wg sync.WaitGroup
	for i := range tasks {
		if !tasks[i].NeedsDetail() {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			detail, err := api.GetTask(r.Context(), tasks[i].ID)
			if err != nil {
				return
			}
			tasks[i].TotalHours = detail.TotalHours
			tasks[i].TotalDays = detail.TotalDays
			tasks[i].DueDate = detail.DueDate
		}(i)
	}
	wg.Wait()
}

// loadAssignees busca os usuários elegíveis para atribuição. API sem o
// endpoint (404) cai para a lista completa de usuários, disponível só para
// administradores, reduzida aos campos exibidos.
func (h *Handler) loadAssignees(r *http.Request, api *taskwise.Client) []taskwise.User {
	users, err := api.AvailableUsers(r.Context())
	if err == nil {
		return users
	}
	if taskwise.ErrorStatus(err) != http.StatusNotFound {
		return nil
	}

	sess := middleware.GetSession(r.Context())
	if sess == nil || !sess.IsAdmin() {
		return nil
	}
	all, err := api.ListUsers(r.Context())
	if err != nil {
		return nil
	}
	reduced := make([]taskwise.User, 0, len(all))
	for _, u := range all {
		reduced = append(reduced, taskwise.User{ID: u.ID, Name: u.Name})
	}
	return reduced
}

// NewTaskForm exibe o formulário de criação.
func (h *Handler) NewTaskForm(w http.ResponseWriter, r *http.Request) {
	view := taskFormView{Phases: pert.Phases, Labels: pert.Labels}
	if sprints, err := h.client(r).ListSprints(r.Context()); err == nil {
		view.Sprints = sprints
	}
	h.render.Render(w, r, "task_form", "Nova tarefa", view)
}

// CreateTask valida as estimativas PERT localmente e cria a tarefa. Com
// estimativas fora de ordem a API nem chega a ser chamada.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	if err := requireField(r.PostFormValue("title"), "título"); err != nil {
		h.flashAndRedirect(w, r, session.FlashWarning, err.Error(), "/tasks/new")
		return
	}

	estimates := estimatesFromForm(r)
	if violations := pert.Validate(estimates); len(violations) > 0 {
		h.flashAndRedirect(w, r, session.FlashWarning, violations[0].Reason, "/tasks/new")
		return
	}

	task := taskFromForm(r, estimates)
	if err := h.client(r).CreateTask(r.Context(), task); err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusUnprocessableEntity: "Dados inválidos ou estimativas PERT fora de ordem",
		}, "/tasks/new")
		return
	}

	h.flashAndRedirect(w, r, session.FlashSuccess, "Tarefa criada", "/tasks")
}

// TaskDetail exibe uma tarefa.
func (h *Handler) TaskDetail(w http.ResponseWriter, r *http.Request) {
	api := h.client(r)
	id := chi.URLParam(r, "id")

	task, err := api.GetTask(r.Context(), id)
	if err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusNotFound: "Tarefa não encontrada",
		}, "/tasks")
		return
	}

	view := taskDetailView{
		Task:      task,
		Assignees: h.loadAssignees(r, api),
		Statuses:  taskStatuses,
	}
	h.render.Render(w, r, "task_detail", task.Title, view)
}

// EditTaskForm exibe o formulário de edição.
func (h *Handler) EditTaskForm(w http.ResponseWriter, r *http.Request) {
	api := h.client(r)
	id := chi.URLParam(r, "id")

	task, err := api.GetTask(r.Context(), id)
	if err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusNotFound: "Tarefa não encontrada",
		}, "/tasks")
		return
	}

	view := taskFormView{
		Task:    task,
		Phases:  pert.Phases,
		Labels:  pert.Labels,
		Editing: true,
		Estimates: map[string]taskwise.Estimativa{
			"analiseModelagem": task.Fases.AnaliseModelagem,
			"execucao":         task.Fases.Execucao,
			"reteste":          task.Fases.Reteste,
			"documentacao":     task.Fases.Documentacao,
		},
	}
	if sprints, err := api.ListSprints(r.Context()); err == nil {
		view.Sprints = sprints
	}
	h.render.Render(w, r, "task_form", "Editar tarefa", view)
}

// UpdateTask valida as estimativas e atualiza a tarefa.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	formURL := "/tasks/" + id + "/edit"

	if err := requireField(r.PostFormValue("title"), "título"); err != nil {
		h.flashAndRedirect(w, r, session.FlashWarning, err.Error(), formURL)
		return
	}

	estimates := estimatesFromForm(r)
	if violations := pert.Validate(estimates); len(violations) > 0 {
		h.flashAndRedirect(w, r, session.FlashWarning, violations[0].Reason, formURL)
		return
	}

	task := taskFromForm(r, estimates)
	if err := h.client(r).UpdateTask(r.Context(), id, task); err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusUnprocessableEntity: "Dados inválidos ou estimativas PERT fora de ordem",
			http.StatusConflict:            "Tarefa já vinculada a outra sprint",
		}, formURL)
		return
	}

	h.flashAndRedirect(w, r, session.FlashSuccess, "Tarefa atualizada", "/tasks/"+id)
}

// UpdateTaskStatus aplica uma transição de status. Pedido igual ao status
// atual, sem ser bloqueio, não chega à API.
func (h *Handler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	api := h.client(r)
	id := chi.URLParam(r, "id")
	taskURL := "/tasks/" + id
	requested := r.PostFormValue("status")

	task, err := api.GetTask(r.Context(), id)
	if err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusNotFound: "Tarefa não encontrada",
		}, "/tasks")
		return
	}

	if task.Status == requested && requested != taskwise.TaskBloqueada {
		h.flashAndRedirect(w, r, session.FlashInfo, "Status já era "+requested+"; nada a alterar", taskURL)
		return
	}

	change := taskwise.StatusChange{Status: requested}
	if requested == taskwise.TaskBloqueada {
		change.Reason = r.PostFormValue("reason")
		change.ResponsibleID = r.PostFormValue("responsibleId")
		if change.Reason == "" || change.ResponsibleID == "" {
			h.flashAndRedirect(w, r, session.FlashWarning, "Bloqueio exige motivo e responsável", taskURL)
			return
		}
	}

	if err := api.UpdateTaskStatus(r.Context(), id, change); err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusUnprocessableEntity: "Transição de status inválida",
			http.StatusConflict:            "Não é possível concluir sem responsável ou com a sprint não iniciada",
		}, taskURL)
		return
	}

	h.flashAndRedirect(w, r, session.FlashSuccess, "Status atualizado", taskURL)
}

// AssignTask define o responsável pela tarefa.
func (h *Handler) AssignTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	taskURL := "/tasks/" + id

	userID := r.PostFormValue("assigneeId")
	if userID == "" {
		h.flashAndRedirect(w, r, session.FlashWarning, "Selecione um responsável", taskURL)
		return
	}

	if err := h.client(r).AssignTask(r.Context(), id, userID); err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusNotFound: "Tarefa ou usuário não encontrado",
		}, taskURL)
		return
	}

	h.flashAndRedirect(w, r, session.FlashSuccess, "Responsável atribuído", taskURL)
}

// DeleteTask remove uma tarefa. Rota restrita a administradores.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.client(r).DeleteTask(r.Context(), id); err != nil {
		h.upstreamFlash(w, r, err, map[int]string{
			http.StatusNotFound:  "Tarefa não encontrada",
			http.StatusForbidden: "Sem permissão para excluir a tarefa",
		}, "/tasks")
		return
	}

	h.flashAndRedirect(w, r, session.FlashSuccess, "Tarefa excluída", "/tasks")
}

func estimatesFromForm(r *http.Request) []pert.Estimate {
	estimates := make([]pert.Estimate, 0, len(pert.Phases))
	for _, phase := range pert.Phases {
		estimates = append(estimates, pert.Estimate{
			Phase:       phase,
			Optimistic:  r.PostFormValue(phase + "_o"),
			MostLikely:  r.PostFormValue(phase + "_m"),
			Pessimistic: r.PostFormValue(phase + "_p"),
		})
	}
	return estimates
}

func taskFromForm(r *http.Request, estimates []pert.Estimate) taskwise.Task {
	task := taskwise.Task{
		Title:        r.PostFormValue("title"),
		Description:  r.PostFormValue("description"),
		Risco:        r.PostFormValue("risco"),
		Complexidade: r.PostFormValue("complexidade"),
		SprintID:     r.PostFormValue("sprintId"),
		DueDate:      r.PostFormValue("dueDate"),
	}
	for _, est := range estimates {
		o, m, p := est.Values()
		value := taskwise.Estimativa{Otimista: o, Provavel: m, Pessimista: p}
		switch est.Phase {
		case "analiseModelagem":
			task.Fases.AnaliseModelagem = value
		case "execucao":
			task.Fases.Execucao = value
		case "reteste":
			task.Fases.Reteste = value
		case "documentacao":
			task.Fases.Documentacao = value
		}
	}
	return task
}
