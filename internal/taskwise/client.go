package taskwise

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimezone = "UTC"

// APIError carrega o status HTTP e a mensagem devolvidos pela API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("taskwise api: status %d", e.Status)
	}
	return e.Message
}

// ErrorStatus extrai o status HTTP de um erro da API (0 quando ausente).
func ErrorStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// ErrorMessage extrai a mensagem da API, usando fallback quando vazia.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}

// Factory produz clientes ligados a um token e timezone de sessão.
type Factory struct {
	baseURL   string
	defaultTZ string
}

// NewFactory cria a fábrica de clientes apontando para a API TaskWise.
func NewFactory(baseURL, defaultTZ string) *Factory {
	return &Factory{
		baseURL:   strings.TrimRight(baseURL, "/"),
		defaultTZ: strings.TrimSpace(defaultTZ),
	}
}

// Client devolve um cliente configurado para a sessão corrente. Token e
// timezone podem estar vazios: sem token nenhum Authorization é enviado e
// o timezone resolve para o default da fábrica ou UTC.
func (f *Factory) Client(token, timezone string) *Client {
	tz := strings.TrimSpace(timezone)
	if tz == "" {
		tz = f.defaultTZ
	}
	if tz == "" {
		tz = defaultTimezone
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    f.baseURL,
		token:      token,
		timezone:   tz,
	}
}

// Client encapsula chamadas à API TaskWise.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	timezone   string
}

// Login troca credenciais por token e usuário.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var result LoginResult
	err := c.call(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	return result, err
}

// Me devolve o usuário dono do token corrente.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.call(ctx, http.MethodGet, "/users/me", nil, &user)
	return user, err
}

// CreateUser cadastra um novo usuário.
func (c *Client) CreateUser(ctx context.Context, name, email, password, role string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	if role != "" {
		body["role"] = role
	}
	return c.call(ctx, http.MethodPost, "/users", body, nil)
}

// ListUsers devolve todos os usuários.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := c.call(ctx, http.MethodGet, "/users", nil, &users)
	return users, err
}

// AvailableUsers devolve os usuários elegíveis para atribuição de tarefas.
func (c *Client) AvailableUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := c.call(ctx, http.MethodGet, "/users/available", nil, &users)
	return users, err
}

// ListSprints devolve todas as sprints.
func (c *Client) ListSprints(ctx context.Context) ([]Sprint, error) {
	var sprints []Sprint
	err := c.call(ctx, http.MethodGet, "/sprints", nil, &sprints)
	return sprints, err
}

// GetSprint devolve uma sprint pelo id.
func (c *Client) GetSprint(ctx context.Context, id string) (Sprint, error) {
	var sprint Sprint
	err := c.call(ctx, http.MethodGet, "/sprints/"+url.PathEscape(id), nil, &sprint)
	return sprint, err
}

// CreateSprint cria uma sprint.
func (c *Client) CreateSprint(ctx context.Context, name, dueDate string, capacity Capacity) error {
	return c.call(ctx, http.MethodPost, "/sprints", map[string]any{
		"name":     name,
		"dueDate":  dueDate,
		"capacity": capacity,
	}, nil)
}

// StartSprint inicia uma sprint.
func (c *Client) StartSprint(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodPatch, "/sprints/"+url.PathEscape(id)+"/start", nil, nil)
}

// CloseSprint encerra uma sprint.
func (c *Client) CloseSprint(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodPatch, "/sprints/"+url.PathEscape(id)+"/close", nil, nil)
}

// UpdateCapacity ajusta a capacidade da sprint.
func (c *Client) UpdateCapacity(ctx context.Context, id string, capacity Capacity) error {
	return c.call(ctx, http.MethodPatch, "/sprints/"+url.PathEscape(id)+"/capacity", capacity, nil)
}

// AddSprintTasks vincula tarefas à sprint.
func (c *Client) AddSprintTasks(ctx context.Context, id string, taskIDs []string) error {
	return c.call(ctx, http.MethodPatch, "/sprints/"+url.PathEscape(id)+"/tasks", map[string]any{
		"taskIds": taskIDs,
	}, nil)
}

// RemoveSprintTasks desvincula tarefas da sprint.
func (c *Client) RemoveSprintTasks(ctx context.Context, id string, taskIDs []string) error {
	return c.call(ctx, http.MethodPatch, "/sprints/"+url.PathEscape(id)+"/tasks/remove", map[string]any{
		"taskIds": taskIDs,
	}, nil)
}

// ListTasks devolve a listagem paginada de tarefas.
func (c *Client) ListTasks(ctx context.Context, filter TaskFilter) (TaskList, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.SprintID != "" {
		q.Set("sprintId", filter.SprintID)
	}
	if filter.Risco != "" {
		q.Set("risco", filter.Risco)
	}
	if filter.Complexidade != "" {
		q.Set("complexidade", filter.Complexidade)
	}
	if filter.AssigneeID != "" {
		q.Set("assigneeId", filter.AssigneeID)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(filter.PageSize))
	}

	path := "/tasks"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var list TaskList
	err := c.call(ctx, http.MethodGet, path, nil, &list)
	return list, err
}

// GetTask devolve uma tarefa pelo id.
func (c *Client) GetTask(ctx context.Context, id string) (Task, error) {
	var task Task
	err := c.call(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &task)
	return task, err
}

// CreateTask cria uma tarefa.
func (c *Client) CreateTask(ctx context.Context, task Task) error {
	return c.call(ctx, http.MethodPost, "/tasks", taskPayload(task), nil)
}

// UpdateTask atualiza uma tarefa existente.
func (c *Client) UpdateTask(ctx context.Context, id string, task Task) error {
	return c.call(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), taskPayload(task), nil)
}

// DeleteTask remove uma tarefa.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// StatusChange descreve uma transição de status. Os campos de bloqueio só
// são enviados quando o destino é Bloqueada.
type StatusChange struct {
	Status        string
	Reason        string
	ResponsibleID string
}

// UpdateTaskStatus aplica uma transição de status na tarefa.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, change StatusChange) error {
	body := map[string]any{"status": change.Status}
	if change.Status == TaskBloqueada {
		body["block"] = map[string]string{
			"reason":        change.Reason,
			"responsibleId": change.ResponsibleID,
		}
	}
	return c.call(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id)+"/status", body, nil)
}

// AssignTask define o responsável pela tarefa.
func (c *Client) AssignTask(ctx context.Context, taskID, userID string) error {
	path := "/tasks/" + url.PathEscape(taskID) + "/assign/" + url.PathEscape(userID)
	return c.call(ctx, http.MethodPatch, path, nil, nil)
}

// DashboardSummary devolve o resumo do dashboard para a sprint informada.
func (c *Client) DashboardSummary(ctx context.Context, sprintID string) (Summary, error) {
	var summary Summary
	path := "/dashboard/summary?sprintId=" + url.QueryEscape(sprintID)
	err := c.call(ctx, http.MethodGet, path, nil, &summary)
	return summary, err
}

func taskPayload(task Task) map[string]any {
	payload := map[string]any{
		"title":        task.Title,
		"description":  task.Description,
		"risco":        task.Risco,
		"complexidade": task.Complexidade,
		"fases":        task.Fases,
	}
	if task.SprintID != "" {
		payload["sprintId"] = task.SprintID
	}
	if task.DueDate != "" {
		payload["dueDate"] = task.DueDate
	}
	return payload
}

func (c *Client) call(ctx context.Context, method, path string, body, v any) error {
	req, err := c.newRequest(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	return c.do(req, v)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return nil, err
		}
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Timezone", c.timezone)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	message := strings.TrimSpace(payload.Message)
	if message == "" && len(payload.Errors) > 0 {
		message = strings.TrimSpace(payload.Errors[0])
	}
	return &APIError{Status: resp.StatusCode, Message: message}
}
