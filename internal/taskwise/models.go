package taskwise

// Status possíveis de uma tarefa na API TaskWise.
const (
	TaskNaoIniciada = "Não Iniciada"
	TaskEmAndamento = "Em Andamento"
	TaskBloqueada   = "Bloqueada"
	TaskConcluida   = "Concluída"
)

// Status possíveis de uma sprint.
const (
	SprintCreated = "Created"
	SprintStarted = "Started"
	SprintClosed  = "Closed"
)

// RoleAdmin identifica usuários administradores.
const RoleAdmin = "Admin"

// User representa um usuário retornado pela API.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin indica papel de administrador.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Estimativa guarda os três valores PERT de uma fase.
type Estimativa struct {
	Otimista   float64 `json:"o"`
	Provavel   float64 `json:"m"`
	Pessimista float64 `json:"p"`
}

// Fases agrupa as estimativas das quatro fases de uma tarefa.
type Fases struct {
	AnaliseModelagem Estimativa `json:"analiseModelagem"`
	Execucao         Estimativa `json:"execucao"`
	Reteste          Estimativa `json:"reteste"`
	Documentacao     Estimativa `json:"documentacao"`
}

// Task representa uma tarefa conforme devolvida pela API.
type Task struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Status        string  `json:"status"`
	Risco         string  `json:"risco"`
	Complexidade  string  `json:"complexidade"`
	SprintID      string  `json:"sprintId"`
	AssigneeID    string  `json:"assigneeId"`
	AssigneeName  string  `json:"assigneeName"`
	TotalHours    float64 `json:"totalHours"`
	TotalDays     float64 `json:"totalDays"`
	DueDate       string  `json:"dueDate"`
	Fases         Fases   `json:"fases"`
}

// NeedsDetail indica item de listagem sem algum dos campos calculados
// pela API; qualquer ausência pede a busca do detalhe.
func (t Task) NeedsDetail() bool {
	return t.TotalHours == 0 || t.TotalDays == 0 || t.DueDate == ""
}

// TaskList é o envelope paginado de GET /tasks.
type TaskList struct {
	Items    []Task `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// TaskFilter agrupa filtros e paginação da listagem de tarefas.
type TaskFilter struct {
	Status       string
	SprintID     string
	Risco        string
	Complexidade string
	AssigneeID   string
	Page         int
	PageSize     int
}

// Capacity descreve a capacidade da sprint por senioridade, em horas.
type Capacity struct {
	Junior float64 `json:"junior"`
	Pleno  float64 `json:"pleno"`
	Senior float64 `json:"senior"`
}

// Sprint representa uma sprint conforme devolvida pela API.
type Sprint struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Capacity Capacity `json:"capacity"`
	TaskIDs  []string `json:"taskIds"`
	DueDate  string   `json:"dueDate"`
}

// Summary agrega os números do dashboard para uma sprint.
type Summary struct {
	TotalTarefas int     `json:"totalTarefas"`
	Concluidas   int     `json:"concluidas"`
	EmAndamento  int     `json:"emAndamento"`
	Bloqueadas   int     `json:"bloqueadas"`
	HorasTotais  float64 `json:"horasTotais"`
	Progresso    float64 `json:"progresso"`
}

// LoginResult é a resposta de POST /auth/login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
