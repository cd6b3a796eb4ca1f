package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/taskwise/web/internal/config"
	"github.com/taskwise/web/internal/session"
	"github.com/taskwise/web/internal/taskwise"
	"github.com/taskwise/web/internal/web/middleware"
)

// Handler agrupa as dependências dos handlers de página.
type Handler struct {
	cfg      *config.Config
	sessions *session.Manager
	api      *taskwise.Factory
	render   *Renderer
}

// NewRouter devolve o roteador da aplicação web.
func NewRouter(cfg *config.Config, sessions *session.Manager, api *taskwise.Factory) (http.Handler, error) {
	renderer, err := NewRenderer(sessions)
	if err != nil {
		return nil, err
	}

	h := &Handler{cfg: cfg, sessions: sessions, api: api, render: renderer}

	publicLimiter := middleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	r.Use(middleware.Sessions(sessions))
	r.Use(middleware.Timezone(sessions))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/dashboard", http.StatusFound)
	})

	r.Group(func(public chi.Router) {
		public.Use(middleware.IPRateLimit(publicLimiter))

		public.Get("/login", h.LoginForm)
		public.Post("/login", h.Login)
		public.Get("/signup", h.SignupForm)
		public.Post("/signup", h.Signup)
	})

	// Endpoints consumidos por script: respondem JSON e nunca redirecionam.
	r.Get("/users/me", h.Me)
	r.Post("/timezone", h.SetTimezone)

	r.Group(func(private chi.Router) {
		private.Use(middleware.RequireAuth)

		private.Get("/logout", h.Logout)
		private.Get("/dashboard", h.Dashboard)

		private.Route("/tasks", func(t chi.Router) {
			t.Get("/", h.ListTasks)
			t.Get("/new", h.NewTaskForm)
			t.Post("/", h.CreateTask)
			t.Get("/{id}", h.TaskDetail)
			t.Get("/{id}/edit", h.EditTaskForm)
			t.Post("/{id}", h.UpdateTask)
			t.Post("/{id}/status", h.UpdateTaskStatus)
			t.Post("/{id}/assign", h.AssignTask)

			t.Group(func(admin chi.Router) {
				admin.Use(middleware.RequireAdmin(sessions))
				admin.Post("/{id}/delete", h.DeleteTask)
			})
		})

		private.Route("/sprints", func(s chi.Router) {
			s.Get("/", h.ListSprints)

			s.Group(func(admin chi.Router) {
				admin.Use(middleware.RequireAdmin(sessions))
				admin.Get("/new", h.NewSprintForm)
				admin.Post("/", h.CreateSprint)
				admin.Post("/{id}/start", h.StartSprint)
				admin.Post("/{id}/close", h.CloseSprint)
				admin.Post("/{id}/capacity", h.UpdateCapacity)
				admin.Post("/{id}/tasks/add", h.AddSprintTasks)
				admin.Post("/{id}/tasks/remove", h.RemoveSprintTasks)
			})

			s.Get("/{id}", h.SprintDetail)
		})

		private.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireAdmin(sessions))
			admin.Get("/users", h.ListUsers)
			admin.Get("/users/new", h.NewUserForm)
			admin.Post("/users", h.CreateUser)
		})
	})

	return r, nil
}
