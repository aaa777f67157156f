package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/filaops/scheduler/backend/internal/config"
	"github.com/filaops/scheduler/backend/internal/domain"
	"github.com/filaops/scheduler/backend/internal/repository"
)

type Handler struct {
	validate     *validator.Validate
	config       *config.Config
	repository   *repository.Repository
	translator   ut.Translator
	queueChannel *amqp.Channel
	redisClient  *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, queueCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:     validate,
		config:       cfg,
		repository:   repo,
		translator:   trans,
		queueChannel: queueCh,
		redisClient:  rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// everything below requires a signed-in user
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
			})
		})

		r.Route("/machines", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Post("/", h.CreateMachine)
			r.Get("/", h.GetAllMachines)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.machineInfo)
				r.Get("/", h.GetMachine)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Patch("/", h.UpdateMachine)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Delete("/", h.DeleteMachine)
			})
		})

		r.Route("/jobs", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Post("/", h.CreateJob)
			r.Get("/", h.GetAllJobs)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.jobInfo)
				r.Get("/", h.GetJob)
				r.Group(func(r chi.Router) {
					r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner}))
					r.Patch("/status", h.UpdateJobStatus)
					r.Post("/place", h.PlaceJob)
					r.Post("/resize", h.ResizeJob)
					r.Post("/nudge", h.NudgeJob)
				})
			})
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/work-schedule", h.GetWorkSchedule)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Put("/work-schedule", h.UpdateWorkSchedule)
			r.Get("/snap", h.GetSnapMinutes)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Put("/snap", h.UpdateSnapMinutes)
		})
	})
}
