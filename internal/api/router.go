package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/taskflow/taskflow-api/internal/api/middleware"
	"github.com/taskflow/taskflow-api/internal/api/shared"
)

// NewRouter assembles the HTTP API. Auth endpoints are public; the task
// and comment trees sit behind the session middleware.
func NewRouter(
	authHandler *AuthHandler,
	taskHandler *TaskHandler,
	commentHandler *CommentHandler,
	authMiddleware *middleware.AuthMiddleware,
) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Get("/confirm_register", authHandler.ConfirmRegister)
			r.Post("/repeat_confirm", authHandler.RepeatConfirm)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
			r.Post("/reset_password", authHandler.ResetPassword)
			r.Post("/change_password/{uid}/{token}", authHandler.ChangePassword)
			r.Post("/change_password/{uid}/{token}/", authHandler.ChangePassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.Get)
					r.Put("/", taskHandler.Update)
					r.Patch("/", taskHandler.Patch)
					r.Delete("/", taskHandler.Delete)

					r.Get("/comments", taskHandler.ListComments)
					r.Post("/comments", taskHandler.CreateComment)
				})
			})

			r.Route("/comments/{id}", func(r chi.Router) {
				r.Get("/", commentHandler.Get)
				r.Put("/", commentHandler.Update)
				r.Patch("/", commentHandler.Patch)
				r.Delete("/", commentHandler.Delete)
			})
		})
	})

	return r
}
