package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"fambook-go/internal/config"
	"fambook-go/internal/transport/httpserver/handler"
	authmw "fambook-go/internal/transport/httpserver/middleware"
	"fambook-go/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, users authmw.UserSyncer, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(httprate.Limit(300, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		auth := authmw.NewProviderAuth(cfg.Auth, users, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/users/me", handlers.Me)
			r.Get("/users/sync", handlers.SyncUser)
			r.Route("/users/{id}", func(r chi.Router) {
				r.Get("/profile", handlers.GetProfile)
				r.Patch("/profile/basic-info", handlers.UpdateBasicInfo)
				r.Patch("/profile/privacy", handlers.UpdatePrivacy)
				r.Patch("/profile/tab-visibility", handlers.UpdateTabVisibility)
				r.Patch("/profile/picture", handlers.UpdatePicture)
				r.Patch("/interests", handlers.UpdateInterests)

				r.Get("/education", handlers.ListEducation)
				r.Post("/education", handlers.AddEducation)
				r.Patch("/education/{eduId}", handlers.UpdateEducation)
				r.Delete("/education/{eduId}", handlers.DeleteEducation)

				r.Get("/work-history", handlers.ListWorkHistory)
				r.Post("/work-history", handlers.AddWorkHistory)
				r.Patch("/work-history/{workId}", handlers.UpdateWorkHistory)
				r.Delete("/work-history/{workId}", handlers.DeleteWorkHistory)
			})

			r.Post("/families/create", handlers.CreateFamily)
			r.Post("/families/join", handlers.JoinFamily)
			r.Get("/families", handlers.ListMyFamilies)
			r.Route("/families/{id}", func(r chi.Router) {
				r.Get("/", handlers.GetFamily)
				r.Get("/members", handlers.ListFamilyMembers)
				r.Get("/stats", handlers.GetFamilyStats)
				r.Get("/unlinked-members", handlers.ListUnlinkedMembers)
				r.Get("/requests", handlers.ListJoinRequests)
				r.Post("/requests/{memberId}/approve", handlers.ApproveJoinRequest)
				r.Post("/requests/{memberId}/reject", handlers.RejectJoinRequest)
			})

			r.Post("/roots", handlers.CreateRoot)
			r.Get("/roots", handlers.ListRoots)
			r.Route("/roots/{id}", func(r chi.Router) {
				r.Get("/", handlers.GetRoot)
				r.Delete("/", handlers.DeleteRoot)
				r.Post("/nodes", handlers.CreateNode)
				r.Patch("/nodes/{nodeId}", handlers.UpdateNode)
				r.Delete("/nodes/{nodeId}", handlers.DeleteNode)
				r.Get("/nodes/{nodeId}/can-delete", handlers.CanDeleteNode)
				r.Post("/relations", handlers.CreateRelation)
				r.Delete("/relations/{relId}", handlers.DeleteRelation)
			})

			r.Get("/feed", handlers.Feed)
			r.Post("/posts", handlers.CreatePost)
			r.Route("/posts/{id}", func(r chi.Router) {
				r.Get("/", handlers.GetPost)
				r.Delete("/", handlers.DeletePost)
				r.Post("/like", handlers.ToggleLike)
				r.Get("/likes", handlers.ListLikes)
				r.Post("/comments", handlers.AddComment)
				r.Get("/comments", handlers.ListComments)
			})
			r.Patch("/comments/{id}", handlers.UpdateComment)
			r.Delete("/comments/{id}", handlers.DeleteComment)

			r.Post("/albums", handlers.CreateAlbum)
			r.Get("/albums", handlers.ListAlbums)
			r.Route("/albums/{id}", func(r chi.Router) {
				r.Get("/", handlers.GetAlbum)
				r.Patch("/", handlers.UpdateAlbum)
				r.Delete("/", handlers.DeleteAlbum)
				r.Post("/media", handlers.UploadAlbumMedia)
				r.Patch("/media/{mediaId}", handlers.UpdateMediaCaption)
				r.Delete("/media/{mediaId}", handlers.DeleteAlbumMedia)
			})

			r.Post("/memories", handlers.CreateMemory)
			r.Get("/memories", handlers.ListMemories)
			r.Delete("/memories/{id}", handlers.DeleteMemory)

			r.Get("/notifications", handlers.ListNotifications)
			r.Get("/notifications/unread-count", handlers.UnreadNotificationCount)
			r.Post("/notifications/{id}/read", handlers.MarkNotificationRead)
			r.Post("/notifications/read-all", handlers.MarkAllNotificationsRead)
		})
	})

	return r
}
