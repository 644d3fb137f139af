package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	contentdomain "fambook-go/internal/domain/content"
	familydomain "fambook-go/internal/domain/family"
	notifdomain "fambook-go/internal/domain/notification"
	rootsdomain "fambook-go/internal/domain/roots"
	userdomain "fambook-go/internal/domain/user"
	"fambook-go/pkg/logger"
)

type Handlers struct {
	Users         *userdomain.Service
	Families      *familydomain.Service
	Roots         *rootsdomain.Service
	Content       *contentdomain.Service
	Notifications *notifdomain.Service

	log      logger.Logger
	validate *validator.Validate
}

func New(
	users *userdomain.Service,
	families *familydomain.Service,
	roots *rootsdomain.Service,
	content *contentdomain.Service,
	notifications *notifdomain.Service,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Users:         users,
		Families:      families,
		Roots:         roots,
		Content:       content,
		Notifications: notifications,
		log:           log,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "ok", map[string]string{"status": "healthy"})
}
