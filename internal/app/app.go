package app

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"fambook-go/internal/config"
	"fambook-go/internal/db"
	contentdomain "fambook-go/internal/domain/content"
	familydomain "fambook-go/internal/domain/family"
	notifdomain "fambook-go/internal/domain/notification"
	rootsdomain "fambook-go/internal/domain/roots"
	userdomain "fambook-go/internal/domain/user"
	contentrepo "fambook-go/internal/repository/postgres/content"
	familyrepo "fambook-go/internal/repository/postgres/family"
	notifrepo "fambook-go/internal/repository/postgres/notification"
	rootsrepo "fambook-go/internal/repository/postgres/roots"
	userrepo "fambook-go/internal/repository/postgres/user"
	"fambook-go/internal/storage"
	"fambook-go/internal/transport/httpserver"
	"fambook-go/internal/transport/httpserver/handler"
	"fambook-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(ctx context.Context, log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: connecting to database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: running migrations")
	if err := db.Migrate(dbConn, log); err != nil {
		return nil, err
	}

	log.Info("app: initializing media storage")
	mediaStorage, err := storage.NewS3(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	users := userdomain.NewService(userrepo.NewPostgres(dbConn))
	families := familydomain.NewService(familyrepo.NewPostgres(dbConn))
	roots := rootsdomain.NewService(rootsrepo.NewPostgres(dbConn), families)
	content := contentdomain.NewService(
		contentrepo.NewPostgres(dbConn),
		families,
		mediaStorage,
		log,
		cfg.Uploads.MaxFileBytes,
		cfg.Uploads.DefaultAlbumLimit,
	)
	notifications := notifdomain.NewService(notifrepo.NewPostgres(dbConn))

	handlers := handler.New(users, families, roots, content, notifications, log)
	router := httpserver.NewRouter(cfg, handlers, users, log)
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
