package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"level-thumbnails/internal/auth"
	"level-thumbnails/internal/cache"
	"level-thumbnails/internal/config"
	"level-thumbnails/internal/handlers"
	"level-thumbnails/internal/images"
	"level-thumbnails/internal/repositories"
	"level-thumbnails/internal/services"
	"level-thumbnails/internal/storage"
	rdb "level-thumbnails/pkg/db/redis"
)

// App wires the collaborators together and owns the HTTP server plus the
// background invalidator pool.
type App struct {
	cfg         *config.Config
	server      *http.Server
	invalidator *cache.Invalidator
}

func New(ctx context.Context, cfg *config.Config, db *gorm.DB, redis *rdb.Store) (*App, error) {
	files, err := storage.NewDiskStore(cfg.ThumbnailsDir, cfg.UploadsDir)
	if err != nil {
		return nil, err
	}

	subs := repositories.NewSubmissionRepository(db)
	users := repositories.NewUserRepository(db)

	var purger cache.Purger
	if cfg.CloudflareAPIKey != "" {
		purger = cache.NewCloudflareClient(cfg.CloudflareAPIKey, cfg.CloudflareZoneID)
	}
	// invalidator tasks belong to the process, not to any request
	invalidator := cache.NewInvalidator(ctx, purger, cfg.HomeURL, cfg.PurgeBaseDelay)

	codec := images.NewCodec()
	settings := services.NewSettingsService(cfg.StateFile)
	gate := services.NewSubmissionGate(files, subs, codec, invalidator, settings)
	engine := services.NewPendingQueryEngine(subs, files)
	resolver := services.NewModerationResolver(subs, files, invalidator)

	sessions := auth.NewSessionCodec(cfg.JWTSecret)
	argon := auth.NewArgonClient(cfg.ArgonBaseURL)
	discord := auth.NewDiscordClient(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.HomeURL)
	links := auth.NewLinkTokens(redis)

	authMW := handlers.NewAuthMiddleware(sessions, users)
	uploadH := handlers.NewUploadHandler(gate)
	pendingH := handlers.NewPendingHandler(engine, resolver)
	thumbH := handlers.NewThumbnailHandler(files, codec, subs)
	authH := handlers.NewAuthHandler(users, subs, files, argon, discord, sessions, links)
	userH := handlers.NewUserHandler(users, authMW)
	adminH := handlers.NewAdminHandler(settings)
	statsH := handlers.NewStatsHandler(files)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	router.GET("/stats", statsH.ServiceStats)

	router.GET("/thumbnail/:id", thumbH.Serve)
	router.GET("/thumbnail/:id/:res", thumbH.Serve)

	router.POST("/auth/login", authH.Login)
	router.GET("/auth/discord", authH.DiscordCallback)
	router.GET("/auth/session", authMW.Require(), authH.Session)
	router.GET("/auth/link", authMW.Require(), authH.IssueLinkToken)
	router.POST("/auth/link", authMW.Require(), authH.LinkAccount)

	router.GET("/user/:id", userH.ByID)

	router.POST("/upload/:id", authMW.Require(), uploadH.Upload)

	pending := router.Group("/pending", authMW.Require())
	pending.GET("", pendingH.ListAll)
	pending.GET("/:id", pendingH.Get)
	pending.POST("/:id", pendingH.Act)
	pending.GET("/:id/:sub", pendingH.Dispatch)

	router.GET("/admin/settings", authMW.RequireAdmin(), adminH.GetSettings)
	router.POST("/admin/settings", authMW.RequireAdmin(), adminH.UpdateSettings)

	return &App{
		cfg: cfg,
		server: &http.Server{
			Addr:    cfg.BindAddress,
			Handler: router,
		},
		invalidator: invalidator,
	}, nil
}

// Run serves until ctx is cancelled, then drains connections and waits for
// in-flight cache purges to stop.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", a.cfg.BindAddress)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.invalidator.Wait()
	return nil
}
