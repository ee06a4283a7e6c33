package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/projecthub/internal/auth"
	"github.com/ayush/projecthub/internal/config"
	"github.com/ayush/projecthub/internal/logging"
	"github.com/ayush/projecthub/internal/projects"
	"github.com/ayush/projecthub/internal/server"
	"github.com/ayush/projecthub/internal/store"
	"github.com/ayush/projecthub/internal/users"
	"github.com/ayush/projecthub/internal/web"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "projecthub",
	Short: "Multi-user project and file manager",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		var err error
		logger, err = logging.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := pgxpool.New(cmd.Context(), cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres connect: %w", err)
		}
		defer pool.Close()
		if err := store.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		logger.Info("migrations applied")
		return nil
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// entityStore is everything the handlers need from persistence.
type entityStore interface {
	auth.UserStore
	users.Store
	projects.Store
}

func serve(ctx context.Context) error {
	// ── Entity store ─────────────────────────────────────────
	var db entityStore
	switch cfg.Store {
	case "memory":
		logger.Warn("using in-memory store, data is lost on restart")
		db = store.NewMemoryStore()
	default:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres connect: %w", err)
		}
		defer pool.Close()
		if err := store.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
		db = store.NewPostgresStore(pool)
	}

	// ── Sessions ─────────────────────────────────────────────
	var sessions auth.Sessions
	switch cfg.SessionBackend {
	case "memory":
		mem := auth.NewMemorySessionStore(cfg.SessionTTL, time.Minute)
		defer mem.Close()
		sessions = mem
	default:
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer rdb.Close()
		sessions = auth.NewRedisSessionStore(rdb, cfg.SessionTTL)
	}

	// ── MongoDB (activity log) ───────────────────────────────
	var activity projects.ActivityLog = store.NopActivityLog{}
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return fmt.Errorf("mongo connect: %w", err)
		}
		defer mongoClient.Disconnect(context.Background())
		mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			logger.Warn("mongo indexes", zap.Error(err))
		}
		activity = mongoStore
	}

	// ── MinIO (file archive) ─────────────────────────────────
	var archive projects.Archive = store.NopArchive{}
	if cfg.MinioEndpoint != "" {
		minioStore, err := store.NewMinioStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio connect: %w", err)
		}
		archive = minioStore
	}

	// ── Handlers ─────────────────────────────────────────────
	templates, err := web.NewTemplates()
	if err != nil {
		return err
	}
	authenticator := auth.NewAuthenticator(db, bcrypt.DefaultCost)
	routes := server.Routes(server.Handlers{
		Auth: auth.NewHandler(authenticator, sessions,
			auth.CookieConfig{TTL: cfg.SessionTTL, Secure: cfg.CookieSecure}, logger),
		Projects: projects.NewHandler(db, activity, archive, logger),
		Users:    users.NewHandler(db, sessions, logger),
	})
	router := server.NewRouter(server.Options{
		Log:         logger,
		Renderer:    templates,
		Sessions:    sessions,
		CORSOrigins: cfg.CORSOrigins,
	}, routes)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
