package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"kizuki-server/internal/config"
	"kizuki-server/internal/handler"
	"kizuki-server/internal/middleware"
	"kizuki-server/internal/repository"
	"kizuki-server/internal/repository/sqlstore"
	"kizuki-server/internal/service"
	"kizuki-server/internal/session"
	"kizuki-server/internal/websocket"
	"kizuki-server/pkg/logger"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/rs/zerolog"
)

type stores struct {
	memos repository.MemoRepository
	cases repository.CaseRepository
	users repository.UserRepository
	close func()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "kizuki: %v\n", err)
		os.Exit(1)
	}
}

// run owns every resource the server opens, so its deferred closes run
// before the process exits.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.Server.Env, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer st.close()

	revocations, closeRedis, err := openRevocationStore(ctx, cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer closeRedis()

	gate := session.NewTokenGate(cfg.JWT.Secret, revocations)
	// Services resolve the session themselves; the wrapped gate lets the
	// request log see who they resolved.
	loggedGate := middleware.RecordingGate(gate)

	wsManager := websocket.NewManager(websocket.Options{
		MaxConnPerUser: cfg.WebSocket.MaxConnPerUser,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		WriteWait:      cfg.WebSocket.WriteWait,
		PongWait:       cfg.WebSocket.PongWait,
		PingPeriod:     cfg.WebSocket.PingPeriod,
	}, log)
	go wsManager.Run(ctx)

	liveService := service.NewLiveService(wsManager, log)
	authService := service.NewAuthService(st.users, gate, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration)
	userService := service.NewUserService(st.users, loggedGate)
	memoService := service.NewMemoService(st.memos, loggedGate, liveService, cfg.Memos.ListDefaultLimit, log)
	caseService := service.NewCaseService(st.cases, loggedGate, liveService, log)

	handlers := handler.Handlers{
		Auth: handler.NewAuthHandler(authService, handler.CookieOptions{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.JWT.Expiration,
		}, log),
		User:      handler.NewUserHandler(userService),
		Memo:      handler.NewMemoHandler(memoService),
		Case:      handler.NewCaseHandler(caseService),
		WebSocket: handler.NewWebSocketHandler(wsManager, gate, cfg.WebSocket.ReadBufferSize, cfg.WebSocket.WriteBufferSize, log),
	}

	r := handler.NewRouter(handler.RouterConfig{
		CookieName:     cfg.Session.CookieName,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
	}, handlers, gate, log)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Server.Env).Str("storage", cfg.Storage.Driver).Msg("starting kizuki server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped gracefully")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Storage.Driver == config.StorageCouchDB {
		couch := cfg.Storage.CouchDB

		client, err := kivik.New("couch", couch.URL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to CouchDB: %w", err)
		}

		created, err := repository.EnsureDatabase(ctx, client, couch.Name)
		if err != nil {
			client.Close()
			return nil, err
		}
		if created {
			log.Info().Str("db", couch.Name).Msg("created database")
		}
		log.Info().Str("host", couch.Host).Str("port", couch.Port).Msg("connected to CouchDB")

		return &stores{
			memos: repository.NewMemoRepository(client, couch.Name),
			cases: repository.NewCaseRepository(client, couch.Name),
			users: repository.NewUserRepository(client, couch.Name),
			close: func() { client.Close() },
		}, nil
	}

	dialector, err := sqlstore.Dialector(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sqlstore.Open(dialector)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Str("driver", cfg.Storage.Driver).Msg("connected to SQL database")

	return &stores{
		memos: sqlstore.NewMemoRepository(db),
		cases: sqlstore.NewCaseRepository(db),
		users: sqlstore.NewUserRepository(db),
		close: func() { sqlDB.Close() },
	}, nil
}

// openRevocationStore returns a no-op store when Redis is not configured;
// sign-out then only clears the session cookie.
func openRevocationStore(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (session.RevocationStore, func(), error) {
	if cfg.Addr == "" {
		log.Warn().Msg("REDIS_ADDR not set, signed out tokens stay valid until they expire")
		return session.NoopRevocationStore{}, func() {}, nil
	}

	client, err := session.NewRedisClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		return nil, nil, err
	}

	return session.NewRedisRevocationStore(client), func() { client.Close() }, nil
}
