package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"

	"github.com/tasknest/tasknest/auth"
	"github.com/tasknest/tasknest/config"
	"github.com/tasknest/tasknest/storage"
	"github.com/tasknest/tasknest/tasks"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("tasknest"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)
	logger := lgr.GetLogger("main")

	cfg, err := config.Load()
	if err != nil {
		// A missing signing key lands here; the process must not come up
		// without one.
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := storage.Connect(cfg.Persistence.DSN)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repos := auth.NewRepositoryManager(db)
	repos.MustValidate()

	provider := auth.NewUserProvider(repos.Users()).
		WithLogger(lgr.GetLogger("auth:provider"))

	auther := auth.NewAuthenticator(provider, cfg.Auth).
		WithLogger(lgr.GetLogger("auth"))

	errorHandler := auth.RenderError(lgr.GetLogger("http"))
	protected := auth.ProtectedRoute(cfg.Auth, auther.TokenService(), errorHandler)

	authCtrl := auth.NewAuthController(
		auth.WithAuthenticator(auther),
		auth.WithRegisterCommand(
			auth.NewRegisterUserHandler(repos).WithLogger(lgr.GetLogger("auth:register")),
		),
		auth.WithChangePasswordCommand(
			auth.NewChangePasswordHandler(repos).WithLogger(lgr.GetLogger("auth:password")),
		),
		auth.WithControllerLogger(lgr.GetLogger("auth:http")),
		auth.WithControllerErrorHandler(errorHandler),
	)

	taskCtrl := tasks.NewTaskController(
		tasks.WithTasksRepository(tasks.NewTasksRepository(db)),
		tasks.WithControllerLogger(lgr.GetLogger("tasks")),
	)

	app := fiber.New(fiber.Config{
		AppName: "tasknest",
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.Origins(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group(cfg.Server.APIPrefix)
	auth.RegisterAuthRoutes(api, authCtrl, protected)
	tasks.RegisterTaskRoutes(api, taskCtrl, protected)

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := app.Listen(cfg.Server.Addr); err != nil {
			logger.Error("server terminated", "error", err)
			os.Exit(1)
		}
	}()

	waitExitSignal()

	logger.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func waitExitSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
}
