package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/DedS3t/monopoly-engine/app/controllers"
	"github.com/DedS3t/monopoly-engine/pkg/routes"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/DedS3t/monopoly-engine/platform/cache"
	"github.com/DedS3t/monopoly-engine/platform/config"
	"github.com/DedS3t/monopoly-engine/platform/database"
	"github.com/DedS3t/monopoly-engine/platform/journal"
	"github.com/DedS3t/monopoly-engine/platform/logging"
	"github.com/DedS3t/monopoly-engine/platform/queries"
	"github.com/DedS3t/monopoly-engine/platform/rooms"
	"github.com/DedS3t/monopoly-engine/platform/rules"
	socket "github.com/DedS3t/monopoly-engine/platform/sockets"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var flagMemory bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the socket.io server",
	Long: `Starts the lobby API (fiber) and the push server (socket.io).

Rooms live in Postgres and running games in Redis unless --memory is given,
in which case everything is kept in process (single node, lost on restart).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&flagMemory, "memory", false, "Keep rooms and games in memory instead of Postgres and Redis")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	logging.Configure(logrus.StandardLogger(), cfg.LogLevel, cfg.LogFormat)
	log := logging.New("serve")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	presets, err := config.LoadPresets(cfg.RulesPath)
	if err != nil {
		return err
	}
	b, err := board.LoadProperties()
	if err != nil {
		return err
	}

	deps := rooms.Deps{
		Engine:  rules.New(b),
		Presets: presets,
		LockTTL: cfg.LockTTL,
	}
	if flagMemory {
		deps.Repo = rooms.NewMemoryRepository()
		deps.Store = rooms.NewMemoryStore()
		log.Warn("using in-memory storage")
	} else {
		db := database.PostgreSQLConnection(cfg.DB)
		defer db.Close()
		if err := database.CreateSchema(ctx, db); err != nil {
			return err
		}
		deps.Repo = queries.New(db)

		pool := cache.CreateRedisPool(cfg.RedisURL)
		defer pool.Close()
		deps.Store = cache.NewStore(pool)
	}
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer j.Close()
		deps.Journal = j
		log.WithField("path", cfg.JournalPath).Info("journaling actions")
	}
	svc := rooms.NewService(deps)

	secret := []byte(cfg.JWTSecret)
	io, err := socket.NewServer(secret)
	if err != nil {
		return err
	}
	io.Bind(svc)
	svc.SetHub(io)
	go func() {
		if err := io.Serve(); err != nil {
			log.WithError(err).Error("socket.io loop stopped")
		}
	}()
	defer io.Close()

	socketSrv := &http.Server{Addr: cfg.SocketAddr, Handler: io.Handler(cfg.CORSOrigins)}

	app := fiber.New(fiber.Config{ErrorHandler: controllers.ErrorHandler})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORSOrigins, ","),
		AllowCredentials: true,
	}))
	g := controllers.NewGameController(svc)
	routes.PublicRoutes(app, g)
	routes.PrivateRoutes(app, g, secret)

	errc := make(chan error, 2)
	go func() {
		log.WithField("addr", cfg.SocketAddr).Info("serving socket.io")
		if err := socketSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("serving http")
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errc:
		log.WithError(err).Error("listener failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := socketSrv.Shutdown(shutdownCtx); serr != nil {
		log.WithError(serr).Warn("socket server shutdown")
	}
	if serr := app.Shutdown(); serr != nil {
		log.WithError(serr).Warn("http server shutdown")
	}
	return err
}
