package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/beka-birhanu/vinom-drift/api"
	api_i "github.com/beka-birhanu/vinom-drift/api/i"
	"github.com/beka-birhanu/vinom-drift/api/identity"
	mazeapi "github.com/beka-birhanu/vinom-drift/api/maze"
	"github.com/beka-birhanu/vinom-drift/config"
	"github.com/beka-birhanu/vinom-drift/game"
	identitydmn "github.com/beka-birhanu/vinom-drift/identity"
	"github.com/beka-birhanu/vinom-drift/infrastruture/broadcast"
	"github.com/beka-birhanu/vinom-drift/infrastruture/token"
	"github.com/beka-birhanu/vinom-drift/logger"
	"github.com/beka-birhanu/vinom-drift/maze"
	"github.com/beka-birhanu/vinom-drift/service"
	"github.com/beka-birhanu/vinom-drift/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// Pixel size of a cell when no screen size is configured.
const defaultCellPixels = 20

var envFile string

// Dependencies wired by serve.
var (
	envs           *config.Config
	appLogger      *logger.Logger
	redisClient    *redis.Client
	publisher      i.SnapshotPublisher
	mazeSession    *game.Session
	sessionManager *service.SessionManager
	jwtTokenizer   i.Tokenizer
	authService    i.PilotAuthenticator
	authController api_i.Controller
	mazeController api_i.Controller
	router         *api.Router
)

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation and its HTTP API",
		Long: `Run the shifting maze, the REST and websocket API and, when REDIS_ADDR is
set, the snapshot broadcast. Configuration is read from the environment and
an optional .env file.`,
		RunE: runServe,
	}
	serveCmd.Flags().StringVar(&envFile, "env-file", "", "Dotenv file to load instead of .env")
	rootCmd.AddCommand(serveCmd)
}

func newLogger(prefix, color string) (*logger.Logger, error) {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		return nil, err
	}
	if err := l.SetLevel(envs.LogLevel); err != nil {
		return nil, err
	}
	return l, nil
}

func initConfig() error {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	var err error
	envs, err = config.Load(files...)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	gin.SetMode(envs.GinMode)
	return nil
}

func initRedis(ctx context.Context) error {
	if envs.RedisAddr == "" {
		appLogger.Info("REDIS_ADDR not set, snapshot broadcast disabled")
		return nil
	}

	redisClient = redis.NewClient(&redis.Options{Addr: envs.RedisAddr, Password: envs.RedisPassword})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	var err error
	publisher, err = broadcast.NewRedisBroadcaster(redisClient, envs.RedisChannel, 0)
	if err != nil {
		return fmt.Errorf("creating redis broadcaster: %w", err)
	}
	appLogger.Info(fmt.Sprintf("Broadcasting snapshots on %s", envs.RedisChannel))
	return nil
}

func initSession() error {
	sessionLogger, err := newLogger("SESSION", config.ColorCyan)
	if err != nil {
		return fmt.Errorf("creating session logger: %w", err)
	}

	mutator, err := maze.NewMutator(maze.Strategy(envs.MutationStrategy), maze.WithAnchor(maze.AnchorMode(envs.ShoreAnchor)))
	if err != nil {
		return err
	}

	mazeSession, err = game.New(game.Config{
		Rows:                envs.Rows,
		Cols:                envs.Columns,
		Mutator:             mutator,
		MutationProbability: envs.MutationProbability,
		Seed:                envs.Seed,
		Logger:              sessionLogger,
	})
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	appLogger.Info(fmt.Sprintf("Session %s created with seed %d", mazeSession.ID(), mazeSession.Seed()))
	return nil
}

func initSessionManager() error {
	managerLogger, err := newLogger("SESSION-MANAGER", config.ColorPurple)
	if err != nil {
		return fmt.Errorf("creating session manager logger: %w", err)
	}

	width, height := envs.ScreenWidth, envs.ScreenHeight
	if width <= 0 || height <= 0 {
		width, height = float64(envs.Columns*defaultCellPixels), float64(envs.Rows*defaultCellPixels)
	}
	geometry, err := game.NewGeometry(width, height, envs.Rows, envs.Columns)
	if err != nil {
		return err
	}

	sessionManager, err = service.NewSessionManager(&service.Config{
		Session:   mazeSession,
		Geometry:  geometry,
		Interval:  envs.TickInterval,
		Publisher: publisher,
		Logger:    managerLogger,
	})
	if err != nil {
		return fmt.Errorf("creating session manager: %w", err)
	}
	appLogger.Info("Session manager initialized")
	return nil
}

func initAuth() error {
	pilot, err := identitydmn.NewPilot(envs.PilotName, envs.PilotKeyHash)
	if err != nil {
		return fmt.Errorf("loading pilot credentials: %w", err)
	}
	jwtTokenizer = token.NewJwtService(envs.JWTSecret, envs.JWTIssuer)
	authService = service.NewPilotAuth(pilot, jwtTokenizer, 0)
	authController = identity.NewIdentityServer(authService)
	appLogger.Info("Auth controller initialized")
	return nil
}

func initRouter() error {
	apiLogger, err := newLogger("API", config.ColorBlue)
	if err != nil {
		return fmt.Errorf("creating api logger: %w", err)
	}
	mazeController, err = mazeapi.NewMazeController(sessionManager, apiLogger)
	if err != nil {
		return fmt.Errorf("creating maze controller: %w", err)
	}

	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", envs.HostIP, envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{authController, mazeController},
		AuthorizationMiddleware: identity.Authorize(jwtTokenizer),
	})
	appLogger.Info("Router initialized")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	var err error
	appLogger, err = newLogger("APP", config.ColorGreen)
	if err != nil {
		return err
	}
	if !envs.DotenvLoaded {
		appLogger.Debug("no .env file loaded, using the process environment")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, initStep := range []func() error{
		func() error { return initRedis(ctx) },
		initSession,
		initSessionManager,
		initAuth,
		initRouter,
	} {
		if err := initStep(); err != nil {
			appLogger.Error(err.Error())
			return err
		}
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	sessionErr := make(chan error, 1)
	go func() { sessionErr <- sessionManager.Run(ctx) }()

	routerErr := make(chan error, 1)
	go func() { routerErr <- router.Run(ctx) }()
	appLogger.Info(fmt.Sprintf("Serving on %s:%d", envs.HostIP, envs.RESTPort))

	select {
	case err = <-sessionErr:
		stop()
		if routerRunErr := <-routerErr; err == nil {
			err = routerRunErr
		}
	case err = <-routerErr:
		stop()
		if sessionRunErr := <-sessionErr; err == nil {
			err = sessionRunErr
		}
	}
	if err != nil {
		appLogger.Error(fmt.Sprintf("Shutting down: %v", err))
		return err
	}
	appLogger.Info("Shut down cleanly")
	return nil
}
