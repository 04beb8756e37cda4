package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/alex-pricope/hackathon-coordinator/access"
	"github.com/alex-pricope/hackathon-coordinator/api/controllers"
	"github.com/alex-pricope/hackathon-coordinator/api/transport"
	"github.com/alex-pricope/hackathon-coordinator/coordinator"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/alex-pricope/hackathon-coordinator/metrics"
	"github.com/alex-pricope/hackathon-coordinator/realtime"
	"github.com/alex-pricope/hackathon-coordinator/storage"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	config *Config
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

// Application is the wired HTTP surface plus the pieces that need closing on shutdown.
type Application struct {
	Engine   *gin.Engine
	Hub      *realtime.Hub
	Recorder *coordinator.ActivityRecorder
}

// NewApplication wires coordinators and controllers over the given stores.
// settings may wrap store.Settings() with a cache; activity may be nil.
func NewApplication(conf *Config, store storage.Store, settings storage.SettingStorage, activity storage.ActivityLogStorage) *Application {
	ginMode := gin.ReleaseMode
	if transport.IsLocal() {
		ginMode = gin.DebugMode
	}
	r := transport.NewRouter(ginMode)

	metrics.Register()
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	issuer := transport.NewTokenIssuer(conf.JWTSecret, conf.TokenTTL)
	limiter := transport.NewRateLimiter()
	guards := transport.Guards{
		Issuer:  issuer,
		Limiter: limiter,
		Auth: transport.RateClass{
			Name:   "auth",
			Window: conf.AuthWindow,
			Max:    conf.AuthMax,
		},
		Modification: transport.RateClass{
			Name:   "modification",
			Window: conf.ModificationWindow,
			Max:    conf.ModificationMax,
		},
	}

	hub := realtime.NewHub(issuer, conf.AuthTimeout)
	recorder := coordinator.NewActivityRecorder(activity, 0)

	checkpoints := coordinator.NewCheckpointCoordinator(store, hub, recorder)
	checkpoints.PasswordCost = conf.PasswordCost
	mentorship := coordinator.NewMentorshipCoordinator(store, settings, hub, recorder)
	evaluations := coordinator.NewEvaluationCoordinator(store, hub, recorder)
	teams := coordinator.NewTeamCoordinator(store, settings, hub, recorder)

	api := r.Group("/api", limiter.Limit(transport.RateClass{
		Name:   "general",
		Window: conf.GeneralWindow,
		Max:    conf.GeneralMax,
	}))

	//Register controllers
	controllers.NewAuthController(store.Users(), issuer).RegisterRoutes(api, guards)
	controllers.NewSuperAdminController(store, teams, activity, conf.PasswordCost).RegisterRoutes(api, guards)
	controllers.NewAdminController(store, checkpoints, evaluations).RegisterRoutes(api, guards)
	controllers.NewJudgeController(evaluations).RegisterRoutes(api, guards)
	controllers.NewMentorController(mentorship).RegisterRoutes(api, guards)
	controllers.NewTeamController(store, mentorship, teams).RegisterRoutes(api, guards)
	controllers.NewRealtimeController(hub).RegisterRoutes(api)

	return &Application{
		Engine:   r,
		Hub:      hub,
		Recorder: recorder,
	}
}

func (s *Server) Start() {
	ctx := context.Background()

	// Create storage
	db, err := storage.Open(s.config.Driver, s.config.DSN)
	if err != nil {
		logging.Log.Errorf("failed to open database: %v", err)
		panic("failed to open database")
	}
	if err := storage.Migrate(db); err != nil {
		logging.Log.Errorf("failed to migrate database: %v", err)
		panic("failed to migrate database")
	}
	store := storage.NewGormStore(db)

	var settings storage.SettingStorage = store.Settings()
	if s.config.RedisAddr != "" {
		client, err := storage.NewRedisClient(ctx, s.config.RedisAddr, s.config.RedisPassword, s.config.RedisDB)
		if err != nil {
			logging.Log.Warnf("STORAGE: settings cache disabled: %v", err)
		} else {
			defer client.Close()
			settings = storage.NewCachedSettingStorage(settings, client, s.config.SettingsCacheTTL)
		}
	}

	var activity storage.ActivityLogStorage
	if s.config.TableNameActivity != "" {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logging.Log.Errorf("failed to load AWS config: %v", err)
			panic("failed to load AWS config")
		}
		activity = &storage.DynamoActivityLogStorage{
			Client:    dynamodb.NewFromConfig(cfg),
			TableName: s.config.TableNameActivity,
		}
	}

	if err := EnsureSuperAdmin(ctx, store.Users(), s.config.BootstrapConfig, s.config.PasswordCost); err != nil {
		logging.Log.Errorf("failed to bootstrap super admin: %v", err)
		panic("failed to bootstrap super admin")
	}

	app := NewApplication(s.config, store, settings, activity)

	//Do not run lambda helper locally
	if transport.IsLocal() {
		if err := startLocal(app, s.config.Port); err != nil {
			logging.Log.Errorf("server stopped with error: %v", err)
		}
		app.Recorder.Wait()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		logging.Log.Info("Server stopped")
	} else {
		startLambda(app.Engine)
	}
}

// EnsureSuperAdmin creates the bootstrap account when it is configured and missing.
func EnsureSuperAdmin(ctx context.Context, users storage.UserStorage, conf BootstrapConfig, passwordCost int) error {
	if conf.Username == "" || conf.Password == "" {
		return nil
	}
	_, err := users.GetByUsername(ctx, conf.Username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	hash, err := access.HashPassword(conf.Password, passwordCost)
	if err != nil {
		return err
	}
	user := &storage.User{
		Username:     conf.Username,
		Name:         "Super Admin",
		PasswordHash: hash,
		Role:         access.RoleSuperAdmin,
	}
	if err := users.Create(ctx, user); err != nil {
		return err
	}
	logging.Log.Infof("ADMIN: created bootstrap super admin %s", conf.Username)
	return nil
}

// StartLambda sets up for AWS Lambda. API Gateway HTTP APIs do not upgrade
// websockets, so realtime is only served by the local server.
func startLambda(engine *gin.Engine) {
	ginLambda := ginadapter.NewV2(engine)

	handler := func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logging.Log.Infof("Lambda handler triggered on path: %s", req.RawPath)
		return ginLambda.ProxyWithContext(ctx, req)
	}

	logging.Log.Info("Starting lambda")
	lambda.Start(handler)
}

// StartLocal serves HTTP until SIGINT or SIGTERM, then closes websockets and drains requests.
func startLocal(app *Application, port int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           app.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Log.Info(fmt.Sprintf("Starting server on http://localhost:%d", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Log.Info("Shutting down")
		app.Hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
