package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/kripanshu-singh/congkong-livescore/api/controllers"
	"github.com/kripanshu-singh/congkong-livescore/api/transport"
	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/metrics"
	"github.com/kripanshu-singh/congkong-livescore/realtime"
	"github.com/kripanshu-singh/congkong-livescore/service"
	"github.com/kripanshu-singh/congkong-livescore/storage"
	"github.com/kripanshu-singh/congkong-livescore/tracing"
)

type Server struct {
	config *Config
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

// app is everything a running server owns besides the listener.
type app struct {
	engine   *gin.Engine
	hub      *realtime.Hub
	services *service.Services
}

func (s *Server) Start() {
	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(s.config.Exporter, os.Stdout)
	if err != nil {
		logging.Log.Errorf("failed to set up tracing: %v", err)
		panic("failed to set up tracing")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logging.Log.Warnf("failed to flush traces: %v", err)
		}
	}()

	backend, err := newBackend(ctx, s.config.StorageConfig)
	if err != nil {
		logging.Log.Errorf("failed to create storage: %v", err)
		panic("failed to create storage")
	}

	a, err := s.build(ctx, backend)
	if err != nil {
		logging.Log.Errorf("failed to start: %v", err)
		panic("failed to start: " + err.Error())
	}

	//Do not run lambda helper locally
	if s.config.Local() {
		startLocal(a, s.config)
	} else {
		startLambda(a.engine)
	}
}

// build wires services, realtime and every controller onto a fresh engine.
func (s *Server) build(ctx context.Context, backend *storage.Backend) (*app, error) {
	m := metrics.New()

	hub := realtime.NewHub()
	hub.OnClientsChanged = m.RealtimeClients

	services := service.New(backend, hub, m)
	if err := services.Bootstrap(ctx); err != nil {
		return nil, err
	}

	auth, err := transport.NewAuthenticator(transport.AuthSettings{
		AdminID:       s.config.AdminID,
		AdminPassword: s.config.AdminPassword,
		AdminToken:    s.config.AdminToken,
		JudgeCode:     s.config.JudgeCode,
		JWTSecret:     s.config.JWTSecret,
		TokenTTL:      s.config.TokenTTL,
	})
	if err != nil {
		return nil, err
	}

	ginMode := gin.ReleaseMode
	if s.config.Local() {
		ginMode = gin.DebugMode
	}
	r := transport.NewRouter(ginMode, s.config.Local(), m.Middleware())
	r.GET("/metrics", m.Handler())

	scoreLimiter := transport.NewRateLimiter(s.config.ScoreRatePerSecond, s.config.ScoreBurst)
	voteLimiter := transport.NewRateLimiter(s.config.VoteRatePerSecond, s.config.VoteBurst)

	//Register controllers
	controllers.NewAuthController(auth, services.Roster).RegisterRoutes(r)
	controllers.NewRosterMetaController(services.Roster, auth).RegisterRoutes(r)
	controllers.NewSettingsController(services.Settings, auth).RegisterRoutes(r)
	controllers.NewControlController(services.Control, auth).RegisterRoutes(r)
	controllers.NewScoreController(services.Scores, auth, scoreLimiter).RegisterRoutes(r)
	controllers.NewResultsController(services.Results, auth).RegisterRoutes(r)
	controllers.NewVotingController(services.Audience, services.Roster, voteLimiter).RegisterRoutes(r)
	controllers.NewAdminController(services, auth).RegisterRoutes(r)
	controllers.NewRealtimeController(hub, auth).RegisterRoutes(r)

	return &app{engine: r, hub: hub, services: services}, nil
}

func newBackend(ctx context.Context, cfg StorageConfig) (*storage.Backend, error) {
	switch cfg.Driver {
	case "memory":
		logging.Log.Warn("STORAGE: using in-memory storage, nothing survives a restart")
		return storage.NewMemoryBackend(), nil
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, errors.New("storage.postgresDsn is required for the postgres driver")
		}
		return storage.NewPostgresBackend(cfg.PostgresDSN)
	case "dynamodb", "":
		return storage.NewDynamoBackend(ctx, storage.DynamoConfig{
			Region:             cfg.DynamoRegion,
			Endpoint:           cfg.DynamoEndpoint,
			TableNameScores:    cfg.TableNameScores,
			TableNameDocuments: cfg.TableNameDocuments,
			TableNameCodes:     cfg.TableNameCodes,
			TableNameVotes:     cfg.TableNameVotes,
		})
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// StartLambda sets up for AWS Lambda
func startLambda(engine *gin.Engine) {
	ginLambda := ginadapter.NewV2(engine)

	handler := func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logging.Log.Infof("Lambda handler triggered on path: %s", req.RawPath)
		return ginLambda.ProxyWithContext(ctx, req)
	}

	logging.Log.Info("Starting lambda")
	lambda.Start(handler)
}

// startLocal runs the HTTP server and the presentation timer until SIGINT or SIGTERM.
func startLocal(a *app, cfg *Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Log.Infof("Starting server on http://localhost:%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.TimerEnabled {
		g.Go(func() error {
			return a.services.Control.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logging.Log.Info("Shutting down")
		a.hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logging.Log.Fatalf("Failed to run server: %v", err)
	}
}
