package di

import (
	"context"
	"fmt"
	"log"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"congestion-server/api"
	"congestion-server/api/analytics"
	"congestion-server/config"
	"congestion-server/dao"
	"congestion-server/dao/postgres"
	redisdao "congestion-server/dao/redis"
	"congestion-server/db"
	"congestion-server/server"
	"congestion-server/server/handlers"
	services "congestion-server/service"
)

// Container holds all application dependencies.
type Container struct {
	Postgres *postgres.PostgresStore

	RedisClient db.RedisClient
	CacheDao    *redisdao.RedisCongestionCacheDAO

	VenueStore   dao.VenueStore
	PatternStore dao.PatternStore
	VisitStore   dao.VisitStore

	AnalyticsAPI analytics.AnalyticsAPI

	CongestionService        *services.CongestionService
	VisitTrackingService     *services.VisitTrackingService
	PatternsRefresherService *services.PatternsRefresherService

	CongestionHandler    *handlers.CongestionHandler
	VisitHandler         *handlers.VisitHandler
	MuxRouter            *mux.Router
	Router               *server.Router
	CongestionHttpServer *server.CongestionHttpServer
}

// NewContainer initializes and wires up all dependencies. Anything except
// "prod" runs against in-memory stores and the fixture-backed analytics
// client, so no external services are needed.
func NewContainer(env string, envCfg *config.Env) *Container {
	log.Printf("initializing container - env: %s", env)
	ctx := context.Background()

	c := &Container{}

	if env == "prod" {
		pg, err := postgres.New(envCfg.DatabaseURL)
		if err != nil {
			panic(fmt.Sprintf("Failed to connect to Postgres: %v", err))
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			panic(fmt.Sprintf("Failed to ensure schema: %v", err))
		}
		c.Postgres = pg

		venueDao := postgres.NewPostgresVenueDAO(pg)
		c.VenueStore = venueDao
		c.PatternStore = venueDao
		c.VisitStore = postgres.NewPostgresVisitDAO(pg)

		redisInternalClient := goredis.NewClient(&goredis.Options{
			Addr:     envCfg.RedisAddr,
			Password: envCfg.RedisPassword,
			DB:       envCfg.RedisDB,
		})
		c.RedisClient = db.NewCacheRedisClient(ctx, redisInternalClient)

		log.Printf("Using prod analytics api")
		httpClient := api.NewHTTPClient(envCfg.AnalyticsAPIBase)
		c.AnalyticsAPI = analytics.NewAnalyticsApiClient(httpClient)
	} else {
		log.Printf("Using in-memory stores and mock analytics api")
		c.VenueStore = dao.NewMockVenueStore()
		c.PatternStore = dao.NewMockPatternStore()
		c.VisitStore = dao.NewMockVisitStore()
		c.RedisClient = db.NewMockRedisClient(ctx)
		c.AnalyticsAPI = analytics.NewAnalyticsApiClientMock()
	}

	if err := c.RedisClient.Ping(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	c.CacheDao = redisdao.NewRedisCongestionCacheDAO(c.RedisClient)

	clock := services.SystemClock{}
	c.CongestionService = services.NewCongestionService(
		c.VenueStore, c.PatternStore, c.VisitStore, c.CacheDao, clock)
	c.VisitTrackingService = services.NewVisitTrackingService(
		c.VisitStore, c.CongestionService, clock)
	c.PatternsRefresherService = services.NewPatternsRefresherService(
		c.PatternStore, c.AnalyticsAPI)

	c.CongestionHandler = handlers.NewCongestionHandler(c.VenueStore, c.CongestionService)
	c.VisitHandler = handlers.NewVisitHandler(c.VisitTrackingService)

	c.MuxRouter = mux.NewRouter()
	c.Router = server.NewRouter(c.CongestionHandler, c.VisitHandler, c.MuxRouter)
	c.CongestionHttpServer = server.NewCongestionHttpServer(c.Router, c.MuxRouter, envCfg.HTTPPort)

	return c
}
