package server

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"weather-server/confs"
	"weather-server/db"
	"weather-server/gateway"
	"weather-server/handlers"
	httpHandler "weather-server/handlers/http"
	"weather-server/repositories"
	"weather-server/services"
	"weather-server/usecases"
	"weather-server/ws"
)

type Server struct {
	app       *gin.Engine
	db        db.Database
	cfg       *confs.Config
	scheduler *services.Scheduler
}

// NewServer wires repositories, use cases and handlers over database and
// registers every route. Nothing listens until Start is called.
func NewServer(database db.Database, cfg *confs.Config) (*Server, error) {
	s := &Server{
		app: gin.Default(),
		db:  database,
		cfg: cfg,
	}

	// Initialize repositories
	gw := gateway.New(database)
	deviceRepo := repositories.NewDeviceRepository(gw)
	readingRepo := repositories.NewWeatherDataRepository(gw)
	reportRepo := repositories.NewDailyReportRepository(gw)

	aggregator := services.NewDailyAggregator(readingRepo, reportRepo)
	weatherUseCase := usecases.NewWeatherUseCase(deviceRepo, readingRepo, reportRepo, aggregator)

	if cfg.AggregationSchedule != "" {
		scheduler, err := services.NewScheduler(aggregator, cfg.AggregationSchedule)
		if err != nil {
			return nil, err
		}
		s.scheduler = scheduler
	}

	s.setupRoutes(weatherUseCase)
	return s, nil
}

func (s *Server) setupRoutes(weatherUseCase *usecases.WeatherUseCase) {
	// Setup CORS middleware
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	s.app.Use(cors.New(config))

	s.app.GET("/health", func(c *gin.Context) {
		if sqlDB, err := s.db.GetDB().DB(); err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DB_UNAVAILABLE"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})
	s.app.GET("/metrics", gin.WrapH(promhttp.Handler()))

	deviceHandler := httpHandler.NewDeviceHandler(weatherUseCase)
	reportHandler := handlers.NewReportHandler(weatherUseCase)

	manager := ws.NewManager()
	wsHandler := handlers.NewWSHandler(manager, weatherUseCase, s.cfg.SensorRateLimit, s.cfg.SensorRateBurst)

	api := s.app.Group("/api/v1")
	{
		devices := api.Group("/devices")
		{
			devices.POST("", deviceHandler.CreateDevice)
			devices.GET("", deviceHandler.GetAllDevices)
			devices.GET("/:id", deviceHandler.GetDevice)
			devices.GET("/:id/readings", deviceHandler.GetDeviceReadings)
			devices.GET("/:id/reports", deviceHandler.GetDeviceReports)
		}

		readings := api.Group("/readings")
		{
			readings.POST("", deviceHandler.CreateReading)
			readings.GET("", deviceHandler.GetAllReadings)
		}

		reports := api.Group("/reports")
		{
			reports.GET("", deviceHandler.GetAllReports)
			reports.POST("/generate", reportHandler.GenerateReports)
			reports.GET("/status", reportHandler.GetLastRun)
		}

		api.GET("/sensors/connected", wsHandler.GetConnectedSensors)
	}

	s.app.GET("/ws", wsHandler.HandleSensorWS)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Start runs the aggregation schedule, if configured, and serves HTTP until
// the listener fails.
func (s *Server) Start() error {
	if s.scheduler != nil {
		s.scheduler.Start()
		defer s.scheduler.Stop()
	}
	log.Printf("listening on %s", s.cfg.HTTPAddr)
	return s.app.Run(s.cfg.HTTPAddr)
}
