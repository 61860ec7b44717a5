package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/surveyhub/cache"
	"github.com/vnkhanh/surveyhub/config"
	"github.com/vnkhanh/surveyhub/controllers"
	"github.com/vnkhanh/surveyhub/middleware"
	"github.com/vnkhanh/surveyhub/repository"
	"github.com/vnkhanh/surveyhub/routes"
	"github.com/vnkhanh/surveyhub/services"
	"github.com/vnkhanh/surveyhub/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("database handle: %v", err)
	}
	defer sqlDB.Close()

	var statsCache services.StatisticsCache
	var cachePinger controllers.Pinger
	redisClient, err := config.NewRedis(ctx, cfg)
	if err != nil {
		log.Printf("redis disabled: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		c := cache.NewStatisticsCache(redisClient, cfg.StatsCacheTTL)
		statsCache, cachePinger = c, c
		log.Println("Statistics cache enabled")
	}

	var sealer *services.IdentitySealer
	if cfg.IdentitySecret != "" {
		if sealer, err = services.NewIdentitySealer(cfg.IdentitySecret); err != nil {
			log.Fatalf("identity sealer: %v", err)
		}
	} else {
		log.Println("IDENTITY_SECRET not set: duplicate prevention cannot store identities")
	}

	surveyRepo := repository.NewSurveyRepository(db)
	responseRepo := repository.NewResponseRepository(db)

	surveyService := services.NewSurveyService(surveyRepo)
	importService := services.NewImportService(surveyService)
	responseService := services.NewResponseService(surveyRepo, responseRepo, statsCache, sealer)

	if err := controllers.RegisterValidators(); err != nil {
		log.Fatalf("validators: %v", err)
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if len(cfg.AllowedOrigins) == 0 {
				return true
			}
			for _, o := range cfg.AllowedOrigins {
				if o == origin {
					return true
				}
			}
			return false
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if err := r.SetTrustedProxies(nil); err != nil {
		log.Fatalf("trusted proxies: %v", err)
	}

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Survey server is running")
	})

	routes.SetupRoutes(r, routes.Handlers{
		Surveys:       controllers.NewSurveyController(surveyService, importService),
		Responses:     controllers.NewResponseController(responseService),
		Uploads:       controllers.NewUploadController(utils.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)),
		Health:        controllers.NewHealthController(sqlDB, cachePinger),
		SurveyReader:  surveyRepo,
		SubmitLimiter: middleware.NewIPRateLimiter(ctx, cfg.SubmitRatePerMin, cfg.SubmitBurst, 5*time.Minute),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Server listening on port %s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
