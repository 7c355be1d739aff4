package main

import (
	"log"
	"time"

	v1 "shipboard/api/v1"
	"shipboard/internal/activity"
	"shipboard/internal/auth"
	"shipboard/internal/cache"
	"shipboard/internal/config"
	"shipboard/internal/db"
	"shipboard/internal/deploygroup"
	"shipboard/internal/depgraph"
	"shipboard/internal/notify"
	"shipboard/internal/ratelimit"
	"shipboard/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("✓ Configuration loaded")

	// 2. Initialize MySQL
	if err := db.InitMySQL(cfg.MySQL.DSN); err != nil {
		log.Fatalf("Failed to initialize MySQL: %v", err)
	}
	defer db.Close()

	gdb := db.GetDB()
	if cfg.Migrate {
		if err := db.Migrate(gdb); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		log.Println("✓ Database migrated")
	}

	// 3. Initialize Redis
	if err := cache.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer cache.Close()

	// 4. Initialize JWT signing
	auth.InitJWT(cfg.JWT.Secret)

	// 5. Initialize WebSocket server
	if err := ws.InitServer(); err != nil {
		log.Fatalf("Failed to initialize WebSocket server: %v", err)
	}

	// 6. Build domain services
	baseLogger := logrus.NewEntry(logrus.StandardLogger())
	recorder := activity.NewRecorder(gdb, baseLogger)
	sender := notify.NewSlackSender(cfg.Slack.TimeoutSec)
	trigger := notify.NewTrigger(gdb, baseLogger, sender)
	graph := depgraph.NewService(gdb, baseLogger, trigger, recorder)
	groups := deploygroup.NewService(gdb, baseLogger, recorder)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewLimiter(cache.Client, cfg.RateLimit.PerMinute, time.Minute)
	}

	// 7. Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	v1.SetupRouter(r, v1.Deps{
		DB:       gdb,
		Config:   cfg,
		Graph:    graph,
		Groups:   groups,
		Trigger:  trigger,
		Recorder: recorder,
		Limiter:  limiter,
	})

	// WebSocket endpoint with JWT handshake auth
	wsHandler := ws.WrapWithAuth(ws.Server)
	r.GET("/socket.io/*any", gin.WrapH(wsHandler))
	r.POST("/socket.io/*any", gin.WrapH(wsHandler))

	// 8. Start background reconciler
	if cfg.Reconciler.Enabled {
		reconciler := depgraph.NewReconciler(&depgraph.ReconcilerConfig{
			DB:          gdb,
			Service:     graph,
			Logger:      baseLogger,
			IntervalSec: cfg.Reconciler.IntervalSec,
		})
		reconciler.Start()
		defer reconciler.Stop()
	}

	log.Printf("✓ Server starting on %s", cfg.HTTPAddr)

	// Start server
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
