package v1

import (
	"shipboard/api/v1/activities"
	"shipboard/api/v1/api_keys"
	"shipboard/api/v1/auth"
	"shipboard/api/v1/dependencies"
	"shipboard/api/v1/deployment_groups"
	"shipboard/api/v1/middleware"
	"shipboard/api/v1/releases"
	"shipboard/api/v1/services"
	"shipboard/api/v1/sprints"
	"shipboard/api/v1/team_settings"
	"shipboard/internal/activity"
	"shipboard/internal/config"
	"shipboard/internal/deploygroup"
	"shipboard/internal/depgraph"
	"shipboard/internal/httpx"
	"shipboard/internal/notify"
	"shipboard/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps carries the shared services the route handlers are built from.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Graph    *depgraph.Service
	Groups   *deploygroup.Service
	Trigger  *notify.Trigger
	Recorder *activity.Recorder
	Limiter  *ratelimit.Limiter
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, d Deps) {
	v1 := r.Group("/api/v1")
	{
		// Public routes (no authentication required)
		v1.GET("/ping", pingHandler)

		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", auth.LoginHandler(d.DB, d.Config))
			authGroup.POST("/setup", auth.SetupHandler(d.DB))
		}

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired())
		if d.Limiter != nil {
			protected.Use(middleware.RateLimit(d.Limiter))
		}
		{
			protected.GET("/me", meHandler)

			releasesHandler := releases.NewHandler(d.DB, d.Graph, d.Groups, d.Trigger, d.Recorder)
			releasesGroup := protected.Group("/releases")
			{
				releasesGroup.GET("", releasesHandler.List)
				releasesGroup.GET("/:id", releasesHandler.Get)
				releasesGroup.POST("/create", releasesHandler.Create)
				releasesGroup.POST("/update", releasesHandler.Update)
				releasesGroup.POST("/delete", releasesHandler.Delete)
			}

			depsHandler := dependencies.NewHandler(d.Graph)
			depsGroup := protected.Group("/dependencies")
			{
				depsGroup.GET("", depsHandler.List)
				depsGroup.POST("/create", depsHandler.Create)
				depsGroup.POST("/delete", depsHandler.Delete)
				depsGroup.POST("/resolve", depsHandler.Resolve)
			}

			groupsHandler := deployment_groups.NewHandler(d.DB, d.Groups)
			groupsGroup := protected.Group("/deployment-groups")
			{
				groupsGroup.GET("", groupsHandler.List)
				groupsGroup.GET("/:id", groupsHandler.Get)
				groupsGroup.POST("/create", groupsHandler.Create)
				groupsGroup.POST("/update", groupsHandler.Update)
				groupsGroup.POST("/delete", groupsHandler.Delete)
				groupsGroup.POST("/releases/add", groupsHandler.AddRelease)
				groupsGroup.POST("/releases/remove", groupsHandler.RemoveRelease)
			}

			sprintsHandler := sprints.NewHandler(d.DB)
			sprintsGroup := protected.Group("/sprints")
			{
				sprintsGroup.GET("", sprintsHandler.List)
				sprintsGroup.POST("/create", sprintsHandler.Create)
				sprintsGroup.POST("/update", sprintsHandler.Update)
				sprintsGroup.POST("/delete", sprintsHandler.Delete)
			}

			servicesHandler := services.NewHandler(d.DB)
			servicesGroup := protected.Group("/services")
			{
				servicesGroup.GET("", servicesHandler.List)
				servicesGroup.POST("/create", servicesHandler.Create)
				servicesGroup.POST("/update", servicesHandler.Update)
				servicesGroup.POST("/delete", servicesHandler.Delete)
			}

			keysHandler := api_keys.NewHandler(d.DB)
			keysGroup := protected.Group("/api-keys")
			{
				keysGroup.GET("", keysHandler.List)
				keysGroup.POST("/create", keysHandler.Create)
				keysGroup.POST("/revoke", keysHandler.Revoke)
			}

			activitiesHandler := activities.NewHandler(d.DB)
			protected.GET("/activities", activitiesHandler.List)

			settingsHandler := team_settings.NewHandler(d.DB)
			settingsGroup := protected.Group("/team-settings")
			{
				settingsGroup.GET("", settingsHandler.Get)
				settingsGroup.POST("/update", settingsHandler.Update)
			}
		}
	}
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}

// meHandler returns current user information
func meHandler(c *gin.Context) {
	uid, _ := c.Get("uid")
	username, _ := c.Get("username")
	role, _ := c.Get("role")
	teamID, _ := c.Get("team_id")

	httpx.OK(c, gin.H{
		"uid":      uid,
		"username": username,
		"role":     role,
		"team_id":  teamID,
	})
}
