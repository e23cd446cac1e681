package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	AllowedOrigins []string
	Delay          time.Duration
	Metrics        http.Handler
	Log            zerolog.Logger
}

func NewRouter(dataHandler *DeviceDataHandler, deviceHandler *DeviceHandler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(cfg.Log))

	config := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = cfg.AllowedOrigins
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.ExposeHeaders = []string{"Content-Disposition"}
	r.Use(cors.New(config))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := r.Group("")
	api.Use(delay(cfg.Delay))
	{
		data := api.Group("/deviceData/:id")
		{
			data.GET("", dataHandler.Page)
			data.GET("/range", dataHandler.Range)
			data.GET("/timeSeries", dataHandler.TimeSeries)
			data.GET("/exportJson", dataHandler.Export)
			data.DELETE("", dataHandler.DeleteAll)
		}
		devices := api.Group("/devices")
		{
			devices.GET("", deviceHandler.List)
			devices.POST("", deviceHandler.Create)
			devices.GET("/:id", deviceHandler.GetOne)
			devices.PUT("/:id", deviceHandler.Update)
			devices.DELETE("/:id", deviceHandler.Delete)
		}
	}

	return r
}
