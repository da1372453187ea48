package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "notebase/internal/app"
	"notebase/internal/bootstrap"
	"notebase/internal/cache"
	"notebase/internal/platform/rabbitmq"
	"notebase/internal/repository"
	"notebase/internal/scheduler"
	"notebase/internal/transport/http/handler"
	"notebase/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App, sched *scheduler.Scheduler) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID(), middleware.Metrics(app.Metrics))

	cfg := app.Config
	channelRepo := repository.NewChannelRepository(app.MySQL)
	documentRepo := repository.NewDocumentRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	noteRepo := repository.NewNoteRepository(app.MySQL)

	capacity := appsvc.NewCapacityService(cfg.Quota.MaxFilesPerChannel, cfg.MaxChannelSizeBytes())
	policy := appsvc.NewLifecyclePolicy(cfg.Lifecycle.InactiveDays, cfg.Lifecycle.IdleWarningDays, capacity)

	answerCache := cache.NewAnswerCache(app.Redis, time.Duration(cfg.Redis.AnswerTTLSeconds)*time.Second)
	historyCache := cache.NewHistoryCache(app.Redis,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second)
	publisher := rabbitmq.NewMessagePublisher(app.MQConn, cfg.RabbitMQ.MessagePersistQueue)

	channelService := appsvc.NewChannelService(channelRepo, app.FileSearch, capacity, policy)
	documentService := appsvc.NewDocumentService(documentRepo, channelRepo, app.FileSearch, capacity, answerCache, cfg.MaxUploadSizeBytes())
	chatService := appsvc.NewChatService(channelRepo, messageRepo, app.FileSearch, publisher, historyCache, answerCache)
	generationService := appsvc.NewGenerationService(channelRepo, app.FileSearch)
	noteService := appsvc.NewNoteService(noteRepo, channelRepo)
	adminService := appsvc.NewAdminService(channelRepo, documentRepo, messageRepo, noteRepo,
		policy, capacity, app.Metrics, appsvc.LimitStats{
			MaxFilesPerChannel: cfg.Quota.MaxFilesPerChannel,
			MaxChannelBytes:    cfg.MaxChannelSizeBytes(),
			InactiveDays:       cfg.Lifecycle.InactiveDays,
		}, app.StartedAt)

	channelHandler := handler.NewChannelHandler(channelService)
	documentHandler := handler.NewDocumentHandler(documentService, cfg.MaxUploadSizeBytes())
	chatHandler := handler.NewChatHandler(chatService)
	generateHandler := handler.NewGenerateHandler(generationService)
	noteHandler := handler.NewNoteHandler(noteService)
	adminHandler := handler.NewAdminHandler(adminService, sched)
	healthHandler := handler.NewHealthHandler(app)

	router.GET("/healthz", healthHandler.Check)

	var generateLimiter gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		generateLimiter = middleware.RateLimit(app.Redis, cfg.RateLimit.GeneratePerMin,
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
	} else {
		generateLimiter = middleware.RateLimit(nil, 0, 0)
	}

	v1 := router.Group("/api/v1")

	channels := v1.Group("/channels")
	channels.POST("", channelHandler.Create)
	channels.GET("", channelHandler.List)
	channels.GET("/:id", channelHandler.Get)
	channels.PUT("/:id", channelHandler.Update)
	channels.DELETE("/:id", channelHandler.Delete)
	channels.GET("/:id/capacity", channelHandler.Capacity)
	channels.GET("/:id/lifecycle", channelHandler.Lifecycle)

	channels.POST("/:id/documents", documentHandler.Upload)
	v1.GET("/documents", documentHandler.List)
	v1.GET("/documents/:id", documentHandler.Get)
	v1.DELETE("/documents/:id", documentHandler.Delete)

	channels.POST("/:id/chat", generateLimiter, chatHandler.Ask)
	channels.GET("/:id/chat/history", chatHandler.History)
	channels.DELETE("/:id/chat/history", chatHandler.ClearHistory)

	channels.POST("/:id/summarize", generateLimiter, generateHandler.Summarize)
	channels.POST("/:id/timeline", generateLimiter, generateHandler.Timeline)
	channels.POST("/:id/briefing", generateLimiter, generateHandler.Briefing)
	channels.POST("/:id/script", generateLimiter, generateHandler.Script)

	channels.POST("/:id/notes", noteHandler.Create)
	channels.GET("/:id/notes", noteHandler.ListByChannel)
	v1.GET("/notes/:id", noteHandler.Get)
	v1.PUT("/notes/:id", noteHandler.Update)
	v1.DELETE("/notes/:id", noteHandler.Delete)

	admin := v1.Group("/admin")
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/api-metrics", adminHandler.APIMetrics)
	admin.GET("/channels", adminHandler.Channels)
	admin.GET("/scheduler", adminHandler.SchedulerStatus)
	admin.POST("/scheduler/run", adminHandler.SchedulerRun)

	return router
}
