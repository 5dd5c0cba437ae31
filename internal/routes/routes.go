package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	handler "fileflow-backend/internal/handlers"
	"fileflow-backend/internal/queue"
	"fileflow-backend/internal/repository"
	"fileflow-backend/internal/services/stats"
)

type Options struct {
	SubmitQueue   string
	StatsCache    stats.Cache
	StatsCacheTTL time.Duration
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, broker queue.Broker, opts Options, logger *zap.Logger) {
	fileRepo := repository.NewFileRepository(db)
	resultRepo := repository.NewResultRepository(db)

	statsService := stats.NewService(fileRepo, resultRepo, opts.StatsCache, opts.StatsCacheTTL, logger)

	fileHandler := handler.NewFileHandler(fileRepo, resultRepo, broker, opts.SubmitQueue, logger)
	statsHandler := handler.NewStatsHandler(statsService)
	healthHandler := handler.NewHealthHandler(handler.GormPinger{DB: db}, broker)

	r.GET("/healthcheck", healthHandler.Check)

	files := r.Group("/files")
	files.POST("/upload", fileHandler.Upload)
	files.GET("", fileHandler.ListFiles)
	files.GET("/processed/:status", fileHandler.ListProcessed)
	files.GET("/:file_id", fileHandler.GetFile)
	files.GET("/:file_id/failures", fileHandler.ListFailures)

	statsGroup := r.Group("/stats")
	{
		statsGroup.GET("/files", statsHandler.FileStats)
		statsGroup.GET("/rows", statsHandler.RowStats)
		statsGroup.GET("/daily", statsHandler.DailyStats)
	}
}
