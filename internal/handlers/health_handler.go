package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// GormPinger checks the connection behind a *gorm.DB.
type GormPinger struct {
	DB *gorm.DB
}

func (p GormPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type HealthHandler struct {
	database Pinger
	broker   Pinger
}

func NewHealthHandler(database, broker Pinger) *HealthHandler {
	return &HealthHandler{database: database, broker: broker}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	code := http.StatusOK
	report := gin.H{}
	for name, p := range map[string]Pinger{"database": h.database, "broker": h.broker} {
		if err := p.Ping(ctx); err != nil {
			report[name] = "error: " + err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		report[name] = "ok"
	}
	c.JSON(code, report)
}
