package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/site-engineer-app/utils"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	Store Pinger
}

func NewHealthController(store Pinger) *HealthController {
	return &HealthController{Store: store}
}

func (hc *HealthController) Health(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "ok", nil)
}

// Ready fails while the database is unreachable.
func (hc *HealthController) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := hc.Store.Ping(ctx); err != nil {
		utils.ErrorLogger.WithError(err).Warn("readiness check failed")
		utils.RespondJSON(c, http.StatusServiceUnavailable, "database unavailable", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "ready", nil)
}
