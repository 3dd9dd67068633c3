package handler

import (
	"net/http"
	"time"

	"shopcart-service/pkg/database"
	"shopcart-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler reports service liveness and, on request, database health
type HealthHandler struct {
	DB *gorm.DB
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	DBStatus string `json:"db_status,omitempty"`
	DBError  string `json:"db_error,omitempty"`
}

// Check handles GET /health. With ?check=db the database is pinged too.
func (h *HealthHandler) Check(c echo.Context) error {
	resp := HealthResponse{Status: "ok", Time: time.Now().Format(time.RFC3339)}
	if c.QueryParam("check") != "db" {
		return c.JSON(http.StatusOK, resp)
	}

	if err := database.Ping(h.DB); err != nil {
		logger.FromContext(c).Error("Database ping error", zap.Error(err))
		resp.Status = "error"
		resp.DBStatus = "error"
		resp.DBError = "Failed to ping database"
		return c.JSON(http.StatusInternalServerError, resp)
	}

	resp.DBStatus = "ok"
	return c.JSON(http.StatusOK, resp)
}
