package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schoolms/backend/internal/infrastructure/persistence"
)

// SystemHandler handles health and system endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{
		db:        db,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers system routes on the given group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/health", h.Health)
		system.GET("/info", h.Info)
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string         `json:"name"`
	Version   string         `json:"version"`
	GoVersion string         `json:"go_version"`
	Uptime    string         `json:"uptime"`
	Database  map[string]any `json:"database"`
}

// Health handles GET /system/health
func (h *SystemHandler) Health(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.InternalError(c, "Database unreachable")
		return
	}
	h.Success(c, gin.H{"status": "ok"})
}

// Info handles GET /system/info
func (h *SystemHandler) Info(c *gin.Context) {
	stats, err := h.db.Stats()
	if err != nil {
		h.InternalError(c, "Failed to read database stats")
		return
	}

	h.Success(c, SystemInfoResponse{
		Name:      "School Billing API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Database:  stats,
	})
}
