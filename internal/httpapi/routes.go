package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"uptime":    time.Since(s.started).String(),
			"component": "kitbox-api",
			"version":   s.version,
		})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")

	api.POST("/add_component", s.addComponent)
	api.POST("/remove_component", s.removeComponent)
	api.POST("/transfer_component", s.transferComponent)
	api.GET("/get_box_components/:box_id", s.getBoxComponents)

	api.GET("/boxes", s.listBoxes)
	api.POST("/boxes", s.createBox)
	api.GET("/boxes/:box_id", s.showBox)
	api.DELETE("/boxes/:box_id", s.deleteBox)

	api.GET("/component_types", s.listComponentTypes)
	api.POST("/component_types", s.createComponentType)

	api.GET("/search", s.search)
	api.GET("/summary", s.summary)
}

// result is the {success, message} envelope of the mutating routes.
type result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

func ok(message string) result {
	return result{Success: true, Message: message}
}

func failure(message string) result {
	return result{Success: false, Message: message}
}
