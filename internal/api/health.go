package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Root responde la información básica del servicio
func (api *API) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": serviceName,
		"version": serviceVersion,
		"status":  "running",
	})
}

// Health reporta la conexión a la base de datos y el estado de las dependencias opcionales.
// Sólo la base de datos determina el estado general.
func (api *API) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{
		"status":    "healthy",
		"database":  "connected",
		"version":   serviceVersion,
		"timestamp": time.Now().UTC(),
	}

	if err := api.database.HealthCheck(ctx); err != nil {
		api.logger.WithError(err).Error("Database health check failed")
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = "disconnected"
	}

	names := make([]string, 0, len(api.dependencies))
	for name := range api.dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := api.dependencies[name].HealthCheck(ctx); err != nil {
			api.logger.WithError(err).WithField("dependency", name).Warn("Dependency health check failed")
			body[name] = "unavailable"
			continue
		}
		body[name] = "connected"
	}

	c.JSON(status, body)
}
