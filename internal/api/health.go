package api

import (
	"encoding/json"
	"net/http"
	"time"

	"gorm.io/gorm"

	"arlingtonfleet/fleetmaint/internal/auth"
)

// ServiceStatus reports one dependency's health.
type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// HealthCheckResponse is the health endpoint payload.
type HealthCheckResponse struct {
	Services map[string]ServiceStatus `json:"services"`
	Status   string                   `json:"status"`
	Uptime   string                   `json:"uptime"`
}

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(db *gorm.DB, tokens auth.TokenSource, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		services := make(map[string]ServiceStatus)

		// Check the mirror database
		mirrorStatus := "ok"
		mirrorDetails := "Mirror database reachable"
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			mirrorStatus = "down"
			mirrorDetails = err.Error()
		}
		services["mirror"] = ServiceStatus{
			Status:  mirrorStatus,
			Details: mirrorDetails,
		}

		// Check the identity provider
		idpStatus := "ok"
		idpDetails := "Token available"
		if _, err := tokens.Token(r.Context()); err != nil {
			idpStatus = "down"
			idpDetails = err.Error()
		}
		services["identity"] = ServiceStatus{
			Status:  idpStatus,
			Details: idpDetails,
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		now := time.Now()
		uptime := now.Sub(upSince).Round(time.Second).String()

		resp := HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			Uptime:   uptime,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
