package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workstream-hr/workstream/pkg/application"
	"github.com/workstream-hr/workstream/pkg/httpapi"
)

const dbDegradedLatency = 100 * time.Millisecond

type healthComponent struct {
	Status       string `json:"status"`
	ResponseTime string `json:"responseTime,omitempty"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status    string                     `json:"status"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]healthComponent `json:"checks"`
}

type HealthController struct {
	pool *pgxpool.Pool
}

func NewHealthController(pool *pgxpool.Pool) application.Controller {
	return &HealthController{pool: pool}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.Get).Methods(http.MethodGet)
}

func (c *HealthController) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	db := healthComponent{Status: "healthy"}
	start := time.Now()
	if err := c.pool.Ping(ctx); err != nil {
		db.Status = "down"
		db.Error = err.Error()
	} else if time.Since(start) > dbDegradedLatency {
		db.Status = "degraded"
	}
	db.ResponseTime = time.Since(start).String()

	status := db.Status
	code := http.StatusOK
	if status == "down" {
		code = http.StatusServiceUnavailable
	}
	_ = httpapi.WriteJSON(w, code, healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]healthComponent{"database": db},
	})
}
