package v1

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumora-health/visionflow/pkg/metrics"
)

type Handlers struct {
	Appointments *AppointmentHandler
	Schedule     *ScheduleHandler
	Patients     *PatientHandler
}

// Register mounts the v1 API.
func Register(r *gin.Engine, h Handlers, m *metrics.Collector) {
	if m != nil {
		r.Use(metricsMiddleware(m))
	}

	api := r.Group("/api/v1")

	appts := api.Group("/appointments")
	{
		appts.POST("", h.Appointments.Create)
		appts.GET("", h.Appointments.List)
		appts.GET("/:id", h.Appointments.Get)
		appts.PUT("/:id/schedule", h.Appointments.Reschedule)
		appts.POST("/:id/cancel", h.Appointments.Cancel)
		appts.POST("/:id/confirm", h.Appointments.Confirm)
		appts.POST("/:id/complete", h.Appointments.Complete)
		appts.POST("/:id/no-show", h.Appointments.MarkNoShow)
	}

	schedule := api.Group("/schedule")
	{
		schedule.POST("/validate", h.Schedule.Validate)
		schedule.GET("/next-slot", h.Schedule.NextSlot)
		schedule.GET("/day-slots", h.Schedule.DaySlots)
	}

	patients := api.Group("/patients")
	{
		patients.POST("", h.Patients.Create)
		patients.GET("", h.Patients.List)
		patients.GET("/:id", h.Patients.Get)
	}

	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

func metricsMiddleware(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.InFlightGauge.Inc()

		c.Next()

		m.InFlightGauge.Dec()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
