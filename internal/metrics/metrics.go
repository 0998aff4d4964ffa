package metrics

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application's collectors; it is what /metrics exposes.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yatube",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "status"},
	)

	postsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "yatube",
		Name:      "posts_created_total",
		Help:      "Posts stored through the create form.",
	})

	postsUpdated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "yatube",
		Name:      "posts_updated_total",
		Help:      "Posts rewritten through the edit form.",
	})

	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yatube",
			Name:      "post_validation_failures_total",
			Help:      "Post form submissions rejected by validation.",
		},
		[]string{"form"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		postsCreated,
		postsUpdated,
		validationFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Middleware counts every request by method and final status.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		httpRequests.WithLabelValues(c.Method(), strconv.Itoa(StatusOf(c, err))).Inc()
		return err
	}
}

// StatusOf is the status the client will see once err, if any, has been
// through the app's error handler.
func StatusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

func PostCreated() { postsCreated.Inc() }

func PostUpdated() { postsUpdated.Inc() }

// ValidationFailed records a rejected submission of the named form ("create" or "edit").
func ValidationFailed(form string) { validationFailures.WithLabelValues(form).Inc() }
