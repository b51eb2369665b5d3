package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/unclebandit/customer-service/internal/controller"
	"github.com/unclebandit/customer-service/internal/metrics"
)

// RouterDeps are the collaborators the HTTP surface is built from.
type RouterDeps struct {
	Customers *controller.CustomerController
	Metrics   *metrics.Metrics
	Log       *zap.Logger
	DB        Pinger
}

func NewRouter(d RouterDeps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log.Named("http"), d.Metrics))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Health(d.DB))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	// Customer routes; the admin/public split is naming only, nothing is enforced
	r.Route("/api", func(r chi.Router) {
		r.Post("/admin/customers", d.Customers.CreateCustomer)
		r.Delete("/admin/customers/{customerId}", d.Customers.DeleteCustomer)
		r.Get("/public/customers", d.Customers.ListCustomers)
		r.Get("/public/customers/{customerId}", d.Customers.GetCustomer)
		r.Put("/public/customers/{customerId}", d.Customers.UpdateCustomer)
	})

	return r
}
