package router

import "net/http"

type OperationsRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

func New(operationsController OperationsRouteRegistrar, metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"UP"}`))
	})

	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	if operationsController != nil {
		operationsController.RegisterRoutes(mux)
	}

	return mux
}
