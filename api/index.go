package handler

import (
	"net/http"
	"sync"

	"wellness/config"
	"wellness/di"
	"wellness/shared/logger"
	transport "wellness/transport/http"
)

var (
	server *transport.HTTP
	once   sync.Once
)

// Handler is the serverless entry point. The dependency graph is built on the first request and
// reused while the instance stays warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		logger.InitLogger()
		logger.SetLogLevel(config.Get())

		server = di.InitializeService()
	})

	r.RequestURI = r.URL.String()

	server.ServeHTTP(w, r)
}
