package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(withGZip)

	// untraced by default (see logging.excludedPaths)
	router.Get("/health", h.health)
	if h.metrics != nil {
		router.Method(http.MethodGet, "/metrics", h.metrics)
	}

	// endpoints that hand their result to the interceptor
	router.Get("/api/test1", h.endpoint("TestHandler.test1", h.test1))
	router.Get("/api/test/hello/{name}", h.endpoint("TestHandler.hello", h.hello, pathArg("name")))
	router.Get("/api/test/greet", h.endpoint("TestHandler.greet", h.greet, queryArg("name"), intQueryArg("age", 18)))
	router.Get("/api/test/user", h.endpoint("TestHandler.user", h.user))
	router.Post("/api/test/json", h.endpoint("TestHandler.json", h.echoJSON))
	router.Post("/api/test/complex/{id}", h.endpoint("TestHandler.complex", h.complexRequest, pathArg("id"), queryArg("action")))
	router.Get("/api/test/stream", h.endpoint("TestHandler.stream", h.numbers, intQueryArg("n", 3)))
	router.Post("/api/users", h.endpoint("UserHandler.register", h.registerUser))
	router.Get("/api/users/{login}", h.endpoint("UserHandler.find", h.findUser, pathArg("login")))

	// plain handlers recorded from the outside
	router.Group(func(r chi.Router) {
		r.Use(h.withTraceLogging)
		r.Get("/api/test1/web", h.test1Web)
		r.Post("/api/test/form", h.form)
		r.Post("/api/test/upload", h.upload)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
