package routes

import (
	"todo-http-demo/internal/controller"
	"todo-http-demo/internal/metrics"
	"todo-http-demo/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Router builds the HTTP handler. m may be nil to disable metrics.
func Router(todos *controller.TodoController, m *metrics.Collector) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())
	if m != nil {
		router.Use(middleware.Metrics(m))
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Health for load balancers and K8s probes
	router.GET("/health", todos.Health)
	router.GET("/ready", todos.Ready)

	api := router.Group(controller.BasePath)
	{
		// collection answers with and without the trailing slash
		for _, collection := range []string{"", "/"} {
			api.GET(collection, todos.List)
			api.POST(collection, todos.Create)
			api.HEAD(collection, todos.Head)
			api.OPTIONS(collection, todos.Options)
		}
		api.GET("/:id", todos.GetByID)
		api.PUT("/:id", todos.Replace)
		api.PATCH("/:id", todos.Update)
		api.DELETE("/:id", todos.Delete)
	}

	return router
}
