package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	w := serve(engine, http.MethodGet, "/api/v2/test/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/test/ping").Code)
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("api"))
	})

	r := NewRouter(engine)
	r.Use(func(c *gin.Context) {
		c.Set("api", "yes")
		c.Next()
	})
	r.Register(NewDomainGroup("carts", "/carts").GET("", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("api"))
	}))
	r.Setup()

	assert.Equal(t, "yes", serve(engine, http.MethodGet, "/api/v1/carts").Body.String())
	assert.Empty(t, serve(engine, http.MethodGet, "/healthz").Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("catalog", "/catalog")
		assert.Equal(t, "catalog", g.Name())
		assert.Equal(t, "/catalog", g.Prefix())
	})

	t.Run("methods", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		g.GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) }).
			POST("/items", func(c *gin.Context) { c.Status(http.StatusCreated) }).
			PATCH("/items/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })
		g.RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/test/items").Code)
		assert.Equal(t, http.StatusCreated, serve(engine, http.MethodPost, "/api/v1/test/items").Code)
		assert.Equal(t, "42", serve(engine, http.MethodPatch, "/api/v1/test/items/42").Body.String())
	})

	t.Run("subgroups inherit middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("carts", "/carts")
		g.Use(func(c *gin.Context) {
			c.Header("X-Group", "carts")
			c.Next()
		})
		g.Group("checkout", "/:id/checkout").GET("/:step", func(c *gin.Context) {
			c.String(http.StatusOK, c.Param("id")+"/"+c.Param("step"))
		})
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/carts/abc/checkout/review")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "abc/review", w.Body.String())
		assert.Equal(t, "carts", w.Header().Get("X-Group"))
	})
}
