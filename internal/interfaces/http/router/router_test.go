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

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("/pipeline")
	group.GET("/report", func(c *gin.Context) {
		c.String(http.StatusOK, "report")
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/pipeline/report", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "report", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("keeps the mount prefix", func(t *testing.T) {
		g := NewDomainGroup("/analytics")
		assert.Equal(t, "/analytics", g.Prefix())
	})

	t.Run("registers GET and POST routes", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("/pipeline").
			POST("/run", func(c *gin.Context) {
				c.String(http.StatusOK, "started")
			}).
			GET("/report", func(c *gin.Context) {
				c.String(http.StatusOK, "report")
			})

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		req := httptest.NewRequest("POST", "/api/v1/pipeline/run", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "started", w.Body.String())

		req = httptest.NewRequest("GET", "/api/v1/pipeline/report", nil)
		w = httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "report", w.Body.String())
	})

	t.Run("registers a route at the group root", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("/insights").POST("", func(c *gin.Context) {
			c.String(http.StatusOK, "insight")
		})

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		req := httptest.NewRequest("POST", "/api/v1/insights", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("applies group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("/analytics")

		g.Use(func(c *gin.Context) {
			c.Header("X-Group-Middleware", "applied")
			c.Next()
		})
		g.POST("/query", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		api := engine.Group("/api/v1")
		g.RegisterRoutes(api)

		req := httptest.NewRequest("POST", "/api/v1/analytics/query", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "applied", w.Header().Get("X-Group-Middleware"))
	})
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	pipeline := NewDomainGroup("/pipeline").GET("/report", func(c *gin.Context) {
		c.String(http.StatusOK, "report")
	})
	analytics := NewDomainGroup("/analytics").POST("/query", func(c *gin.Context) {
		c.String(http.StatusOK, "result")
	})

	r.Register(pipeline).Register(analytics)
	r.Setup()

	req1 := httptest.NewRequest("GET", "/api/v1/pipeline/report", nil)
	w1 := httptest.NewRecorder()
	engine.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, "report", w1.Body.String())

	req2 := httptest.NewRequest("POST", "/api/v1/analytics/query", nil)
	w2 := httptest.NewRecorder()
	engine.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "result", w2.Body.String())
}
