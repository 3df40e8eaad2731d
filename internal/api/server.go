package api

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"defaultreset/internal/database"
	"defaultreset/internal/models"
	"defaultreset/internal/monitoring"
	"defaultreset/internal/nonce"
	"defaultreset/internal/reset"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/settings.gohtml
var templatesFS embed.FS

// Products lists catalog items for the JSON view
type Products interface {
	ListAll(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, productID uint) (*models.Product, error)
}

// Deps holds the collaborators a Server needs
type Deps struct {
	Flags     reset.FlagStore
	Products  Products
	Evaluator *reset.Evaluator
	Resetter  *reset.Resetter
	Nonces    *nonce.Issuer
	Monitor   *monitoring.Monitor
	Hub       *Hub
	Logger    *zap.Logger
}

// Server is the HTTP surface of the reset service
type Server struct {
	Deps
	router *gin.Engine
}

// NewServer creates the router and registers all routes
func NewServer(deps Deps) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/settings.gohtml")
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(deps.Logger))
	router.SetHTMLTemplate(tmpl)

	s := &Server{Deps: deps, router: router}
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures all endpoints. Everything except the health
// check runs the lifecycle hook first.
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": s.Monitor.Uptime().Round(time.Second).String(),
		})
	})

	hooked := s.router.Group("", LifecycleHook(s.Evaluator, s.Hub, s.Logger))
	{
		hooked.GET("/settings", s.handleSettings)
		hooked.POST("/settings", s.handleSettingsPost)
		hooked.GET("/ws", s.Hub.ServeWS)
	}

	v1 := hooked.Group("/api/v1")
	{
		v1.GET("/status", s.handleStatus)
		v1.GET("/products", s.handleProducts)
		v1.GET("/products/:id", s.handleProduct)
	}
}

// Router returns the Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}

// LifecycleHook runs one trigger evaluation before the request is handled.
// Evaluation errors are logged and never fail the request.
func LifecycleHook(evaluator *reset.Evaluator, hub *Hub, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := evaluator.Check(c.Request.Context())
		if err != nil {
			logger.Error("reset trigger failed", zap.Error(err))
		} else if res.Report != nil {
			hub.Broadcast(newEvent(EventReset, *res.Report))
		}
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	st, err := reset.ReadStatus(c.Request.Context(), s.Flags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	body := gin.H{"flags": st}
	if last := s.Monitor.LastReset(); !last.IsZero() {
		body["last_reset"] = last.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleProducts(c *gin.Context) {
	products, err := s.Products.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, newProductView(p))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	p, err := s.Products.Get(c.Request.Context(), uint(id))
	if errors.Is(err, database.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	view := newProductView(*p)
	view.Attributes = map[string]string{}
	for _, a := range p.Attributes {
		view.Attributes[a.Name] = a.Value
	}
	c.JSON(http.StatusOK, view)
}

type productView struct {
	ID         uint              `json:"id"`
	SKU        string            `json:"sku"`
	Name       string            `json:"name"`
	Stock      int               `json:"stock"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func newProductView(p models.Product) productView {
	return productView{ID: p.ID, SKU: p.SKU, Name: p.Name, Stock: p.Stock}
}
