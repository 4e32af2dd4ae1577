package server

import (
	"vietqr-order-service/internal/handler"
	"vietqr-order-service/internal/middleware"
	"vietqr-order-service/internal/service"
	"vietqr-order-service/internal/webhook"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	echo           *echo.Echo
	orderHandler   *handler.OrderHandler
	paymentHandler *handler.PaymentHandler
	webhookHandler *handler.WebhookHandler
	jwtSecret      string
}

func NewServer(reconciler service.Reconciler, ingress *webhook.Ingress, jwtSecret string, logger *zap.SugaredLogger) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Infow("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"err", v.Error)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:           e,
		orderHandler:   handler.NewOrderHandler(reconciler),
		paymentHandler: handler.NewPaymentHandler(reconciler),
		webhookHandler: handler.NewWebhookHandler(ingress),
		jwtSecret:      jwtSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- orders --------
	orders := api.Group("/orders")
	orders.POST("", s.orderHandler.Create)
	orders.GET("/:id", s.orderHandler.Get)
	orders.POST("/:id/cancel", s.orderHandler.Cancel)
	orders.POST("/:id/status", s.orderHandler.UpdateStatus, middleware.JWTAuth(s.jwtSecret))

	api.POST("/payment/qr", s.paymentHandler.RequestQR)

	// -------- provider webhook --------
	s.echo.POST("/webhook/payment", s.webhookHandler.PaymentWebhook, echomw.BodyLimit("64K"))
}

// Handler exposes the routing tree for in-process tests.
func (s *Server) Handler() *echo.Echo {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
