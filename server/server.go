package server

import (
	"medbox-server/handlers"
	httpHandler "medbox-server/handlers/http"
	"medbox-server/storage"
	"medbox-server/usecases"
	"medbox-server/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Server struct {
	app   *gin.Engine
	store *storage.Store
	log   zerolog.Logger
}

func NewServer(store *storage.Store, log zerolog.Logger) *Server {
	s := &Server{
		app:   gin.Default(),
		store: store,
		log:   log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Permissive CORS so dashboards and mobile clients can hit the API
	// from anywhere on the LAN.
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	s.app.Use(cors.New(config))

	s.app.SetHTMLTemplate(handlers.Templates())

	s.app.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	uc := usecases.NewMedboxUseCase(s.store)

	manager := ws.NewManager()
	wsHandler := handlers.NewWSHandler(manager, s.log)

	deviceHandler := httpHandler.NewDeviceHandler(uc, manager)
	cmdHandler := httpHandler.NewCommandHandler(uc)
	dash := handlers.NewDashboardHandler(uc, manager)

	// Device-facing endpoints
	medbox := s.app.Group("/medbox")
	{
		medbox.POST("/upload", deviceHandler.Upload)   // Replace snapshot
		medbox.GET("/changes", deviceHandler.Changes)  // Drain pending queue

		medbox.POST("/:device_id/command/add", cmdHandler.Add)
		medbox.POST("/:device_id/command/edit", cmdHandler.Edit)
		medbox.POST("/:device_id/command/delete", cmdHandler.Delete)
		medbox.GET("/:device_id/snapshot", deviceHandler.GetSnapshot)
		medbox.GET("/:device_id/pending", deviceHandler.GetPending)
	}

	// Programmatic operator endpoints
	api := s.app.Group("/api/v1")
	{
		api.GET("/devices", deviceHandler.GetAllDevices)
		api.GET("/devices/connected", wsHandler.GetConnectedDevices)
	}

	// Dashboard
	s.app.GET("/", dash.Index)
	s.app.GET("/devices/new", dash.NewDeviceForm)
	s.app.POST("/devices/new", dash.CreateDevice)
	s.app.GET("/device/:device_id", dash.DeviceDetail)
	s.app.POST("/device/:device_id/delete", dash.DeleteDevice)
	s.app.POST("/device/:device_id/pending/:idx/delete", dash.DeletePending)
	s.app.POST("/device/:device_id/history/:idx/delete", dash.DeleteHistory)

	// Optional device presence socket
	s.app.GET("/ws", wsHandler.HandleDeviceWS)
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("medbox server listening")
	return s.app.Run(addr)
}
