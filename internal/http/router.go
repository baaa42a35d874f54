package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"autuacao-mobile/internal/service"
)

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	// The webview shell loads from a capacitor:// origin.
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.POST("/login", handler.login)
	api.PUT("/password", handler.updatePassword)

	protected := api.Group("")
	protected.Use(authMiddleware)
	{
		protected.POST("/logout", handler.logout)
		protected.GET("/me", handler.me)

		protected.GET("/autos", handler.listAutos)
		protected.GET("/autos/pending-count", handler.pendingCount)
		protected.POST("/autos/dispatch-sei", handler.dispatchSEI)
		protected.GET("/autos/:id", handler.getAuto)
		protected.DELETE("/autos/:id", handler.deleteAuto)

		protected.POST("/autos/form", handler.openForm)
		protected.GET("/autos/form/:sid", handler.getForm)
		protected.DELETE("/autos/form/:sid", handler.closeForm)
		protected.PUT("/autos/form/:sid/date", handler.setDate)
		protected.PUT("/autos/form/:sid/operator", handler.selectOperator)
		protected.PUT("/autos/form/:sid/vehicle", handler.selectReference(service.SelectVehicle))
		protected.PUT("/autos/form/:sid/preposto", handler.selectReference(service.SelectPreposto))
		protected.PUT("/autos/form/:sid/linha", handler.selectReference(service.SelectLinha))
		protected.PUT("/autos/form/:sid/infracao", handler.selectReference(service.SelectInfracao))
		protected.PUT("/autos/form/:sid/localidade", handler.selectReference(service.SelectLocalidade))
		protected.PATCH("/autos/form/:sid/fields", handler.patchFields)
		protected.POST("/autos/form/:sid/attachments", handler.addAttachments)
		protected.DELETE("/autos/form/:sid/attachments/:aid", handler.removeAttachment)
		protected.POST("/autos/form/:sid/save", handler.saveForm)
		protected.POST("/autos/form/:sid/submit", handler.submitForm)
	}

	return router
}
