package api

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// InitRoutes registers the sales page endpoints on the given Gin engine.
// The page template is parsed from the embedded templates directory, every
// page route runs in the visitor's session and every form post ends with a
// redirect back to the page.
func InitRoutes(e *gin.Engine, sessions *Sessions, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	e.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))
	e.Use(requestLogger(logger))

	salesHandler := NewSalesHandler(logger)

	pages := e.Group("", sessionLoader(sessions))
	pages.GET("/", salesHandler.handleIndex)
	pages.GET("/estado", salesHandler.handleState)
	pages.POST("/ventas/filtrar", salesHandler.handleFilter)
	pages.POST("/ventas/agregar", salesHandler.handleAddSale)
	pages.POST("/datos/cargar", salesHandler.handleLoadSampleData)
	pages.POST("/mensajes/:id/descartar", salesHandler.handleDismissNotice)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
