package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/printer-admin/internal/models"
	"github.com/joshua-takyi/printer-admin/internal/services"
)

func listHandler[T any](list func() []T) gin.HandlerFunc {
	return func(c *gin.Context) {
		items := list()
		c.JSON(http.StatusOK, models.ListResponse(items, len(items)))
	}
}

func createHandler[In any, Out any](create func(context.Context, In) (*Out, error), msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in In
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		created, err := create(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, msg))
	}
}

func updateHandler[In any, Out any](update func(context.Context, string, In) (*Out, error), msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in In
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		updated, err := update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(updated, msg))
	}
}

func deleteHandler(remove func(context.Context, string) error, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := remove(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, msg))
	}
}

// CatalogHandlers groups the CRUD endpoints of the reference data tabs.
type CatalogHandlers struct {
	ds *services.DashboardService
	cs *services.CatalogService
}

func NewCatalogHandlers(ds *services.DashboardService, cs *services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{ds: ds, cs: cs}
}

// Register mounts the catalog routes on rg.
func (h *CatalogHandlers) Register(rg *gin.RouterGroup) {
	brands := rg.Group("/printer-brands")
	brands.GET("", listHandler(h.ds.PrinterBrands))
	brands.POST("", createHandler(h.cs.AddPrinterBrand, "Printer brand created successfully"))
	brands.PUT("/:id", updateHandler(h.cs.UpdatePrinterBrand, "Printer brand updated successfully"))
	brands.DELETE("/:id", deleteHandler(h.cs.DeletePrinterBrand, "Printer brand deleted successfully"))

	printerModels := rg.Group("/printer-models")
	printerModels.POST("", createHandler(h.cs.AddPrinterModel, "Printer model created successfully"))
	printerModels.PUT("/:id", updateHandler(h.cs.UpdatePrinterModel, "Printer model updated successfully"))
	printerModels.DELETE("/:id", deleteHandler(h.cs.DeletePrinterModel, "Printer model deleted successfully"))

	categories := rg.Group("/problem-categories")
	categories.GET("", listHandler(h.ds.ProblemCategories))
	categories.POST("", createHandler(h.cs.AddProblemCategory, "Problem category created successfully"))
	categories.PUT("/:id", updateHandler(h.cs.UpdateProblemCategory, "Problem category updated successfully"))
	categories.DELETE("/:id", deleteHandler(h.cs.DeleteProblemCategory, "Problem category deleted successfully"))

	problems := rg.Group("/problems")
	problems.POST("", createHandler(h.cs.AddProblem, "Problem created successfully"))
	problems.PUT("/:id", updateHandler(h.cs.UpdateProblem, "Problem updated successfully"))
	problems.DELETE("/:id", deleteHandler(h.cs.DeleteProblem, "Problem deleted successfully"))

	gallery := rg.Group("/gallery")
	gallery.GET("", listHandler(h.ds.GalleryImages))
	gallery.POST("", createHandler(h.cs.AddGalleryImage, "Gallery image created successfully"))
	gallery.PUT("/:id", updateHandler(h.cs.UpdateGalleryImage, "Gallery image updated successfully"))
	gallery.DELETE("/:id", deleteHandler(h.cs.DeleteGalleryImage, "Gallery image deleted successfully"))

	technicians := rg.Group("/technicians")
	technicians.GET("", listHandler(h.ds.Technicians))
	technicians.POST("", createHandler(h.cs.AddTechnician, "Technician created successfully"))
	technicians.PUT("/:id", updateHandler(h.cs.UpdateTechnician, "Technician updated successfully"))
	technicians.DELETE("/:id", deleteHandler(h.cs.DeleteTechnician, "Technician deleted successfully"))
}
