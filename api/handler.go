package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// salesHandler binds browser form posts to the controller operations of the
// visitor's session.
type salesHandler struct {
	logger *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(logger *zap.Logger) *salesHandler {
	return &salesHandler{
		logger: logger,
	}
}

// submittedRange is the page as seen by one filter post: the dates come from
// the form, everything else from the page.
type submittedRange struct {
	*Page
	start, end string
}

func (v submittedRange) DateRange() (string, string) {
	return v.start, v.end
}

// submittedDraft is the page as seen by one new-sale post.
type submittedDraft struct {
	*Page
	sellerID, date, amount string
}

func (v submittedDraft) Draft() (string, string, string) {
	return v.sellerID, v.date, v.amount
}

// handleIndex renders the page.
func (h *salesHandler) handleIndex(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "index.html", currentSession(ctx).page.Snapshot())
}

// handleState returns the page state as JSON.
func (h *salesHandler) handleState(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, currentSession(ctx).page.Snapshot())
}

// handleFilter handles the POST /ventas/filtrar form.
func (h *salesHandler) handleFilter(ctx *gin.Context) {
	sess := currentSession(ctx)
	start, end := ctx.PostForm("fecha_inicio"), ctx.PostForm("fecha_fin")

	// The inputs keep what was typed; the operation reads this post's values only.
	sess.page.SetDateRange(start, end)
	view := submittedRange{Page: sess.page, start: start, end: end}

	// Failures are already on the page as notices.
	if err := sess.controller.Bind(view).FilterSales(ctx.Request.Context()); err != nil {
		h.logger.Debug("filter did not complete", zap.Error(err))
	}
	h.backToPage(ctx)
}

// handleAddSale handles the POST /ventas/agregar form.
func (h *salesHandler) handleAddSale(ctx *gin.Context) {
	sess := currentSession(ctx)
	sellerID, date, amount := ctx.PostForm("vendedor_id"), ctx.PostForm("fecha"), ctx.PostForm("monto")

	sess.page.SetDraft(sellerID, date, amount)
	view := submittedDraft{Page: sess.page, sellerID: sellerID, date: date, amount: amount}

	if err := sess.controller.Bind(view).AddSale(ctx.Request.Context()); err != nil {
		h.logger.Debug("add sale did not complete", zap.Error(err))
	}
	h.backToPage(ctx)
}

// handleLoadSampleData handles the POST /datos/cargar form.
func (h *salesHandler) handleLoadSampleData(ctx *gin.Context) {
	if err := currentSession(ctx).controller.LoadSampleData(ctx.Request.Context()); err != nil {
		h.logger.Debug("sample data load did not complete", zap.Error(err))
	}
	h.backToPage(ctx)
}

// handleDismissNotice handles the POST /mensajes/:id/descartar form.
func (h *salesHandler) handleDismissNotice(ctx *gin.Context) {
	// An already expired notice is not an error.
	currentSession(ctx).page.DismissNotice(ctx.Param("id"))
	h.backToPage(ctx)
}

func (h *salesHandler) backToPage(ctx *gin.Context) {
	ctx.Redirect(http.StatusSeeOther, "/")
}
