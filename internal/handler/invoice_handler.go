package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoiceai/internal/domain"
	"invoiceai/internal/middleware"
	"invoiceai/internal/service"
)

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

// InvoiceHandler handles the invoice REST endpoints.
type InvoiceHandler struct {
	svc service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(svc service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// List handles GET /invoices
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param per_page query int false "Items per page (default 15, max 100)"
// @Success 200 {object} APIResponse
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	invoices, total, err := h.svc.List(c.Request.Context(), middleware.GetTenantID(c), page, perPage)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, invoices, PagMeta{Total: total, Page: page, PerPage: perPage})
}

// GetByID handles GET /invoices/:id
// @Summary Get an invoice with its line items, discounts, and other charges
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice id")
		return
	}

	inv, err := h.svc.GetByID(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, "", inv)
}

// Create handles POST /invoices: stores the uploaded file, runs extraction,
// and persists the assembled invoice.
// @Summary Upload an invoice file and extract its data
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice file (pdf, jpg, jpeg, png)"
// @Success 201 {object} APIResponse
// @Failure 422 {object} APIResponse
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		HandleError(c, domain.ErrMissingFile)
		return
	}
	defer file.Close()

	inv, err := h.svc.Upload(c.Request.Context(), service.UploadInvoiceInput{
		TenantID: middleware.GetTenantID(c),
		UserID:   middleware.GetUserID(c),
		File:     file,
		Header:   header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, "Invoice processed successfully", inv)
}

// Delete handles DELETE /invoices/:id
// @Summary Delete an invoice and its stored file
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice id")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), middleware.GetTenantID(c), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, "Invoice deleted successfully", nil)
}

// DownloadFile handles GET /invoices/:id/file
// @Summary Download the stored source file of an invoice
// @Tags invoices
// @Produce application/octet-stream
// @Param id path string true "Invoice ID"
// @Success 200
// @Failure 404 {object} APIResponse
// @Router /invoices/{id}/file [get]
func (h *InvoiceHandler) DownloadFile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice id")
		return
	}

	dl, err := h.svc.DownloadFile(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	c.Data(http.StatusOK, dl.ContentType, dl.Content)
}

// Extract handles POST /extract: runs the extraction pipeline without
// persisting anything.
// @Summary Extract invoice data from a file without storing it
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice file (pdf, jpg, jpeg, png)"
// @Success 200 {object} APIResponse
// @Failure 422 {object} APIResponse
// @Router /extract [post]
func (h *InvoiceHandler) Extract(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		HandleError(c, domain.ErrMissingFile)
		return
	}
	defer file.Close()

	rec, err := h.svc.ExtractOnly(c.Request.Context(), file, header)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, "", rec)
}

// Export handles GET /invoices/export?format=csv|xlsx
// @Summary Export the tenant's invoices as CSV or XLSX
// @Tags invoices
// @Produce application/octet-stream
// @Param format query string false "Export format: csv (default) or xlsx"
// @Success 200
// @Router /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	if format != service.ExportCSV && format != service.ExportXLSX {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}

	filename := fmt.Sprintf("invoices-%s.%s", time.Now().Format("2006-01-02"), format)
	if format == service.ExportXLSX {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	} else {
		c.Header("Content-Type", "text/csv; charset=utf-8")
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.svc.Export(c.Request.Context(), middleware.GetTenantID(c), format, c.Writer); err != nil {
		HandleError(c, err)
	}
}
