package handlers

import (
	"net/http"
	"time"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/services"

	"github.com/labstack/echo/v4"
)

type DocumentHandlers struct {
	documentService services.DocumentService
}

func NewDocumentHandlers(documentService services.DocumentService) *DocumentHandlers {
	return &DocumentHandlers{documentService: documentService}
}

// UploadDocument accepts a multipart form: the file under "file" plus
// document_type and optional expiration_date fields.
func (h *DocumentHandlers) UploadDocument(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, hasUser := common.GetUserIDFromContext(ctx)
	staffID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	doc := &models.StaffDocument{
		StaffID:     staffID,
		Type:        models.DocumentType(c.FormValue("document_type")),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}
	if hasUser {
		doc.UploadedBy = &userID
	}
	if expiryStr := c.FormValue("expiration_date"); expiryStr != "" {
		expiry, parseErr := time.Parse("2006-01-02", expiryStr)
		if parseErr != nil {
			return common.SendValidationError(c, "expiration_date", "must be YYYY-MM-DD")
		}
		doc.ExpirationDate = &expiry
	}

	if err := h.documentService.Upload(ctx, businessID, doc, file, fileHeader.Size); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandlers) ListStaffDocuments(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	staffID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	docs, err := h.documentService.ListByStaff(ctx, businessID, staffID)
	if err != nil {
		return common.SendServerError(c, "Failed to list documents")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"documents": docs,
	})
}

// GetDocumentURL returns a short-lived presigned download link.
func (h *DocumentHandlers) GetDocumentURL(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	docID, err := common.ValidateUUID(c.Param("docId"), "docId")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	url, err := h.documentService.GetDownloadURL(ctx, businessID, docID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"url": url,
	})
}

type DocumentMetadataRequest struct {
	DocumentType   string  `json:"document_type"`
	FileName       string  `json:"file_name"`
	ExpirationDate *string `json:"expiration_date"`
	IsRequired     bool    `json:"is_required"`
}

func (h *DocumentHandlers) UpdateDocumentMetadata(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	docID, err := common.ValidateUUID(c.Param("docId"), "docId")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	var req DocumentMetadataRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	existing, err := h.documentService.Get(ctx, businessID, docID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	existing.Type = models.DocumentType(req.DocumentType)
	if req.FileName != "" {
		existing.FileName = req.FileName
	}
	existing.IsRequired = req.IsRequired
	existing.ExpirationDate = nil
	if req.ExpirationDate != nil && *req.ExpirationDate != "" {
		expiry, parseErr := time.Parse("2006-01-02", *req.ExpirationDate)
		if parseErr != nil {
			return common.SendValidationError(c, "expiration_date", "must be YYYY-MM-DD")
		}
		existing.ExpirationDate = &expiry
	}

	if err := h.documentService.UpdateMetadata(ctx, businessID, existing); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, existing)
}

func (h *DocumentHandlers) DeleteDocument(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	docID, err := common.ValidateUUID(c.Param("docId"), "docId")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	if err := h.documentService.Delete(ctx, businessID, docID); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
