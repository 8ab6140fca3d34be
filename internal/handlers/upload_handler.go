package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"smartentrance/internal/api/middleware"
	"smartentrance/internal/api/validator"
	"smartentrance/internal/apiclient"
	"smartentrance/internal/services"
	"smartentrance/internal/utils/logger"
)

// MaxDocumentSize bounds a single document upload.
const MaxDocumentSize = 10 << 20

type UploadHandler struct {
	log *logger.Logger
}

func NewUploadHandler() *UploadHandler {
	return &UploadHandler{log: logger.New("upload_handler")}
}

// UploadDocument stores a file and registers it as a document of the scoped building
// @Summary Upload a document
// @Description Stores the file and registers it; the file is discarded again if registration fails
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Document title"
// @Param file formData file true "File to upload"
// @Success 201 {object} models.Document
// @Failure 400 {object} map[string]string "Validation error or file not found"
// @Failure 502 {object} middleware.ErrorBody "Upload or registration failed"
// @Router /app/documents [post]
func (h *UploadHandler) UploadDocument(c echo.Context) error {
	contentType := c.Request().Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return echo.NewHTTPError(http.StatusBadRequest, "Content-Type must be multipart/form-data")
	}

	req := validator.DocumentUploadRequest{Title: strings.TrimSpace(c.FormValue("title"))}
	if err := c.Validate(&req); err != nil {
		return err
	}
	buildingID, err := scopedBuilding(c)
	if err != nil {
		return err
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.log.Warn("No file in upload request: %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, "No file provided")
	}
	if header.Size > MaxDocumentSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File is too large")
	}

	src, err := header.Open()
	if err != nil {
		return h.log.Error("Failed to open uploaded file", err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return h.log.Error("Failed to read uploaded file", err)
	}

	fileType := header.Header.Get("Content-Type")
	if fileType == "" {
		fileType = http.DetectContentType(content)
	}

	doc, err := middleware.GetServices(c).Documents.UploadAndRegister(c.Request().Context(), buildingID, req.Title, services.File{
		Name:        header.Filename,
		ContentType: fileType,
		Content:     content,
	})
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return err
		}
		status := http.StatusBadGateway
		if s := apiclient.StatusOf(err); s >= 400 && s < 500 {
			status = s
		}
		return middleware.Fail(c, status, "error.upload")
	}

	h.log.Success("Document %d uploaded for building %d", doc.ID, buildingID)
	return c.JSON(http.StatusCreated, doc)
}
