package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/laxmielectronics/site-api/internal/models"
	"github.com/laxmielectronics/site-api/internal/services"
	apperrors "github.com/laxmielectronics/site-api/pkg/errors"
)

// uploadFields are the multipart file fields accepted on the quote form
var uploadFields = []string{"cad_file", "rfq_file"}

type FormHandler struct {
	service services.FormServiceInterface
}

func NewFormHandler(service services.FormServiceInterface) *FormHandler {
	return &FormHandler{service: service}
}

// Submit accepts a typed form as JSON or multipart/form-data. The server
// composes both notifications; the client never sends HTML.
func (h *FormHandler) Submit(c *gin.Context) {
	formType, ok := models.ParseFormType(c.Param("formType"))
	if !ok {
		respondError(c, http.StatusNotFound, models.MessageUnknownFormType, nil)
		return
	}
	sub := models.NewFormSubmission(formType)

	var uploads []services.Upload
	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		if err := c.ShouldBindWith(sub, binding.FormMultipart); err != nil {
			respondErrorWithDetails(c, bindingStatus(err), bindingErrorMessage(err), err)
			return
		}
		if formType == models.FormTypeQuote {
			files, err := openUploads(c)
			defer closeAll(files)
			if err != nil {
				respondErrorWithDetails(c, http.StatusBadRequest, "Invalid file upload", err)
				return
			}
			uploads = toUploads(files)
		}
	} else if err := c.ShouldBindJSON(sub); err != nil {
		respondErrorWithDetails(c, bindingStatus(err), bindingErrorMessage(err), err)
		return
	}

	result, err := h.service.Submit(c.Request.Context(), sub, uploads)
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			attachError(c, err)
			c.JSON(http.StatusBadRequest, models.SubmissionResult{
				Success: false,
				Message: models.MessageValidationFailed,
				Errors:  validationErr.Fields,
			})
		case apperrors.Is(err, apperrors.ErrCaptcha):
			respondError(c, http.StatusBadRequest, models.MessageCaptchaFailed, err)
		case apperrors.Is(err, apperrors.ErrInvalidInput):
			respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request", err)
		default:
			respondErrorWithDetails(c, http.StatusInternalServerError, models.MessageInternalError, err)
		}
		return
	}

	if !result.Success {
		attachError(c, apperrors.ErrDeliveryFailed)
		c.JSON(http.StatusInternalServerError, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

type openedUpload struct {
	field  string
	header *multipart.FileHeader
	file   multipart.File
}

func openUploads(c *gin.Context) ([]openedUpload, error) {
	var opened []openedUpload
	for _, field := range uploadFields {
		header, err := c.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return opened, err
		}
		file, err := header.Open()
		if err != nil {
			return opened, err
		}
		opened = append(opened, openedUpload{field: field, header: header, file: file})
	}
	return opened, nil
}

func toUploads(files []openedUpload) []services.Upload {
	uploads := make([]services.Upload, 0, len(files))
	for _, f := range files {
		uploads = append(uploads, services.Upload{
			Field:    f.field,
			Filename: f.header.Filename,
			Size:     f.header.Size,
			Content:  f.file,
		})
	}
	return uploads
}

func closeAll(files []openedUpload) {
	for _, f := range files {
		_ = f.file.Close()
	}
}
