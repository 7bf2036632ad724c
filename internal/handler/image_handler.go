package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"imagevault/internal/imageproc"
	"imagevault/internal/model"
	"imagevault/internal/service"
)

// ImageHandler handles image endpoints. Every route runs behind the auth gate.
type ImageHandler struct {
	imageService service.ImageService
	logger       logrus.FieldLogger
}

// NewImageHandler creates a new image handler.
func NewImageHandler(imageService service.ImageService, logger logrus.FieldLogger) *ImageHandler {
	return &ImageHandler{imageService: imageService, logger: logger}
}

// Upload godoc
// @Summary Upload an image
// @Description Normalizes the image (max 1920x1080, re-encoded) and stores it for the caller.
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file (JPEG, PNG, GIF or WebP, max 10MB)"
// @Param caption formData string false "Caption"
// @Param is_private formData bool false "Private flag"
// @Success 200 {object} model.ImageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /images/upload [post]
func (h *ImageHandler) Upload(c echo.Context, user *model.User) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return validationError("file is required")
	}

	isPrivate := false
	if raw := c.FormValue("is_private"); raw != "" {
		isPrivate, err = parseBool(raw)
		if err != nil {
			return validationError(fmt.Sprintf("is_private: invalid boolean %q", raw))
		}
	}

	f, err := fh.Open()
	if err != nil {
		return errorResponse(c, h.logger, fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	// one byte past the limit is enough for the size gate to trip
	data, err := io.ReadAll(io.LimitReader(f, imageproc.MaxUploadSize+1))
	if err != nil {
		return errorResponse(c, h.logger, fmt.Errorf("read upload: %w", err))
	}

	image, err := h.imageService.Upload(c.Request().Context(), user, service.UploadInput{
		Data:        data,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Filename:    fh.Filename,
		Caption:     c.FormValue("caption"),
		IsPrivate:   isPrivate,
	})
	if err != nil {
		return errorResponse(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, image.ToResponse())
}

// List godoc
// @Summary List the caller's images
// @Description Newest first, at most 100.
// @Tags images
// @Produce json
// @Security BearerAuth
// @Param private query bool false "Only private (true) or only public (false) images"
// @Success 200 {array} model.ImageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /images [get]
func (h *ImageHandler) List(c echo.Context, user *model.User) error {
	var isPrivate *bool
	if raw := c.QueryParam("private"); raw != "" {
		v, err := parseBool(raw)
		if err != nil {
			return validationError(fmt.Sprintf("private: invalid boolean %q", raw))
		}
		isPrivate = &v
	}

	images, err := h.imageService.List(c.Request().Context(), user, isPrivate)
	if err != nil {
		return errorResponse(c, h.logger, err)
	}

	out := make([]model.ImageResponse, 0, len(images))
	for i := range images {
		out = append(out, images[i].ToResponse())
	}
	return c.JSON(http.StatusOK, out)
}

// Delete godoc
// @Summary Delete one of the caller's images
// @Tags images
// @Produce json
// @Security BearerAuth
// @Param id path string true "Image ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /images/{id} [delete]
func (h *ImageHandler) Delete(c echo.Context, user *model.User) error {
	if err := h.imageService.Delete(c.Request().Context(), user, c.Param("id")); err != nil {
		return errorResponse(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Image deleted successfully"})
}
