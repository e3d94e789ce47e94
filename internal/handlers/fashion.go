package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fashion-ai-backend/internal/inference"
	"fashion-ai-backend/internal/middleware"
	"fashion-ai-backend/internal/models"
	"fashion-ai-backend/internal/services"
)

const maxImageSize = 10 << 20 // 10MB

// FashionService is the orchestrator surface the HTTP layer consumes.
type FashionService interface {
	ProcessTryOn(ctx context.Context, userID string, userImage, clothingImage inference.Image) (*models.TryOnResponse, error)
	GenerateFeedback(ctx context.Context, userID, tryonResultID string, userImage, clothingImage, generatedImage inference.Image) (*models.FeedbackResponse, error)
	GenerateRecommendations(ctx context.Context, userID string, userImage inference.Image) (*models.RecommendationResponse, error)
	GetTryOnHistory(ctx context.Context, userID, status string) ([]models.TryOnResult, error)
	GetFeedbackHistory(ctx context.Context, userID string) ([]models.StyleFeedback, error)
	GetRecommendations(ctx context.Context, userID string) ([]models.StyleRecommendation, error)
	AIHealthy(ctx context.Context) bool
}

type FashionHandler struct {
	service FashionService
}

func NewFashionHandler(service FashionService) *FashionHandler {
	return &FashionHandler{service: service}
}

// TryOn handles POST /api/fashion/tryon with multipart fields user_image and
// clothing_image.
func (h *FashionHandler) TryOn(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	userImage, err := readImageFile(c, "user_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	clothingImage, err := readImageFile(c, "clothing_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.service.ProcessTryOn(c.Request.Context(), userID, userImage, clothingImage)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Feedback handles POST /api/fashion/feedback with a tryon_result_id form
// value plus the three source images.
func (h *FashionHandler) Feedback(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	tryonResultID := c.PostForm("tryon_result_id")
	if tryonResultID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "tryon_result_id is required"})
		return
	}

	userImage, err := readImageFile(c, "user_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	clothingImage, err := readImageFile(c, "clothing_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	generatedImage, err := readImageFile(c, "generated_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.service.GenerateFeedback(c.Request.Context(), userID, tryonResultID, userImage, clothingImage, generatedImage)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recommend handles POST /api/fashion/recommend with a user_image field.
func (h *FashionHandler) Recommend(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	userImage, err := readImageFile(c, "user_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.service.GenerateRecommendations(c.Request.Context(), userID, userImage)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TryOnHistory lists the caller's try-on results, newest first. An optional
// status query parameter narrows the list to one lifecycle state.
func (h *FashionHandler) TryOnHistory(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	history, err := h.service.GetTryOnHistory(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *FashionHandler) FeedbackHistory(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	history, err := h.service.GetFeedbackHistory(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *FashionHandler) RecommendationHistory(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	recs, err := h.service.GetRecommendations(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// AIHealth reports whether the downstream AI service answers its liveness
// probe. The endpoint itself always answers 200; degradation is in the body.
func (h *FashionHandler) AIHealth(c *gin.Context) {
	healthy := h.service.AIHealthy(c.Request.Context())

	status := "healthy"
	aiStatus := "connected"
	if !healthy {
		status = "degraded"
		aiStatus = "unavailable"
	}

	c.JSON(http.StatusOK, models.AIHealthResponse{
		Status:          status,
		Timestamp:       time.Now(),
		AIServiceStatus: aiStatus,
	})
}

// readImageFile pulls one multipart image out of the request and enforces the
// boundary checks: present, JPEG or PNG, at most 10MB.
func readImageFile(c *gin.Context, field string) (inference.Image, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return inference.Image{}, fmt.Errorf("%s is required", field)
	}

	if fileHeader.Size > maxImageSize {
		return inference.Image{}, fmt.Errorf("%s size must not exceed 10MB", field)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png":
	default:
		return inference.Image{}, fmt.Errorf("%s must be in JPEG or PNG format", field)
	}

	data, err := readMultipartFile(fileHeader)
	if err != nil {
		return inference.Image{}, fmt.Errorf("failed to read %s: %v", field, err)
	}

	return inference.Image{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func readMultipartFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// respondServiceError maps the orchestrator's error taxonomy onto HTTP
// statuses. Transient inference failures become 503 so clients know to retry.
func respondServiceError(c *gin.Context, err error) {
	var notFound *services.NotFoundError
	var unauthorized *services.UnauthorizedError
	var validation *services.ValidationError
	var conflict *services.ConflictError
	var upload *services.UploadError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: notFound.Error()})
	case errors.As(err, &unauthorized):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: unauthorized.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: validation.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: conflict.Error()})
	case errors.As(err, &upload):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "upload failed",
			Message: upload.Error(),
		})
	case inference.IsTransient(err):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "ai service unavailable",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal error",
			Message: err.Error(),
		})
	}
}
