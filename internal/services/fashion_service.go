package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fashion-ai-backend/internal/inference"
	"fashion-ai-backend/internal/models"
)

// recommendationTTL bounds how long a cached style recommendation is served
// before the next request recomputes it.
const recommendationTTL = 30 * 24 * time.Hour

// BlobStore stores raw bytes under a logical folder and returns a durable,
// publicly retrievable URL.
type BlobStore interface {
	Store(ctx context.Context, data []byte, contentType, folder string) (string, error)
}

// InferenceClient is the AI service surface the workflows need. The concrete
// client owns retry and failure classification; errors arriving here are
// already final.
type InferenceClient interface {
	TryOn(ctx context.Context, userImage, clothingImage inference.Image) (*inference.TryOnOutput, error)
	Feedback(ctx context.Context, userImage, clothingImage, generatedImage inference.Image) (*inference.FeedbackOutput, error)
	Recommend(ctx context.Context, userImage inference.Image) (*inference.RecommendationOutput, error)
	HealthCheck(ctx context.Context) bool
}

// ResultStore is the persistence surface for the three entity kinds plus the
// mirrored user profile. Lookups return (nil, nil) when nothing matches.
type ResultStore interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID string, profile models.UserProfile) error

	CreateTryOnResult(ctx context.Context, result *models.TryOnResult) error
	UpdateTryOnResult(ctx context.Context, result *models.TryOnResult) error
	GetTryOnResult(ctx context.Context, id string) (*models.TryOnResult, error)
	ListTryOnResults(ctx context.Context, userID string) ([]models.TryOnResult, error)
	ListTryOnResultsByStatus(ctx context.Context, userID string, status models.TryOnStatus) ([]models.TryOnResult, error)

	CreateStyleFeedback(ctx context.Context, feedback *models.StyleFeedback) error
	GetFeedbackByTryOnResult(ctx context.Context, tryonResultID string) (*models.StyleFeedback, error)
	ListStyleFeedback(ctx context.Context, userID string) ([]models.StyleFeedback, error)

	CreateStyleRecommendation(ctx context.Context, rec *models.StyleRecommendation) error
	GetValidRecommendation(ctx context.Context, userID string, now time.Time) (*models.StyleRecommendation, error)
	ListStyleRecommendations(ctx context.Context, userID string) ([]models.StyleRecommendation, error)
}

// FashionService orchestrates the try-on, feedback and recommendation
// workflows over the blob store, the AI client and the result store. It is the
// sole writer for all three entity kinds and holds no in-process locks; the
// backing store carries every intermediate state.
type FashionService struct {
	store  ResultStore
	blobs  BlobStore
	ai     InferenceClient
	logger *zap.Logger
}

func NewFashionService(store ResultStore, blobs BlobStore, ai InferenceClient, logger *zap.Logger) *FashionService {
	return &FashionService{
		store:  store,
		blobs:  blobs,
		ai:     ai,
		logger: logger,
	}
}

// ProcessTryOn runs the try-on workflow: validate the user, upload both source
// images, checkpoint a PROCESSING record, call the AI service, then finalize
// the record as COMPLETED or FAILED. The checkpoint exists so a crash between
// upload and inference leaves an auditable record referencing the blobs.
//
// Concurrent identical requests are not deduplicated; each call produces an
// independent result record.
func (s *FashionService) ProcessTryOn(ctx context.Context, userID string, userImage, clothingImage inference.Image) (*models.TryOnResponse, error) {
	s.logger.Info("processing try-on request", zap.String("user_id", userID))

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, &ServiceError{Step: "user lookup", Err: err}
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "user", ID: userID}
	}

	userImageURL, err := s.blobs.Store(ctx, userImage.Data, userImage.ContentType, "user-images")
	if err != nil {
		return nil, &UploadError{Step: "user image", Err: err}
	}
	clothingImageURL, err := s.blobs.Store(ctx, clothingImage.Data, clothingImage.ContentType, "clothing-images")
	if err != nil {
		return nil, &UploadError{Step: "clothing image", Err: err}
	}

	s.logger.Info("images uploaded",
		zap.String("user_image_url", userImageURL),
		zap.String("clothing_image_url", clothingImageURL))

	result := &models.TryOnResult{
		UserID:           userID,
		UserImageURL:     userImageURL,
		ClothingImageURL: clothingImageURL,
		Status:           models.TryOnStatusProcessing,
		CreatedAt:        time.Now(),
	}
	if err := s.store.CreateTryOnResult(ctx, result); err != nil {
		return nil, &ServiceError{Step: "try-on record creation", Err: err}
	}

	s.logger.Info("try-on record created", zap.String("result_id", result.ID.Hex()))

	out, err := s.ai.TryOn(ctx, userImage, clothingImage)
	if err != nil {
		result.Status = models.TryOnStatusFailed
		if updateErr := s.store.UpdateTryOnResult(ctx, result); updateErr != nil {
			s.logger.Error("failed to mark try-on result failed",
				zap.String("result_id", result.ID.Hex()), zap.Error(updateErr))
		}
		return nil, &ServiceError{Step: "try-on inference", Err: err}
	}

	result.GeneratedImageURL = out.GeneratedImageURL
	result.ProcessingTimeMs = out.ProcessingTimeMs
	result.ModelUsed = out.ModelUsed
	result.Status = models.TryOnStatusCompleted
	if err := s.store.UpdateTryOnResult(ctx, result); err != nil {
		return nil, &ServiceError{Step: "try-on record update", Err: err}
	}

	s.logger.Info("try-on processing completed", zap.String("result_id", result.ID.Hex()))

	return &models.TryOnResponse{
		Success:           true,
		ResultID:          result.ID.Hex(),
		GeneratedImageURL: out.GeneratedImageURL,
		ProcessingTimeMs:  out.ProcessingTimeMs,
		ModelUsed:         out.ModelUsed,
		Message:           "Virtual try-on completed successfully",
	}, nil
}

// GenerateFeedback attaches an AI critique to a completed try-on result. The
// preconditions fail fast in order: the result exists, it belongs to the
// caller, it is completed, and no feedback references it yet. The unique index
// on tryon_result_id backstops the pre-check under concurrency.
func (s *FashionService) GenerateFeedback(ctx context.Context, userID, tryonResultID string, userImage, clothingImage, generatedImage inference.Image) (*models.FeedbackResponse, error) {
	s.logger.Info("generating feedback", zap.String("tryon_result_id", tryonResultID))

	result, err := s.store.GetTryOnResult(ctx, tryonResultID)
	if err != nil {
		return nil, &ServiceError{Step: "try-on result lookup", Err: err}
	}
	if result == nil {
		return nil, &NotFoundError{Resource: "try-on result", ID: tryonResultID}
	}
	if result.UserID != userID {
		return nil, &UnauthorizedError{Resource: "try-on result", ID: tryonResultID}
	}
	if result.Status != models.TryOnStatusCompleted {
		return nil, &ValidationError{Message: "try-on result is not completed"}
	}

	existing, err := s.store.GetFeedbackByTryOnResult(ctx, tryonResultID)
	if err != nil {
		return nil, &ServiceError{Step: "feedback lookup", Err: err}
	}
	if existing != nil {
		return nil, &ConflictError{Message: "Feedback already exists for this try-on result"}
	}

	out, err := s.ai.Feedback(ctx, userImage, clothingImage, generatedImage)
	if err != nil {
		return nil, &ServiceError{Step: "feedback inference", Err: err}
	}

	feedback := &models.StyleFeedback{
		UserID:        userID,
		TryOnResultID: tryonResultID,
		Feedback:      out.Feedback,
		StyleScore:    out.StyleScore,
		FitAnalysis: models.FitAnalysis{
			Length:     out.FitAnalysis["length"],
			Width:      out.FitAnalysis["width"],
			Proportion: out.FitAnalysis["proportion"],
		},
		ColorHarmony: out.ColorHarmony,
		Suggestions:  out.Suggestions,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateStyleFeedback(ctx, feedback); err != nil {
		return nil, &ServiceError{Step: "feedback creation", Err: err}
	}

	s.logger.Info("style feedback generated", zap.String("feedback_id", feedback.ID.Hex()))

	return &models.FeedbackResponse{
		Success:      true,
		FeedbackID:   feedback.ID.Hex(),
		Feedback:     feedback.Feedback,
		StyleScore:   feedback.StyleScore,
		FitAnalysis:  feedback.FitAnalysis,
		ColorHarmony: feedback.ColorHarmony,
		Suggestions:  feedback.Suggestions,
		Message:      "Style feedback generated successfully",
	}, nil
}

// GenerateRecommendations serves a cached recommendation while one is still
// valid, otherwise computes a fresh bundle, mirrors the derived profile onto
// the user when it changed, and persists a new record with a 30-day expiry.
// Cache invalidation is purely time-based.
func (s *FashionService) GenerateRecommendations(ctx context.Context, userID string, userImage inference.Image) (*models.RecommendationResponse, error) {
	s.logger.Info("generating recommendations", zap.String("user_id", userID))

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, &ServiceError{Step: "user lookup", Err: err}
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "user", ID: userID}
	}

	cached, err := s.store.GetValidRecommendation(ctx, userID, time.Now())
	if err != nil {
		return nil, &ServiceError{Step: "recommendation lookup", Err: err}
	}
	if cached != nil {
		s.logger.Info("returning cached recommendations", zap.String("user_id", userID))
		return recommendationResponse(cached), nil
	}

	out, err := s.ai.Recommend(ctx, userImage)
	if err != nil {
		return nil, &ServiceError{Step: "recommendation inference", Err: err}
	}

	profile := profileFromMap(out.UserProfile)
	styles := styleItemsFromMaps(out.RecommendedStyles)

	if user.Profile == nil || !user.Profile.Equal(profile) {
		if err := s.store.UpdateUserProfile(ctx, userID, profile); err != nil {
			return nil, &ServiceError{Step: "profile update", Err: err}
		}
	}

	now := time.Now()
	rec := &models.StyleRecommendation{
		UserID:            userID,
		UserProfile:       profile,
		RecommendedStyles: styles,
		ColorPalette:      out.ColorPalette,
		BodyTypeAnalysis:  out.BodyTypeAnalysis,
		CreatedAt:         now,
		ExpiresAt:         now.Add(recommendationTTL),
	}
	if err := s.store.CreateStyleRecommendation(ctx, rec); err != nil {
		return nil, &ServiceError{Step: "recommendation creation", Err: err}
	}

	s.logger.Info("recommendations generated", zap.String("recommendation_id", rec.ID.Hex()))

	return recommendationResponse(rec), nil
}

// GetTryOnHistory lists the user's try-on results, optionally filtered to one
// lifecycle status. An unknown status yields an empty list, not an error.
func (s *FashionService) GetTryOnHistory(ctx context.Context, userID, status string) ([]models.TryOnResult, error) {
	if status != "" {
		return s.store.ListTryOnResultsByStatus(ctx, userID, models.TryOnStatus(status))
	}
	return s.store.ListTryOnResults(ctx, userID)
}

func (s *FashionService) GetFeedbackHistory(ctx context.Context, userID string) ([]models.StyleFeedback, error) {
	return s.store.ListStyleFeedback(ctx, userID)
}

func (s *FashionService) GetRecommendations(ctx context.Context, userID string) ([]models.StyleRecommendation, error) {
	return s.store.ListStyleRecommendations(ctx, userID)
}

// AIHealthy reports whether the AI service liveness probe succeeds.
func (s *FashionService) AIHealthy(ctx context.Context) bool {
	return s.ai.HealthCheck(ctx)
}

func recommendationResponse(rec *models.StyleRecommendation) *models.RecommendationResponse {
	return &models.RecommendationResponse{
		Success:           true,
		RecommendationID:  rec.ID.Hex(),
		UserProfile:       rec.UserProfile,
		RecommendedStyles: rec.RecommendedStyles,
		ColorPalette:      rec.ColorPalette,
		BodyTypeAnalysis:  rec.BodyTypeAnalysis,
		Message:           "Recommendations retrieved successfully",
	}
}

func profileFromMap(m map[string]interface{}) models.UserProfile {
	return models.UserProfile{
		FaceShape:       stringField(m, "face_shape"),
		SkinTone:        stringField(m, "skin_tone"),
		BodyType:        stringField(m, "body_type"),
		StylePreference: stringField(m, "style_preference"),
		ColorSeason:     stringField(m, "color_season"),
	}
}

func styleItemsFromMaps(items []map[string]interface{}) []models.StyleItem {
	styles := make([]models.StyleItem, 0, len(items))
	for _, item := range items {
		styles = append(styles, models.StyleItem{
			Category: stringField(item, "category"),
			Style:    stringField(item, "style"),
			Reason:   stringField(item, "reason"),
			Examples: stringSliceField(item, "examples"),
		})
	}
	return styles
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func stringSliceField(m map[string]interface{}, key string) []string {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
