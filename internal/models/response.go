package models

import "time"

type TryOnResponse struct {
	Success           bool   `json:"success"`
	ResultID          string `json:"result_id,omitempty"`
	GeneratedImageURL string `json:"generated_image_url,omitempty"`
	ProcessingTimeMs  int    `json:"processing_time_ms,omitempty"`
	ModelUsed         string `json:"model_used,omitempty"`
	Message           string `json:"message,omitempty"`
}

type FeedbackResponse struct {
	Success      bool        `json:"success"`
	FeedbackID   string      `json:"feedback_id,omitempty"`
	Feedback     string      `json:"feedback,omitempty"`
	StyleScore   float64     `json:"style_score,omitempty"`
	FitAnalysis  FitAnalysis `json:"fit_analysis"`
	ColorHarmony string      `json:"color_harmony,omitempty"`
	Suggestions  []string    `json:"suggestions,omitempty"`
	Message      string      `json:"message,omitempty"`
}

type RecommendationResponse struct {
	Success           bool        `json:"success"`
	RecommendationID  string      `json:"recommendation_id,omitempty"`
	UserProfile       UserProfile `json:"user_profile"`
	RecommendedStyles []StyleItem `json:"recommended_styles"`
	ColorPalette      []string    `json:"color_palette"`
	BodyTypeAnalysis  string      `json:"body_type_analysis,omitempty"`
	Message           string      `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type AIHealthResponse struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	AIServiceStatus string    `json:"ai_service_status"`
}
