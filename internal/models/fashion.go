package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TryOnStatus tracks the lifecycle of a try-on request. A result is created in
// PROCESSING once its source images are uploaded and moves to COMPLETED or
// FAILED exactly once.
type TryOnStatus string

const (
	TryOnStatusPending    TryOnStatus = "PENDING"
	TryOnStatusProcessing TryOnStatus = "PROCESSING"
	TryOnStatusCompleted  TryOnStatus = "COMPLETED"
	TryOnStatusFailed     TryOnStatus = "FAILED"
)

// TryOnResult is one generated outfit visualization. GeneratedImageURL is set
// if and only if Status is COMPLETED.
type TryOnResult struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            string             `bson:"user_id" json:"user_id"`
	UserImageURL      string             `bson:"user_image_url" json:"user_image_url"`
	ClothingImageURL  string             `bson:"clothing_image_url" json:"clothing_image_url"`
	GeneratedImageURL string             `bson:"generated_image_url,omitempty" json:"generated_image_url,omitempty"`
	ProcessingTimeMs  int                `bson:"processing_time_ms,omitempty" json:"processing_time_ms,omitempty"`
	ModelUsed         string             `bson:"model_used,omitempty" json:"model_used,omitempty"`
	Status            TryOnStatus        `bson:"status" json:"status"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
}

// FitAnalysis is the structured portion of a style critique.
type FitAnalysis struct {
	Length     string `bson:"length" json:"length"`
	Width      string `bson:"width" json:"width"`
	Proportion string `bson:"proportion" json:"proportion"`
}

// StyleFeedback is a critique attached to exactly one completed try-on result.
// At most one feedback exists per try-on result.
type StyleFeedback struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"user_id" json:"user_id"`
	TryOnResultID string             `bson:"tryon_result_id" json:"tryon_result_id"`
	Feedback      string             `bson:"feedback" json:"feedback"`
	StyleScore    float64            `bson:"style_score" json:"style_score"`
	FitAnalysis   FitAnalysis        `bson:"fit_analysis" json:"fit_analysis"`
	ColorHarmony  string             `bson:"color_harmony" json:"color_harmony"`
	Suggestions   []string           `bson:"suggestions" json:"suggestions"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// UserProfile is a snapshot of derived physical and style attributes. It is
// embedded in recommendations and mirrored onto the user record.
type UserProfile struct {
	FaceShape       string   `bson:"face_shape,omitempty" json:"face_shape,omitempty"`
	SkinTone        string   `bson:"skin_tone,omitempty" json:"skin_tone,omitempty"`
	BodyType        string   `bson:"body_type,omitempty" json:"body_type,omitempty"`
	StylePreference string   `bson:"style_preference,omitempty" json:"style_preference,omitempty"`
	ColorSeason     string   `bson:"color_season,omitempty" json:"color_season,omitempty"`
	FavoriteColors  []string `bson:"favorite_colors,omitempty" json:"favorite_colors,omitempty"`
}

// Equal reports whether two profiles carry the same derived attributes.
func (p UserProfile) Equal(other UserProfile) bool {
	if p.FaceShape != other.FaceShape ||
		p.SkinTone != other.SkinTone ||
		p.BodyType != other.BodyType ||
		p.StylePreference != other.StylePreference ||
		p.ColorSeason != other.ColorSeason {
		return false
	}
	if len(p.FavoriteColors) != len(other.FavoriteColors) {
		return false
	}
	for i := range p.FavoriteColors {
		if p.FavoriteColors[i] != other.FavoriteColors[i] {
			return false
		}
	}
	return true
}

// StyleItem is one recommended style with its rationale.
type StyleItem struct {
	Category string   `bson:"category" json:"category"`
	Style    string   `bson:"style" json:"style"`
	Reason   string   `bson:"reason" json:"reason"`
	Examples []string `bson:"examples,omitempty" json:"examples,omitempty"`
}

// StyleRecommendation is a cached bundle of personalized suggestions. It is
// valid while ExpiresAt is in the future; recomputation supersedes it with a
// new record rather than mutating it.
type StyleRecommendation struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            string             `bson:"user_id" json:"user_id"`
	UserProfile       UserProfile        `bson:"user_profile" json:"user_profile"`
	RecommendedStyles []StyleItem        `bson:"recommended_styles" json:"recommended_styles"`
	ColorPalette      []string           `bson:"color_palette" json:"color_palette"`
	BodyTypeAnalysis  string             `bson:"body_type_analysis" json:"body_type_analysis"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt         time.Time          `bson:"expires_at" json:"expires_at"`
}

// User is the slice of the user aggregate this service reads and writes. The
// rest of the aggregate (auth, carts, friends) is owned elsewhere.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Profile   *UserProfile       `bson:"profile,omitempty" json:"profile,omitempty"`
	CreatedAt time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
}
