package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fashion-ai-backend/internal/models"
)

const connectTimeout = 10 * time.Second

// Store persists try-on results, style feedback, style recommendations and
// the mirrored user profile in MongoDB. Lookups return (nil, nil) when no
// document matches so callers own the not-found semantics.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) users() *mongo.Collection           { return s.db.Collection("users") }
func (s *Store) tryOnResults() *mongo.Collection    { return s.db.Collection("tryon_results") }
func (s *Store) styleFeedbacks() *mongo.Collection  { return s.db.Collection("style_feedbacks") }
func (s *Store) recommendations() *mongo.Collection { return s.db.Collection("style_recommendations") }

// EnsureIndexes creates the indexes the workflows rely on. The unique index on
// tryon_result_id backs the at-most-one-feedback-per-result invariant; the
// application pre-check alone would lose a race between concurrent requests.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.tryOnResults().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create tryon_results index: %w", err)
	}

	_, err = s.styleFeedbacks().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tryon_result_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create style_feedbacks index: %w", err)
	}

	_, err = s.recommendations().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "expires_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create style_recommendations index: %w", err)
	}

	return nil
}

// Users

func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}

	var user models.User
	err = s.users().FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, userID string, profile models.UserProfile) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	_, err = s.users().UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"profile": profile}})
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return nil
}

// Try-on results

func (s *Store) CreateTryOnResult(ctx context.Context, result *models.TryOnResult) error {
	if result.ID.IsZero() {
		result.ID = primitive.NewObjectID()
	}
	if _, err := s.tryOnResults().InsertOne(ctx, result); err != nil {
		return fmt.Errorf("failed to create try-on result: %w", err)
	}
	return nil
}

// UpdateTryOnResult replaces the whole record. There is no concurrency token;
// concurrent writers to the same id are last-write-wins.
func (s *Store) UpdateTryOnResult(ctx context.Context, result *models.TryOnResult) error {
	_, err := s.tryOnResults().ReplaceOne(ctx, bson.M{"_id": result.ID}, result)
	if err != nil {
		return fmt.Errorf("failed to update try-on result: %w", err)
	}
	return nil
}

func (s *Store) GetTryOnResult(ctx context.Context, id string) (*models.TryOnResult, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var result models.TryOnResult
	err = s.tryOnResults().FindOne(ctx, bson.M{"_id": objID}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get try-on result: %w", err)
	}
	return &result, nil
}

func (s *Store) ListTryOnResults(ctx context.Context, userID string) ([]models.TryOnResult, error) {
	cursor, err := s.tryOnResults().Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list try-on results: %w", err)
	}

	var results []models.TryOnResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode try-on results: %w", err)
	}
	return results, nil
}

func (s *Store) ListTryOnResultsByStatus(ctx context.Context, userID string, status models.TryOnStatus) ([]models.TryOnResult, error) {
	cursor, err := s.tryOnResults().Find(ctx, bson.M{"user_id": userID, "status": status},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list try-on results: %w", err)
	}

	var results []models.TryOnResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode try-on results: %w", err)
	}
	return results, nil
}

// Style feedback

func (s *Store) CreateStyleFeedback(ctx context.Context, feedback *models.StyleFeedback) error {
	if feedback.ID.IsZero() {
		feedback.ID = primitive.NewObjectID()
	}
	if _, err := s.styleFeedbacks().InsertOne(ctx, feedback); err != nil {
		return fmt.Errorf("failed to create style feedback: %w", err)
	}
	return nil
}

func (s *Store) GetFeedbackByTryOnResult(ctx context.Context, tryonResultID string) (*models.StyleFeedback, error) {
	var feedback models.StyleFeedback
	err := s.styleFeedbacks().FindOne(ctx, bson.M{"tryon_result_id": tryonResultID}).Decode(&feedback)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get style feedback: %w", err)
	}
	return &feedback, nil
}

func (s *Store) ListStyleFeedback(ctx context.Context, userID string) ([]models.StyleFeedback, error) {
	cursor, err := s.styleFeedbacks().Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list style feedback: %w", err)
	}

	var feedback []models.StyleFeedback
	if err := cursor.All(ctx, &feedback); err != nil {
		return nil, fmt.Errorf("failed to decode style feedback: %w", err)
	}
	return feedback, nil
}

// Style recommendations

func (s *Store) CreateStyleRecommendation(ctx context.Context, rec *models.StyleRecommendation) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if _, err := s.recommendations().InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to create style recommendation: %w", err)
	}
	return nil
}

// GetValidRecommendation returns the user's recommendation whose expiry is
// still in the future, or (nil, nil) when none exists.
func (s *Store) GetValidRecommendation(ctx context.Context, userID string, now time.Time) (*models.StyleRecommendation, error) {
	var rec models.StyleRecommendation
	err := s.recommendations().FindOne(ctx,
		bson.M{"user_id": userID, "expires_at": bson.M{"$gte": now}},
		options.FindOne().SetSort(bson.D{{Key: "expires_at", Value: -1}}),
	).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get style recommendation: %w", err)
	}
	return &rec, nil
}

func (s *Store) ListStyleRecommendations(ctx context.Context, userID string) ([]models.StyleRecommendation, error) {
	cursor, err := s.recommendations().Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list style recommendations: %w", err)
	}

	var recs []models.StyleRecommendation
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode style recommendations: %w", err)
	}
	return recs, nil
}

// DeleteExpiredRecommendations reclaims superseded records. Expired documents
// are never read by the workflows, so this runs out-of-band.
func (s *Store) DeleteExpiredRecommendations(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.recommendations().DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": before}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired recommendations: %w", err)
	}
	return res.DeletedCount, nil
}
