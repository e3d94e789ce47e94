package inference_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fashion-ai-backend/internal/inference"
)

func newTestClient(baseURL string, maxAttempts int) *inference.Client {
	return inference.NewClient(baseURL, 2*time.Second, inference.RetryPolicy{
		MaxAttempts:  maxAttempts,
		InitialDelay: time.Millisecond,
	}, zap.NewNop())
}

func testImage(name string) inference.Image {
	return inference.Image{Filename: name, ContentType: "image/jpeg", Data: []byte("fake-image-bytes")}
}

func TestTryOn_RetriesOn5xxThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tryon", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("user_image")
		assert.NoError(t, err)
		_, _, err = r.FormFile("clothing_image")
		assert.NoError(t, err)

		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"generated_image_url":"https://cdn.test/gen.jpg","processing_time_ms":1200,"model_used":"tryon-v2"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	out, err := client.TryOn(t.Context(), testImage("user.jpg"), testImage("dress.jpg"))

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "https://cdn.test/gen.jpg", out.GeneratedImageURL)
	assert.Equal(t, 1200, out.ProcessingTimeMs)
	assert.Equal(t, "tryon-v2", out.ModelUsed)
}

func TestTryOn_SurfacesTransientErrorAfterExhaustingRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	_, err := client.TryOn(t.Context(), testImage("user.jpg"), testImage("dress.jpg"))

	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Contains(t, err.Error(), "failed after 3 attempts")

	var apiErr *inference.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.True(t, inference.IsTransient(err))
}

func TestTryOn_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"missing field"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	_, err := client.TryOn(t.Context(), testImage("user.jpg"), testImage("dress.jpg"))

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var apiErr *inference.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.False(t, inference.IsTransient(err))
}

func TestFeedback_DoesNotRetryMalformedResponses(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feedback", r.URL.Path)
		atomic.AddInt32(&calls, 1)
		w.Write([]byte("definitely not json"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	_, err := client.Feedback(t.Context(), testImage("user.jpg"), testImage("dress.jpg"), testImage("gen.jpg"))

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var malformed *inference.MalformedResponseError
	assert.True(t, errors.As(err, &malformed))
}

func TestFeedback_ParsesFitAnalysis(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"feedback": "Great color match",
			"style_score": 0.87,
			"fit_analysis": {"length": "good", "width": "slightly loose", "proportion": "balanced"},
			"color_harmony": "complementary",
			"suggestions": ["try a belt", "cuff the sleeves"]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1)
	out, err := client.Feedback(t.Context(), testImage("user.jpg"), testImage("dress.jpg"), testImage("gen.jpg"))

	require.NoError(t, err)
	assert.Equal(t, "Great color match", out.Feedback)
	assert.Equal(t, 0.87, out.StyleScore)
	assert.Equal(t, "slightly loose", out.FitAnalysis["width"])
	assert.Equal(t, []string{"try a belt", "cuff the sleeves"}, out.Suggestions)
}

func TestRecommend_ParsesProfileAndStyles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recommend", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("user_image")
		assert.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"user_profile": {"face_shape": "oval", "body_type": "athletic"},
			"recommended_styles": [{"category": "tops", "style": "fitted", "reason": "suits the frame", "examples": ["henley"]}],
			"color_palette": ["navy", "olive"],
			"body_type_analysis": "broad shoulders, narrow waist"
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1)
	out, err := client.Recommend(t.Context(), testImage("user.jpg"))

	require.NoError(t, err)
	assert.Equal(t, "athletic", out.UserProfile["body_type"])
	require.Len(t, out.RecommendedStyles, 1)
	assert.Equal(t, "tops", out.RecommendedStyles[0]["category"])
	assert.Equal(t, []string{"navy", "olive"}, out.ColorPalette)
}

func TestHealthCheck_TrueWhileEndpointReportsHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1)

	// The probe is read-only; repeated calls keep answering true.
	assert.True(t, client.HealthCheck(t.Context()))
	assert.True(t, client.HealthCheck(t.Context()))
}

func TestHealthCheck_FalseOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("error"))
	}))

	client := newTestClient(server.URL, 1)
	assert.False(t, client.HealthCheck(t.Context()))

	// Unreachable endpoint also reads as unhealthy, never as an error.
	server.Close()
	assert.False(t, client.HealthCheck(t.Context()))
}
