package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"
)

const healthCheckTimeout = 5 * time.Second

// Image is a raw image payload with its declared content type. Size and
// format validation happen at the HTTP boundary, not here.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Client is a resilient wrapper around the remote AI fashion service. Calls
// are multipart-encoded HTTP requests wrapped in the configured retry policy;
// only transient failures are retried. The client persists and caches nothing.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryPolicy
	logger     *zap.Logger
}

// TryOnOutput is the response shape of POST /tryon.
type TryOnOutput struct {
	Success           bool   `json:"success"`
	GeneratedImageURL string `json:"generated_image_url"`
	ProcessingTimeMs  int    `json:"processing_time_ms"`
	ModelUsed         string `json:"model_used"`
}

// FeedbackOutput is the response shape of POST /feedback.
type FeedbackOutput struct {
	Success      bool              `json:"success"`
	Feedback     string            `json:"feedback"`
	StyleScore   float64           `json:"style_score"`
	FitAnalysis  map[string]string `json:"fit_analysis"`
	ColorHarmony string            `json:"color_harmony"`
	Suggestions  []string          `json:"suggestions"`
}

// RecommendationOutput is the response shape of POST /recommend.
type RecommendationOutput struct {
	Success           bool                     `json:"success"`
	UserProfile       map[string]interface{}   `json:"user_profile"`
	RecommendedStyles []map[string]interface{} `json:"recommended_styles"`
	ColorPalette      []string                 `json:"color_palette"`
	BodyTypeAnalysis  string                   `json:"body_type_analysis"`
}

func NewClient(baseURL string, timeout time.Duration, retry RetryPolicy, logger *zap.Logger) *Client {
	if retry.ShouldRetry == nil {
		retry.ShouldRetry = IsTransient
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retry:  retry,
		logger: logger,
	}
}

// TryOn generates an outfit visualization from a user photo and a garment photo.
func (c *Client) TryOn(ctx context.Context, userImage, clothingImage Image) (*TryOnOutput, error) {
	c.logger.Info("calling ai try-on service")

	var out TryOnOutput
	err := c.postMultipart(ctx, "/tryon", []filePart{
		{field: "user_image", image: userImage},
		{field: "clothing_image", image: clothingImage},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("try-on call failed: %w", err)
	}

	c.logger.Info("try-on service call successful", zap.String("model", out.ModelUsed))
	return &out, nil
}

// Feedback critiques a generated try-on image against its source images.
func (c *Client) Feedback(ctx context.Context, userImage, clothingImage, generatedImage Image) (*FeedbackOutput, error) {
	c.logger.Info("calling ai feedback service")

	var out FeedbackOutput
	err := c.postMultipart(ctx, "/feedback", []filePart{
		{field: "user_image", image: userImage},
		{field: "clothing_image", image: clothingImage},
		{field: "generated_image", image: generatedImage},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("feedback call failed: %w", err)
	}

	c.logger.Info("feedback service call successful")
	return &out, nil
}

// Recommend derives a style profile and personalized suggestions from a user photo.
func (c *Client) Recommend(ctx context.Context, userImage Image) (*RecommendationOutput, error) {
	c.logger.Info("calling ai recommendation service")

	var out RecommendationOutput
	err := c.postMultipart(ctx, "/recommend", []filePart{
		{field: "user_image", image: userImage},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("recommendation call failed: %w", err)
	}

	c.logger.Info("recommendation service call successful")
	return &out, nil
}

// HealthCheck probes GET /health with a short timeout. It is a liveness
// probe, not a critical-path call: any failure is reported as false rather
// than propagated, and nothing is retried.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("ai service health check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("ai service health check failed", zap.Error(err))
		return false
	}

	return strings.Contains(string(body), "healthy")
}

type filePart struct {
	field string
	image Image
}

func (c *Client) postMultipart(ctx context.Context, path string, parts []filePart, out interface{}) error {
	return c.retry.Do(ctx, c.logger, path, func() error {
		body, contentType, err := encodeMultipart(parts)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		}

		if err := json.Unmarshal(respBody, out); err != nil {
			return &MalformedResponseError{Err: err}
		}

		return nil
	})
}

func encodeMultipart(parts []filePart) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, part := range parts {
		filename := part.image.Filename
		if filename == "" {
			filename = part.field + ".jpg"
		}
		contentType := part.image.ContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, part.field, filename))
		header.Set("Content-Type", contentType)

		fw, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(part.image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}
