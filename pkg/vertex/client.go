// Package vertex is a thin REST client for the Google model APIs the
// platform uses: Gemini text/vision generation, multimodal embeddings, and
// Speech-to-Text transcription.
package vertex

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kalaconnect/kalaconnect-backend/pkg/config"
	"github.com/kalaconnect/kalaconnect-backend/pkg/googleauth"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
)

const (
	scope          = "https://www.googleapis.com/auth/cloud-platform"
	speechEndpoint = "https://speech.googleapis.com/v1p1beta1/speech:recognize"
)

// ErrEmptyTranscript is returned when the speech API succeeds but hears
// nothing usable in the audio.
var ErrEmptyTranscript = errors.New("no transcribable speech in audio")

type Client struct {
	httpClient  *http.Client
	tokenSource *googleauth.TokenSource
	projectID   string
	region      string
	cfg         config.VertexConfig
}

func NewClient(gcp config.GCPConfig, cfg config.VertexConfig, logg *logger.Logger) (*Client, error) {
	if gcp.ProjectID == "" {
		return nil, errors.New("gcp project id is required")
	}
	if gcp.Region == "" {
		return nil, errors.New("gcp region is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	ts, err := googleauth.NewTokenSource(httpClient, gcp, scope)
	if err != nil {
		return nil, err
	}

	if logg != nil {
		logg.Info(context.Background(), "vertex client initialized")
	}

	return &Client{
		httpClient:  httpClient,
		tokenSource: ts,
		projectID:   gcp.ProjectID,
		region:      gcp.Region,
		cfg:         cfg,
	}, nil
}

// Ping verifies that credentials can mint a token.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("vertex client not initialized")
	}
	_, err := c.tokenSource.Token(ctx)
	return err
}

func (c *Client) modelURL(model, verb string) string {
	return fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:%s",
		c.region, c.projectID, c.region, model, verb,
	)
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
	FileData   *fileData   `json:"fileData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type fileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateText runs a single-turn text prompt through the configured Gemini
// model and returns the concatenated candidate text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []part{{Text: prompt}})
}

// AnalyzeImage prompts the model with inline image bytes.
func (c *Client) AnalyzeImage(ctx context.Context, prompt, mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("image data is required")
	}
	return c.generate(ctx, []part{
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}},
		{Text: prompt},
	})
}

// AnalyzeVideo prompts the model with a GCS-hosted video. Gemini reads the
// object directly, so only the URI crosses the wire.
func (c *Client) AnalyzeVideo(ctx context.Context, prompt, mimeType, gcsURI string) (string, error) {
	if gcsURI == "" {
		return "", errors.New("video uri is required")
	}
	return c.generate(ctx, []part{
		{FileData: &fileData{MimeType: mimeType, FileURI: gcsURI}},
		{Text: prompt},
	})
}

func (c *Client) generate(ctx context.Context, parts []part) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
	}
	if c.cfg.MaxOutputToken > 0 {
		reqBody.GenerationConfig = &generationConfig{MaxOutputTokens: c.cfg.MaxOutputToken}
	}

	var resp generateResponse
	if err := c.post(ctx, c.modelURL(c.cfg.TextModel, "generateContent"), reqBody, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("model returned no candidates")
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("model returned empty text")
	}
	return text, nil
}

// EmbedInput carries either text or inline image bytes for the multimodal
// embedding model.
type EmbedInput struct {
	Text      string
	ImageData []byte
}

type embedRequest struct {
	Instances []embedInstance `json:"instances"`
}

type embedInstance struct {
	Text  string      `json:"text,omitempty"`
	Image *embedImage `json:"image,omitempty"`
}

type embedImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
}

type embedResponse struct {
	Predictions []struct {
		TextEmbedding  []float64 `json:"textEmbedding"`
		ImageEmbedding []float64 `json:"imageEmbedding"`
	} `json:"predictions"`
}

// Embed returns an embedding vector for the given text or image input.
func (c *Client) Embed(ctx context.Context, input EmbedInput) ([]float64, error) {
	instance := embedInstance{Text: input.Text}
	if len(input.ImageData) > 0 {
		instance.Image = &embedImage{BytesBase64Encoded: base64.StdEncoding.EncodeToString(input.ImageData)}
	}
	if instance.Text == "" && instance.Image == nil {
		return nil, errors.New("embed input is empty")
	}

	var resp embedResponse
	if err := c.post(ctx, c.modelURL(c.cfg.EmbeddingModel, "predict"), embedRequest{Instances: []embedInstance{instance}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Predictions) == 0 {
		return nil, errors.New("embedding model returned no predictions")
	}

	pred := resp.Predictions[0]
	if len(pred.ImageEmbedding) > 0 && instance.Image != nil {
		return pred.ImageEmbedding, nil
	}
	if len(pred.TextEmbedding) > 0 {
		return pred.TextEmbedding, nil
	}
	return nil, errors.New("embedding model returned empty vector")
}

type imageGenRequest struct {
	Instances  []imageGenInstance `json:"instances"`
	Parameters imageGenParameters `json:"parameters"`
}

type imageGenInstance struct {
	Prompt string `json:"prompt"`
}

type imageGenParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type imageGenResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

// GenerateImage renders a single 1:1 image for the prompt and returns the
// raw bytes with their mime type.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, "", errors.New("prompt is required")
	}

	req := imageGenRequest{
		Instances:  []imageGenInstance{{Prompt: prompt}},
		Parameters: imageGenParameters{SampleCount: 1, AspectRatio: "1:1"},
	}

	var resp imageGenResponse
	if err := c.post(ctx, c.modelURL(c.cfg.ImageModel, "predict"), req, &resp); err != nil {
		return nil, "", err
	}
	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return nil, "", errors.New("image model returned no predictions")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, "", fmt.Errorf("decoding generated image: %w", err)
	}
	mimeType := resp.Predictions[0].MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return data, mimeType, nil
}

type recognizeRequest struct {
	Config recognizeConfig `json:"config"`
	Audio  recognizeAudio  `json:"audio"`
}

type recognizeConfig struct {
	Encoding                   string `json:"encoding,omitempty"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
}

type recognizeAudio struct {
	Content string `json:"content,omitempty"`
	URI     string `json:"uri,omitempty"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Transcribe runs short-audio recognition over inline bytes. languageCode
// defaults to en-US. Returns ErrEmptyTranscript when the API finds nothing.
func (c *Client) Transcribe(ctx context.Context, data []byte, mimeType, languageCode string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("audio data is required")
	}
	if languageCode == "" {
		languageCode = "en-US"
	}

	req := recognizeRequest{
		Config: recognizeConfig{
			Encoding:                   speechEncoding(mimeType),
			LanguageCode:               languageCode,
			EnableAutomaticPunctuation: true,
		},
		Audio: recognizeAudio{Content: base64.StdEncoding.EncodeToString(data)},
	}

	var resp recognizeResponse
	if err := c.post(ctx, speechEndpoint, req, &resp); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(strings.TrimSpace(result.Alternatives[0].Transcript))
	}
	transcript := strings.TrimSpace(sb.String())
	if transcript == "" {
		return "", ErrEmptyTranscript
	}
	return transcript, nil
}

func speechEncoding(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return "MP3"
	default:
		// WAV carries its encoding in the header.
		return ""
	}
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return fmt.Errorf("minting access token: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(b) > 0 {
			return fmt.Errorf("model api returned %s: %s", resp.Status, strings.TrimSpace(string(b)))
		}
		return fmt.Errorf("model api returned %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
