package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const huggingFaceInferenceURL = "https://router.huggingface.co/hf-inference/models/"

// huggingFaceOracle is the reference Embedding Oracle implementation,
// calling Hugging Face's Inference API for each batch of chunk text.
type huggingFaceOracle struct {
	config *Config
	client *http.Client
	apiKey string
}

// huggingFaceRequest is the request format the Inference API expects.
type huggingFaceRequest struct {
	Inputs  interface{}            `json:"inputs"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// newHuggingFaceOracle constructs the oracle from an already-defaulted
// config (see NewProvider).
func newHuggingFaceOracle(config *Config) (Provider, error) {
	apiKey, err := GetAPIKey(config.APIKeyEnv)
	if err != nil {
		return nil, err
	}

	// Strict connection limits: chunk-embedding batches are bursty and
	// short-lived, not a long-running connection pool worth keeping warm.
	transport := &http.Transport{
		MaxIdleConns:        1,
		MaxIdleConnsPerHost: 1,
		MaxConnsPerHost:     2,
		IdleConnTimeout:     30 * time.Second,
	}

	return &huggingFaceOracle{
		config: config,
		client: &http.Client{
			Timeout:   120 * time.Second, // cold starts on the Inference API can be slow
			Transport: transport,
		},
		apiKey: apiKey,
	}, nil
}

func (o *huggingFaceOracle) Name() string  { return "huggingface" }
func (o *huggingFaceOracle) Dimension() int { return o.config.Dimension }
func (o *huggingFaceOracle) Close() error  { return nil }

// Embed generates an embedding for a single chunk of text.
func (o *huggingFaceOracle) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for a batch of chunks, splitting
// into sub-batches of config.BatchSize to bound request size.
func (o *huggingFaceOracle) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	batchSize := o.config.BatchSize
	allEmbeddings := make([][]float32, len(texts))

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		embeddings, err := o.embedBatchInternal(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		for j, emb := range embeddings {
			allEmbeddings[i+j] = emb
		}
	}

	return allEmbeddings, nil
}

func (o *huggingFaceOracle) embedBatchInternal(ctx context.Context, texts []string) ([][]float32, error) {
	var input interface{}
	if len(texts) == 1 {
		input = texts[0]
	} else {
		input = texts
	}

	reqBody := huggingFaceRequest{
		Inputs:  input,
		Options: map[string]interface{}{"wait_for_model": true},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := huggingFaceInferenceURL + o.config.Model
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Hugging Face: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("hugging face API error: %s", errResp.Error)
		}
		return nil, fmt.Errorf("hugging face API error (status %d): %s", resp.StatusCode, string(body))
	}

	return parseEmbeddingResponse(body)
}

// parseEmbeddingResponse handles the Inference API's several possible
// response shapes: a flat vector, a batch of vectors, or token-level
// vectors that need mean pooling.
func parseEmbeddingResponse(body []byte) ([][]float32, error) {
	var batchResponse [][]float64
	if err := json.Unmarshal(body, &batchResponse); err == nil {
		embeddings := make([][]float32, len(batchResponse))
		for i, emb := range batchResponse {
			embeddings[i] = toFloat32(emb)
		}
		return embeddings, nil
	}

	var singleResponse []float64
	if err := json.Unmarshal(body, &singleResponse); err == nil {
		return [][]float32{toFloat32(singleResponse)}, nil
	}

	var nestedResponse [][][]float64
	if err := json.Unmarshal(body, &nestedResponse); err == nil {
		embeddings := make([][]float32, len(nestedResponse))
		for i, tokenEmbeddings := range nestedResponse {
			embeddings[i] = meanPool(tokenEmbeddings)
		}
		return embeddings, nil
	}

	var singleNested [][]float64
	if err := json.Unmarshal(body, &singleNested); err == nil {
		return [][]float32{meanPool(singleNested)}, nil
	}

	return nil, fmt.Errorf("failed to parse embedding response: unexpected format")
}

// meanPool averages token-level embeddings down to one vector per
// input, for models whose Inference API response is per-token.
func meanPool(tokenEmbeddings [][]float64) []float32 {
	if len(tokenEmbeddings) == 0 {
		return nil
	}

	dim := len(tokenEmbeddings[0])
	pooled := make([]float32, dim)
	for _, tokenEmb := range tokenEmbeddings {
		for i, v := range tokenEmb {
			if i < dim {
				pooled[i] += float32(v)
			}
		}
	}

	n := float32(len(tokenEmbeddings))
	for i := range pooled {
		pooled[i] /= n
	}
	return pooled
}

func toFloat32(input []float64) []float32 {
	output := make([]float32, len(input))
	for i, v := range input {
		output[i] = float32(v)
	}
	return output
}
