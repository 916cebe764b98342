//go:build onnx

// Package onnx provides a local embedder backed by ONNX Runtime, intended
// for sentence-transformer models such as all-MiniLM-L6-v2. Everything runs
// in-process; no network calls are made.
package onnx

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

const maxSequenceLength = 128

// Config configures the ONNX embedder.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string

	// TokenizerPath is the path to the tokenizer.json file.
	TokenizerPath string

	// LibraryPath is the path to libonnxruntime.so. Falls back to the
	// ONNXRUNTIME_LIB environment variable when empty.
	LibraryPath string

	// Dimensions is the embedding vector size (default: 384 for all-MiniLM-L6-v2).
	Dimensions int
}

// Embedder generates embeddings using ONNX Runtime.
type Embedder struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  *wordPieceTokenizer
	dimensions int
}

// New creates a new ONNX embedder.
func New(cfg Config) (*Embedder, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("ModelPath is required")
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 384
	}
	if cfg.LibraryPath == "" {
		cfg.LibraryPath = os.Getenv("ONNXRUNTIME_LIB")
	}
	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	tokenizer, err := loadTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	inputNames := []string{"input_ids", "attention_mask", "token_type_ids"}
	outputNames := []string{"last_hidden_state"}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, inputNames, outputNames, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	log.Printf("[ONNX] Session ready: model=%s dims=%d", cfg.ModelPath, cfg.Dimensions)
	return &Embedder{
		session:    session,
		tokenizer:  tokenizer,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed converts text to an embedding vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := e.tokenizer.tokenize(text)

	inputIDs := make([]int64, maxSequenceLength)
	attentionMask := make([]int64, maxSequenceLength)
	tokenTypeIDs := make([]int64, maxSequenceLength)

	inputIDs[0] = int64(e.tokenizer.clsToken)
	attentionMask[0] = 1

	tokenLen := len(tokens)
	if tokenLen > maxSequenceLength-2 { // room for [CLS] and [SEP]
		tokenLen = maxSequenceLength - 2
	}
	for i := 0; i < tokenLen; i++ {
		inputIDs[i+1] = tokens[i]
		attentionMask[i+1] = 1
	}
	inputIDs[tokenLen+1] = int64(e.tokenizer.sepToken)
	attentionMask[tokenLen+1] = 1

	shape := ort.NewShape(1, int64(maxSequenceLength))
	inputIDsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	defer inputIDsTensor.Destroy()

	attentionMaskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	defer attentionMaskTensor.Destroy()

	tokenTypeIDsTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	defer tokenTypeIDsTensor.Destroy()

	inputs := []ort.Value{inputIDsTensor, attentionMaskTensor, tokenTypeIDsTensor}
	outputs := []ort.Value{nil} // allocated by Run

	if err := e.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("ONNX inference failed: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	if len(outputs) == 0 || outputs[0] == nil {
		return nil, fmt.Errorf("no output tensors returned")
	}
	outputTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type")
	}

	embedding, err := e.pool(outputTensor, attentionMask)
	if err != nil {
		return nil, err
	}
	return normalize(embedding), nil
}

// pool reduces the model output to a single vector: passthrough for an
// already pooled [1, dims] output, mean pooling over attended tokens for a
// [1, seq, dims] hidden state.
func (e *Embedder) pool(t *ort.Tensor[float32], attentionMask []int64) ([]float32, error) {
	data := t.GetData()
	shape := t.GetShape()

	switch len(shape) {
	case 2:
		if len(data) < e.dimensions {
			return nil, fmt.Errorf("output dimension mismatch: got %d, expected %d", len(data), e.dimensions)
		}
		embedding := make([]float32, e.dimensions)
		copy(embedding, data[:e.dimensions])
		return embedding, nil

	case 3:
		batch, seqLen, hidden := shape[0], shape[1], shape[2]
		if batch != 1 {
			return nil, fmt.Errorf("expected batch size 1, got %d", batch)
		}
		if hidden != int64(e.dimensions) {
			return nil, fmt.Errorf("hidden size mismatch: got %d, expected %d", hidden, e.dimensions)
		}

		embedding := make([]float32, e.dimensions)
		attended := float32(0)
		for i := 0; i < int(seqLen); i++ {
			if attentionMask[i] == 0 {
				continue
			}
			attended++
			offset := i * int(hidden)
			for j := 0; j < int(hidden); j++ {
				embedding[j] += data[offset+j]
			}
		}
		if attended == 0 {
			return embedding, nil
		}
		for j := range embedding {
			embedding[j] /= attended
		}
		return embedding, nil

	default:
		return nil, fmt.Errorf("unexpected output shape: %v", shape)
	}
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close releases ONNX resources.
func (e *Embedder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}

// normalize converts embedding to unit vector.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}
	return normalized
}

// wordPieceTokenizer handles BERT-style WordPiece tokenization.
type wordPieceTokenizer struct {
	vocab    map[string]int
	clsToken int
	sepToken int
	unkToken int
}

// loadTokenizer reads the vocab out of a HuggingFace tokenizer.json.
func loadTokenizer(path string) (*wordPieceTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	return &wordPieceTokenizer{
		vocab:    file.Model.Vocab,
		clsToken: 101, // [CLS]
		sepToken: 102, // [SEP]
		unkToken: 100, // [UNK]
	}, nil
}

// tokenize converts text to token IDs.
func (t *wordPieceTokenizer) tokenize(text string) []int64 {
	words := strings.Fields(strings.ToLower(text))

	var tokens []int64
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'")
		if word == "" {
			continue
		}

		if id, ok := t.vocab[word]; ok {
			tokens = append(tokens, int64(id))
			continue
		}
		for _, sub := range t.split(word) {
			if id, ok := t.vocab[sub]; ok {
				tokens = append(tokens, int64(id))
			} else {
				tokens = append(tokens, int64(t.unkToken))
			}
		}
	}
	return tokens
}

// split performs greedy longest-prefix WordPiece splitting.
func (t *wordPieceTokenizer) split(word string) []string {
	var subwords []string
	start := 0

	for start < len(word) {
		end := len(word)
		found := false

		for end > start {
			sub := word[start:end]
			if start > 0 {
				sub = "##" + sub
			}
			if _, ok := t.vocab[sub]; ok {
				subwords = append(subwords, sub)
				start = end
				found = true
				break
			}
			end--
		}

		if !found {
			subwords = append(subwords, "[UNK]")
			start++
		}
	}
	return subwords
}
