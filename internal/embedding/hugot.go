// Coursematch - Hybrid Course Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursematch

package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"

	"github.com/tomtom215/coursematch/internal/logging"
	"github.com/tomtom215/coursematch/internal/metrics"
)

// HugotConfig configures a HugotEmbedder.
type HugotConfig struct {
	// Model is a Hugging Face repository, e.g. sentence-transformers/all-MiniLM-L12-v2.
	Model string
	// ModelDir caches downloaded models.
	ModelDir string
	// OnnxFile is the ONNX file inside the repository.
	OnnxFile   string
	Dimensions int
	BatchSize  int
}

// HugotEmbedder runs a sentence-transformers ONNX model in-process with the
// pure Go hugot backend.
type HugotEmbedder struct {
	mu        sync.Mutex
	session   *hugot.Session
	run       func([]string) ([][]float32, error)
	model     string
	dims      int
	batchSize int
}

// NewHugotEmbedder downloads the model if needed and starts a pipeline.
func NewHugotEmbedder(cfg HugotConfig) (*HugotEmbedder, error) {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}

	modelPath, err := PrepareModel(cfg.Model, cfg.ModelDir, cfg.OnnxFile)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("create hugot session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "course-embedder",
	})
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("create embedding pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("create embedding pipeline: %w", err)
	}

	return &HugotEmbedder{
		session: session,
		run: func(texts []string) ([][]float32, error) {
			result, err := pipeline.RunPipeline(texts)
			if err != nil {
				return nil, err
			}
			return result.Embeddings, nil
		},
		model:     cfg.Model,
		dims:      cfg.Dimensions,
		batchSize: cfg.BatchSize,
	}, nil
}

// PrepareModel returns the local directory of a Hugging Face model under
// dir, downloading it once. onnxFile selects the ONNX file inside the
// repository when it ships more than one.
func PrepareModel(model, dir, onnxFile string) (string, error) {
	modelPath := filepath.Join(dir, strings.ReplaceAll(model, "/", "_"))
	if _, err := os.Stat(modelPath); err == nil {
		return modelPath, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat model directory: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory: %w", err)
	}
	logger := logging.WithComponent("hugot")
	logger.Info().Str("model", model).Str("dir", dir).Msg("Downloading model")

	opts := hugot.NewDownloadOptions()
	if onnxFile != "" {
		opts.OnnxFilePath = onnxFile
	}
	downloaded, err := hugot.DownloadModel(model, dir, opts)
	if err != nil {
		return "", fmt.Errorf("download model %s: %w", model, err)
	}
	return downloaded, nil
}

// Embed implements Embedder. Inference is serialized; batches run in order.
func (h *HugotEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += h.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+h.batchSize, len(texts))

		began := time.Now()
		h.mu.Lock()
		vecs, err := h.run(texts[start:end])
		h.mu.Unlock()
		metrics.RecordOracleCall("embedding", "hugot", time.Since(began), err)
		if err != nil {
			return nil, fmt.Errorf("run embedding pipeline: %w", err)
		}
		if err := checkVectors(vecs, end-start, h.dims); err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// Dimensions implements Embedder.
func (h *HugotEmbedder) Dimensions() int { return h.dims }

// Model implements Embedder.
func (h *HugotEmbedder) Model() string { return h.model }

// Close destroys the hugot session.
func (h *HugotEmbedder) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == nil {
		return nil
	}
	err := h.session.Destroy()
	h.session = nil
	return err
}
