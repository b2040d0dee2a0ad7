package embed

import (
	"context"
	"fmt"

	"github.com/yungbote/gapmap-backend/internal/clients/openai"
	"github.com/yungbote/gapmap-backend/internal/clients/redis"
	"github.com/yungbote/gapmap-backend/internal/pkg/kgerr"
	"github.com/yungbote/gapmap-backend/internal/pkg/logger"
)

// chunkSize is the per-request input ceiling for the embeddings endpoint.
const chunkSize = 100

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order. A failed
	// chunk fails the whole batch; no partial results are returned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type embedder struct {
	log   *logger.Logger
	ai    openai.Client
	cache redis.EmbedCache // optional, may be nil
}

func NewEmbedder(log *logger.Logger, ai openai.Client, cache redis.EmbedCache) Embedder {
	return &embedder{
		log:   log.With("service", "Embedder"),
		ai:    ai,
		cache: cache,
	}
}

func (e *embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.cache != nil {
		if vec, ok := e.cache.Get(ctx, text); ok {
			return vec, nil
		}
	}
	vecs, err := e.ai.Embed(ctx, []string{text})
	if err != nil {
		return nil, &kgerr.EmbeddingError{Chunk: -1, Err: err}
	}
	if len(vecs) != 1 {
		return nil, &kgerr.EmbeddingError{Chunk: -1, Err: errVectorCountMismatch(1, len(vecs))}
	}
	if e.cache != nil {
		e.cache.Set(ctx, text, vecs[0])
	}
	return vecs[0], nil
}

func (e *embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, len(texts))

	// Cache pass first; only misses go to the provider.
	missIdx := make([]int, 0, len(texts))
	if e.cache != nil {
		for i, t := range texts {
			if vec, ok := e.cache.Get(ctx, t); ok {
				out[i] = vec
				continue
			}
			missIdx = append(missIdx, i)
		}
	} else {
		for i := range texts {
			missIdx = append(missIdx, i)
		}
	}

	for chunk := 0; chunk*chunkSize < len(missIdx); chunk++ {
		start := chunk * chunkSize
		end := start + chunkSize
		if end > len(missIdx) {
			end = len(missIdx)
		}
		idx := missIdx[start:end]

		inputs := make([]string, len(idx))
		for j, i := range idx {
			inputs[j] = texts[i]
		}

		vecs, err := e.ai.Embed(ctx, inputs)
		if err != nil {
			return nil, &kgerr.EmbeddingError{Chunk: chunk, Err: err}
		}
		if len(vecs) != len(inputs) {
			return nil, &kgerr.EmbeddingError{Chunk: chunk, Err: errVectorCountMismatch(len(inputs), len(vecs))}
		}

		for j, i := range idx {
			out[i] = vecs[j]
			if e.cache != nil {
				e.cache.Set(ctx, texts[i], vecs[j])
			}
		}
	}

	return out, nil
}

func errVectorCountMismatch(want, got int) error {
	return fmt.Errorf("embedding vector count mismatch: want %d got %d", want, got)
}
