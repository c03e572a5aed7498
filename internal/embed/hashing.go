package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashingProvider is a local fallback embedder: tokens are hashed into a
// fixed number of buckets and weighted by log-scaled term frequency, then
// L2-normalized. Unlike a fitted TF-IDF vocabulary, the hashing scheme is
// corpus-independent, so vectors stay comparable as the graph grows — a
// requirement for incremental ingestion.
type HashingProvider struct {
	dims int
}

// NewHashingProvider creates a hashing embedder with the given dimension.
func NewHashingProvider(dims int) *HashingProvider {
	if dims <= 0 {
		dims = 512
	}
	return &HashingProvider{dims: dims}
}

func (h *HashingProvider) Model() string   { return "hashing" }
func (h *HashingProvider) Dimensions() int { return h.dims }

// Embed generates a normalized hashed bag-of-words vector for the text.
func (h *HashingProvider) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, h.dims)
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return vec, nil
	}

	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	for term, count := range tf {
		hash := fnv.New32a()
		hash.Write([]byte(term))
		bucket := int(hash.Sum32() % uint32(h.dims))
		vec[bucket] += 1 + math.Log(float64(count))
	}

	normalize(vec)
	return vec, nil
}

// tokenize splits text into lowercase tokens, stripping punctuation.
func tokenize(text string) []string {
	text = strings.ToLower(text)
	var tokens []string
	var current strings.Builder
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 1 { // skip single-char tokens
				tokens = append(tokens, current.String())
			}
			current.Reset()
		}
	}
	if current.Len() > 1 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// normalize performs in-place L2 normalization.
func normalize(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}
