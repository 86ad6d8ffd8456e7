package services

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
)

const mockEmbeddingDims = 64

// MockEmbedder is a deterministic Embedder for testing. Fixture
// vectors can be registered per text; anything else falls back to a
// bag-of-words hash embedding, so texts sharing vocabulary score high
// cosine similarity and unrelated texts score low.
type MockEmbedder struct {
	EncodeFunc func(ctx context.Context, text string) ([]float64, error)

	fixtures    map[string][]float64
	EncodeCalls []string

	mu sync.Mutex
}

var _ Embedder = (*MockEmbedder)(nil)

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		fixtures:    make(map[string][]float64),
		EncodeCalls: make([]string, 0),
	}
}

// SetFixture registers an exact vector for a text.
func (m *MockEmbedder) SetFixture(text string, vector []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixtures[text] = vector
}

// Encode returns the fixture for the text if registered, else a
// deterministic bag-of-words vector.
func (m *MockEmbedder) Encode(ctx context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EncodeCalls = append(m.EncodeCalls, text)

	if m.EncodeFunc != nil {
		return m.EncodeFunc(ctx, text)
	}
	if v, ok := m.fixtures[text]; ok {
		return v, nil
	}
	return BagOfWordsVector(text), nil
}

// CallCount returns how many Encode calls were made, thread-safe.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.EncodeCalls)
}

// BagOfWordsVector hashes each word into a fixed-size vector and
// normalizes the result. Identical input always yields the identical
// vector.
func BagOfWordsVector(text string) []float64 {
	v := make([]float64, mockEmbeddingDims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"()")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		v[h.Sum32()%mockEmbeddingDims]++
	}

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range v {
			v[i] /= norm
		}
	}
	return v
}
