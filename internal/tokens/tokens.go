// Package tokens measures prompt cost with the tokenization scheme the
// target model family expects.
package tokens

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Counter converts text into a token cost. Counts are deterministic for
// a given model family and involve no I/O or shared state.
type Counter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

var (
	mu       sync.Mutex
	counters = map[string]Counter{}
)

// ForModel returns the Counter for a model family. An unknown model is
// an error, never a zero-cost counter: a silent zero would let the
// truncation budget admit arbitrarily large prompts.
func ForModel(model string) (Counter, error) {
	mu.Lock()
	defer mu.Unlock()

	if c, ok := counters[model]; ok {
		return c, nil
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("no token encoding for model %q: %w", model, err)
	}

	c := &tiktokenCounter{enc: enc}
	counters[model] = c
	return c, nil
}
