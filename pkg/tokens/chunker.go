package tokens

// Chunk is an ordered group of items whose combined token count stays under
// a configured ceiling.
type Chunk struct {
	Indices []int
	Tokens  int
}

// Chunker splits ordered work items into token-budgeted chunks.
type Chunker struct {
	counter   *Counter
	maxTokens int
}

// NewChunker creates a chunker with the given per-chunk token ceiling.
// counter may be nil, in which case the rough estimate is used.
func NewChunker(counter *Counter, maxTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = 180000
	}
	return &Chunker{counter: counter, maxTokens: maxTokens}
}

// MaxTokens returns the per-chunk ceiling.
func (c *Chunker) MaxTokens() int {
	return c.maxTokens
}

// CountText counts tokens in text, falling back to the estimate when no
// counter is configured.
func (c *Chunker) CountText(text string) int {
	if c.counter == nil {
		return Estimate(text)
	}
	return c.counter.Count(text)
}

// Split groups the texts, in order, into chunks whose totals stay under the
// ceiling. An item that alone exceeds the ceiling gets its own chunk so the
// caller can decide how to handle it; order is always preserved.
func (c *Chunker) Split(texts []string) []Chunk {
	chunks := []Chunk{}
	current := Chunk{}

	for i, text := range texts {
		n := c.CountText(text)

		if len(current.Indices) > 0 && current.Tokens+n > c.maxTokens {
			chunks = append(chunks, current)
			current = Chunk{}
		}

		current.Indices = append(current.Indices, i)
		current.Tokens += n
	}

	if len(current.Indices) > 0 {
		chunks = append(chunks, current)
	}

	return chunks
}

// Oversized reports whether a single text exceeds the per-chunk ceiling.
func (c *Chunker) Oversized(text string) bool {
	return c.CountText(text) > c.maxTokens
}
