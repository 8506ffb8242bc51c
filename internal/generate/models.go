package generate

// Message is one turn of the conversation sent to the model.
type Message struct {
	Role    string
	Content string
}

type Options struct {
	Temperature float64
	MaxTokens   int
}

// Source is a web reference the model consulted when grounding was enabled.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Result is a completed generation. Sources is only populated for grounded
// calls and may be empty even then.
type Result struct {
	Content string
	Sources []Source
}
