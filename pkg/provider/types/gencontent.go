package types

// GenerateContentRequest is the body sent to a Generative-Content-format
// upstream. It mirrors the wire JSON field-for-field rather than
// modelling parts as a Go sum type, since the upstream's own Part is a
// single struct with mutually-exclusive optional fields.
type GenerateContentRequest struct {
	Contents          []Content          `json:"contents"`
	SystemInstruction *Content           `json:"systemInstruction,omitempty"`
	Tools             []GenContentTool   `json:"tools,omitempty"`
	GenerationConfig  *GenerationConfig  `json:"generationConfig,omitempty"`
}

// Content is one turn of a Generative-Content conversation.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a single piece of Content. At most one of Text, InlineData,
// FunctionCall, or FunctionResponse is populated; a redacted-thinking
// part carries only Thought and ThoughtSignature.
type Part struct {
	Text             string            `json:"text,omitempty"`
	Thought          bool              `json:"thought,omitempty"`
	ThoughtSignature string            `json:"thoughtSignature,omitempty"`
	InlineData       *Blob             `json:"inlineData,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// Blob is inline binary content (images, files).
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// FunctionCall is a model-issued tool invocation in Generative-Content
// form; it has no call ID on the wire, so one is synthesized by the
// translator and threaded through the response side.
type FunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// FunctionResponse answers a prior FunctionCall by name.
type FunctionResponse struct {
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}

// GenContentTool wraps function declarations the way the upstream
// expects tools to be grouped.
type GenContentTool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

// FunctionDeclaration is a single callable's schema.
type FunctionDeclaration struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// ThinkingConfig requests extended-thinking output from the upstream.
type ThinkingConfig struct {
	IncludeThoughts bool `json:"includeThoughts"`
	ThinkingBudget  int  `json:"thinkingBudget,omitempty"`
}

// GenerationConfig controls sampling and output shape.
type GenerationConfig struct {
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"topP,omitempty"`
	TopK             *int            `json:"topK,omitempty"`
	CandidateCount   int             `json:"candidateCount,omitempty"`
	MaxOutputTokens  int             `json:"maxOutputTokens,omitempty"`
	StopSequences    []string        `json:"stopSequences,omitempty"`
	ThinkingConfig   *ThinkingConfig `json:"thinkingConfig,omitempty"`
}

// UsageMetadata reports token counts at either the response or candidate
// level; the richer of the two (by which fields are populated) wins.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Completeness scores how many of the three counters are non-zero, used
// to pick the more informative of two UsageMetadata samples.
func (u *UsageMetadata) Completeness() int {
	if u == nil {
		return 0
	}
	n := 0
	if u.PromptTokenCount > 0 {
		n++
	}
	if u.CandidatesTokenCount > 0 {
		n++
	}
	if u.TotalTokenCount > 0 {
		n++
	}
	return n
}

// StreamChunk is one decoded event from a Generative-Content SSE stream.
// The upstream wraps every chunk's payload under a "response" envelope
// (the Antigravity deployment shape); a bare top-level payload with no
// envelope is accepted too, for upstreams that skip the wrapper.
type StreamChunk struct {
	Response      *streamResponseBody `json:"response,omitempty"`
	Candidates    []Candidate         `json:"candidates,omitempty"`
	UsageMetadata *UsageMetadata      `json:"usageMetadata,omitempty"`
}

// streamResponseBody is the shape nested under StreamChunk.Response.
type streamResponseBody struct {
	Candidates    []Candidate    `json:"candidates,omitempty"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
}

// EffectiveCandidates returns the chunk's candidates, unwrapping the
// "response" envelope when present.
func (c *StreamChunk) EffectiveCandidates() []Candidate {
	if c.Response != nil {
		return c.Response.Candidates
	}
	return c.Candidates
}

// EffectiveUsage picks the more complete of the chunk's response-level
// and first-candidate-level usage metadata (whichever has more populated
// counters wins).
func (c *StreamChunk) EffectiveUsage() *UsageMetadata {
	responseUsage := c.UsageMetadata
	if c.Response != nil {
		responseUsage = c.Response.UsageMetadata
	}
	var candidateUsage *UsageMetadata
	if cands := c.EffectiveCandidates(); len(cands) > 0 {
		candidateUsage = cands[0].UsageMetadata
	}
	if candidateUsage.Completeness() > responseUsage.Completeness() {
		return candidateUsage
	}
	return responseUsage
}

// Candidate carries one candidate's incremental content and, on the
// terminal chunk, its finish reason.
type Candidate struct {
	Content       Content        `json:"content"`
	FinishReason  string         `json:"finishReason,omitempty"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
}
