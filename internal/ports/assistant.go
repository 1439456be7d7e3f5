package ports

import "context"

// ChatRequest is the payload relayed to the assistant workflow for one turn
type ChatRequest struct {
	StoreDomain string `json:"store"`
	CustomerID  string `json:"customerId"`
	Message     string `json:"message"`
	IsUserInfo  bool   `json:"isUserInfo,omitempty"`
}

// ChatReply is what the assistant workflow returns
type ChatReply struct {
	Reply            string `json:"reply"`
	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens"`
}

// AnalysisRequest asks the assistant workflow to analyze one conversation
type AnalysisRequest struct {
	StoreDomain    string   `json:"store"`
	ConversationID string   `json:"conversationId"`
	Transcript     []string `json:"transcript"`
}

// AnalysisReply is the assistant workflow's verdict for one conversation
type AnalysisReply struct {
	Sentiment string   `json:"sentiment"`
	Topics    []string `json:"topics"`
	Summary   string   `json:"summary"`
}

// AssistantClient relays work to the external automation workflows. The
// workflows are an opaque upstream: calls either succeed within their fixed
// timeout or fail, with no retries.
type AssistantClient interface {
	SendChat(ctx context.Context, req *ChatRequest) (*ChatReply, error)
	Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisReply, error)
	TriggerSync(ctx context.Context, shopDomain string) error
}
