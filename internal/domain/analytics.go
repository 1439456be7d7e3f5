package domain

// DayCount is one bucket of a per-day aggregation
type DayCount struct {
	Day   string `json:"day" bson:"_id"` // YYYY-MM-DD
	Count int    `json:"count" bson:"count"`
}

// TokenTotals aggregates token spend for one store
type TokenTotals struct {
	PromptTokens     int `json:"prompt_tokens" bson:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens" bson:"completion_tokens"`
}

// StoreTokenTotals is the admin-facing per-store token spend rollup
type StoreTokenTotals struct {
	StoreID          string `json:"store_id" bson:"_id"`
	PromptTokens     int    `json:"prompt_tokens" bson:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens" bson:"completion_tokens"`
}

// AnalyticsOverview is the dashboard landing aggregation
type AnalyticsOverview struct {
	Conversations int          `json:"conversations"`
	Messages      int          `json:"messages"`
	OpenTickets   int          `json:"open_tickets"`
	TokenTotals   *TokenTotals `json:"token_totals"`
}
