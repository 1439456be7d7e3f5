package domain

import (
	"encoding/json"
	"time"
)

// Default appearance values applied whenever a store has no saved row or a
// field was left empty.
const (
	DefaultPrimaryColor   = "#4F46E5"
	DefaultBubbleShape    = "round"
	DefaultWidgetPosition = "bottom-right"
)

// DefaultConversationStarters is the fallback used when a store has no saved
// starters or the stored JSON cannot be parsed.
func DefaultConversationStarters() []string {
	return []string{
		"What can you help me with?",
		"Where is my order?",
		"What is your return policy?",
	}
}

// Appearance holds the per-store widget customization saved from the dashboard.
// ConversationStarters is persisted as raw JSON text; it is parsed defensively
// on read because historical rows contain hand-edited values.
type Appearance struct {
	ID                   string    `json:"id" bson:"_id"`
	StoreID              string    `json:"store_id" bson:"store_id"`
	PrimaryColor         string    `json:"primary_color" bson:"primary_color"`
	BubbleShape          string    `json:"bubble_shape" bson:"bubble_shape"`
	Position             string    `json:"position" bson:"position"`
	ShowLogo             bool      `json:"show_logo" bson:"show_logo"`
	ConversationStarters string    `json:"conversation_starters" bson:"conversation_starters"`
	UpdatedAt            time.Time `json:"updated_at" bson:"updated_at"`
}

// Starters parses the stored conversation starters, falling back to the
// defaults on empty or malformed JSON rather than propagating the error.
func (a *Appearance) Starters() []string {
	if a == nil || a.ConversationStarters == "" {
		return DefaultConversationStarters()
	}
	var starters []string
	if err := json.Unmarshal([]byte(a.ConversationStarters), &starters); err != nil || len(starters) == 0 {
		return DefaultConversationStarters()
	}
	return starters
}

// WidgetBootstrap is the flat public configuration returned to the embedded
// script on first load. Every field is populated with a normalized default
// when the store has no saved appearance.
type WidgetBootstrap struct {
	ShopDomain           string   `json:"shop_domain"`
	PrimaryColor         string   `json:"primary_color"`
	BubbleShape          string   `json:"bubble_shape"`
	Position             string   `json:"position"`
	ShowLogo             bool     `json:"show_logo"`
	ConversationStarters []string `json:"conversation_starters"`
}

// BootstrapFor flattens a store and its (possibly missing) appearance row
// into the public widget configuration.
func BootstrapFor(store *Store, appearance *Appearance) *WidgetBootstrap {
	b := &WidgetBootstrap{
		ShopDomain:           store.ShopDomain,
		PrimaryColor:         DefaultPrimaryColor,
		BubbleShape:          DefaultBubbleShape,
		Position:             DefaultWidgetPosition,
		ShowLogo:             true,
		ConversationStarters: DefaultConversationStarters(),
	}
	if appearance == nil {
		return b
	}
	if appearance.PrimaryColor != "" {
		b.PrimaryColor = appearance.PrimaryColor
	}
	if appearance.BubbleShape != "" {
		b.BubbleShape = appearance.BubbleShape
	}
	if appearance.Position != "" {
		b.Position = appearance.Position
	}
	b.ShowLogo = appearance.ShowLogo
	b.ConversationStarters = appearance.Starters()
	return b
}
