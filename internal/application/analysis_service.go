package application

import (
	"context"
	"fmt"
	"time"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AnalysisService runs the batch conversation analysis. Per-item failures do
// not abort the batch; the caller gets a success/failure tally.
type AnalysisService struct {
	conversations ports.ConversationRepository
	analyses      ports.AnalysisRepository
	stores        ports.StoreRepository
	assistant     ports.AssistantClient
	logger        zerolog.Logger
	now           func() time.Time
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	conversations ports.ConversationRepository,
	analyses ports.AnalysisRepository,
	stores ports.StoreRepository,
	assistant ports.AssistantClient,
	logger zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		conversations: conversations,
		analyses:      analyses,
		stores:        stores,
		assistant:     assistant,
		logger:        logger,
		now:           time.Now,
	}
}

// BatchResult is the tally returned to the dashboard
type BatchResult struct {
	Analyzed int `json:"analyzed"`
	Failed   int `json:"failed"`
}

// RunBatch analyzes every unanalyzed conversation of a store.
func (s *AnalysisService) RunBatch(ctx context.Context, userID, storeID string) (*BatchResult, error) {
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up store: %w", err)
	}
	if store == nil {
		return nil, ErrNotFound
	}
	if store.UserID != userID {
		return nil, ErrForbidden
	}

	pending, err := s.conversations.ListUnanalyzed(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	result := &BatchResult{}
	for _, conversation := range pending {
		if err := s.analyzeOne(ctx, store, conversation); err != nil {
			s.logger.Warn().Err(err).Str("conversation", conversation.ID).Msg("Conversation analysis failed")
			result.Failed++
			continue
		}
		result.Analyzed++
	}

	s.logger.Info().
		Str("store", storeID).
		Int("analyzed", result.Analyzed).
		Int("failed", result.Failed).
		Msg("Batch analysis completed")

	return result, nil
}

// ListAnalyses returns the store's saved analysis results, newest first.
func (s *AnalysisService) ListAnalyses(ctx context.Context, userID, storeID string) ([]*domain.ConversationAnalysis, error) {
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up store: %w", err)
	}
	if store == nil {
		return nil, ErrNotFound
	}
	if store.UserID != userID {
		return nil, ErrForbidden
	}
	return s.analyses.ListByStore(ctx, storeID)
}

func (s *AnalysisService) analyzeOne(ctx context.Context, store *domain.Store, conversation *domain.Conversation) error {
	messages, err := s.conversations.ListMessages(ctx, conversation.ID)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}

	transcript := make([]string, 0, len(messages))
	for _, msg := range messages {
		transcript = append(transcript, fmt.Sprintf("%s: %s", msg.Sender, msg.Body))
	}

	reply, err := s.assistant.Analyze(ctx, &ports.AnalysisRequest{
		StoreDomain:    store.ShopDomain,
		ConversationID: conversation.ID,
		Transcript:     transcript,
	})
	if err != nil {
		return err
	}

	analysis := &domain.ConversationAnalysis{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		StoreID:        store.ID,
		Sentiment:      reply.Sentiment,
		Topics:         reply.Topics,
		Summary:        reply.Summary,
		CreatedAt:      s.now(),
	}
	if err := s.analyses.Save(ctx, analysis); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	return s.conversations.MarkAnalyzed(ctx, conversation.ID)
}
