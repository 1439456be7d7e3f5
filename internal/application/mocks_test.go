package application_test

import (
	"context"
	"net/url"
	"time"

	"quell-core-api/internal/domain"
	"quell-core-api/internal/ports"

	shopify "github.com/bold-commerce/go-shopify/v4"
)

// memStoreRepo is an in-memory StoreRepository keyed by shop domain, matching
// the unique index the Mongo implementation relies on.
type memStoreRepo struct {
	byDomain map[string]*domain.Store
	err      error
}

func newMemStoreRepo(stores ...*domain.Store) *memStoreRepo {
	repo := &memStoreRepo{byDomain: make(map[string]*domain.Store)}
	for _, s := range stores {
		repo.byDomain[s.ShopDomain] = s
	}
	return repo
}

func (r *memStoreRepo) Upsert(ctx context.Context, store *domain.Store) error {
	if r.err != nil {
		return r.err
	}
	copied := *store
	r.byDomain[store.ShopDomain] = &copied
	return nil
}

func (r *memStoreRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, s := range r.byDomain {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *memStoreRepo) GetByDomain(ctx context.Context, shopDomain string) (*domain.Store, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.byDomain[shopDomain], nil
}

func (r *memStoreRepo) GetByWidgetToken(ctx context.Context, token string) (*domain.Store, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, s := range r.byDomain {
		if s.WidgetToken == token {
			return s, nil
		}
	}
	return nil, nil
}

func (r *memStoreRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Store, error) {
	var out []*domain.Store
	for _, s := range r.byDomain {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memStoreRepo) List(ctx context.Context) ([]*domain.Store, error) {
	var out []*domain.Store
	for _, s := range r.byDomain {
		out = append(out, s)
	}
	return out, nil
}

func (r *memStoreRepo) UpdateStatus(ctx context.Context, id string, status domain.StoreStatus) error {
	for _, s := range r.byDomain {
		if s.ID == id {
			s.Status = status
		}
	}
	return nil
}

func (r *memStoreRepo) UpdateWidgetToken(ctx context.Context, id string, token string) error {
	for _, s := range r.byDomain {
		if s.ID == id {
			s.WidgetToken = token
		}
	}
	return nil
}

func (r *memStoreRepo) UpdateSync(ctx context.Context, id string, syncedAt time.Time, productCount int) error {
	for _, s := range r.byDomain {
		if s.ID == id {
			at := syncedAt
			s.LastSyncAt = &at
			s.ProductCount = productCount
		}
	}
	return nil
}

var _ ports.StoreRepository = (*memStoreRepo)(nil)

type memPendingRepo struct {
	byToken map[string]*domain.PendingStore
}

func newMemPendingRepo(rows ...*domain.PendingStore) *memPendingRepo {
	repo := &memPendingRepo{byToken: make(map[string]*domain.PendingStore)}
	for _, p := range rows {
		repo.byToken[p.TempToken] = p
	}
	return repo
}

func (r *memPendingRepo) Create(ctx context.Context, pending *domain.PendingStore) error {
	r.byToken[pending.TempToken] = pending
	return nil
}

func (r *memPendingRepo) GetByToken(ctx context.Context, tempToken string) (*domain.PendingStore, error) {
	return r.byToken[tempToken], nil
}

func (r *memPendingRepo) Delete(ctx context.Context, tempToken string) error {
	delete(r.byToken, tempToken)
	return nil
}

var _ ports.PendingStoreRepository = (*memPendingRepo)(nil)

type memUserRepo struct {
	byEmail map[string]*domain.User
}

func newMemUserRepo(users ...*domain.User) *memUserRepo {
	repo := &memUserRepo{byEmail: make(map[string]*domain.User)}
	for _, u := range users {
		repo.byEmail[u.Email] = u
	}
	return repo
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.byEmail[user.Email] = user
	return nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.byEmail[email], nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

var _ ports.UserRepository = (*memUserRepo)(nil)

type memAppearanceRepo struct {
	byStore map[string]*domain.Appearance
}

func newMemAppearanceRepo(rows ...*domain.Appearance) *memAppearanceRepo {
	repo := &memAppearanceRepo{byStore: make(map[string]*domain.Appearance)}
	for _, a := range rows {
		repo.byStore[a.StoreID] = a
	}
	return repo
}

func (r *memAppearanceRepo) Get(ctx context.Context, storeID string) (*domain.Appearance, error) {
	return r.byStore[storeID], nil
}

func (r *memAppearanceRepo) Upsert(ctx context.Context, appearance *domain.Appearance) error {
	r.byStore[appearance.StoreID] = appearance
	return nil
}

var _ ports.AppearanceRepository = (*memAppearanceRepo)(nil)

// memBootstrapCache records hits and invalidations for assertions.
type memBootstrapCache struct {
	entries     map[string]*domain.WidgetBootstrap
	invalidated []string
}

func newMemBootstrapCache() *memBootstrapCache {
	return &memBootstrapCache{entries: make(map[string]*domain.WidgetBootstrap)}
}

func (c *memBootstrapCache) Get(ctx context.Context, widgetToken string) (*domain.WidgetBootstrap, error) {
	return c.entries[widgetToken], nil
}

func (c *memBootstrapCache) Set(ctx context.Context, widgetToken string, bootstrap *domain.WidgetBootstrap) error {
	c.entries[widgetToken] = bootstrap
	return nil
}

func (c *memBootstrapCache) Invalidate(ctx context.Context, widgetToken string) error {
	c.invalidated = append(c.invalidated, widgetToken)
	delete(c.entries, widgetToken)
	return nil
}

var _ ports.BootstrapCache = (*memBootstrapCache)(nil)

// stubAssistant lets each test plug in the upstream behavior it needs.
type stubAssistant struct {
	chatFn    func(ctx context.Context, req *ports.ChatRequest) (*ports.ChatReply, error)
	analyzeFn func(ctx context.Context, req *ports.AnalysisRequest) (*ports.AnalysisReply, error)
	syncFn    func(ctx context.Context, shopDomain string) error
}

func (s *stubAssistant) SendChat(ctx context.Context, req *ports.ChatRequest) (*ports.ChatReply, error) {
	return s.chatFn(ctx, req)
}

func (s *stubAssistant) Analyze(ctx context.Context, req *ports.AnalysisRequest) (*ports.AnalysisReply, error) {
	return s.analyzeFn(ctx, req)
}

func (s *stubAssistant) TriggerSync(ctx context.Context, shopDomain string) error {
	if s.syncFn == nil {
		return nil
	}
	return s.syncFn(ctx, shopDomain)
}

var _ ports.AssistantClient = (*stubAssistant)(nil)

type publishedEvent struct {
	StoreID string
	Event   string
	Payload interface{}
}

// recordingRealtime captures published events for assertions.
type recordingRealtime struct {
	events []publishedEvent
}

func (r *recordingRealtime) Publish(storeID string, event string, payload interface{}) {
	r.events = append(r.events, publishedEvent{StoreID: storeID, Event: event, Payload: payload})
}

var _ ports.RealtimePublisher = (*recordingRealtime)(nil)

// memConversationRepo holds conversations and messages in memory.
type memConversationRepo struct {
	conversations map[string]*domain.Conversation
	messages      map[string][]*domain.Message
	nextID        int
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{
		conversations: make(map[string]*domain.Conversation),
		messages:      make(map[string][]*domain.Message),
	}
}

func (r *memConversationRepo) EnsureConversation(ctx context.Context, storeID, customerID string) (*domain.Conversation, error) {
	key := storeID + "/" + customerID
	if c, ok := r.conversations[key]; ok {
		return c, nil
	}
	r.nextID++
	c := &domain.Conversation{
		ID:         "conv-" + customerID,
		StoreID:    storeID,
		CustomerID: customerID,
		CreatedAt:  time.Now(),
	}
	r.conversations[key] = c
	return c, nil
}

func (r *memConversationRepo) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	for _, c := range r.conversations {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memConversationRepo) ListConversations(ctx context.Context, storeID string) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	for _, c := range r.conversations {
		if c.StoreID == storeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memConversationRepo) ListUnanalyzed(ctx context.Context, storeID string) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	for _, c := range r.conversations {
		if c.StoreID == storeID && !c.Analyzed {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memConversationRepo) MarkAnalyzed(ctx context.Context, conversationID string) error {
	for _, c := range r.conversations {
		if c.ID == conversationID {
			c.Analyzed = true
		}
	}
	return nil
}

func (r *memConversationRepo) AppendMessage(ctx context.Context, msg *domain.Message) error {
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], msg)
	return nil
}

func (r *memConversationRepo) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	return r.messages[conversationID], nil
}

func (r *memConversationRepo) MarkRead(ctx context.Context, conversationID string) error {
	for _, c := range r.conversations {
		if c.ID == conversationID {
			c.UnreadCount = 0
		}
	}
	return nil
}

func (r *memConversationRepo) CountMessagesByDay(ctx context.Context, storeID string, since time.Time) ([]domain.DayCount, error) {
	return nil, nil
}

var _ ports.ConversationRepository = (*memConversationRepo)(nil)

type memUsageRepo struct {
	records []*domain.TokenUsage
}

func (r *memUsageRepo) Record(ctx context.Context, usage *domain.TokenUsage) error {
	r.records = append(r.records, usage)
	return nil
}

func (r *memUsageRepo) Totals(ctx context.Context, storeID string, since time.Time) (*domain.TokenTotals, error) {
	totals := &domain.TokenTotals{}
	for _, u := range r.records {
		if u.StoreID == storeID {
			totals.PromptTokens += u.PromptTokens
			totals.CompletionTokens += u.CompletionTokens
		}
	}
	return totals, nil
}

func (r *memUsageRepo) TotalsByStore(ctx context.Context, since time.Time) ([]domain.StoreTokenTotals, error) {
	return nil, nil
}

var _ ports.TokenUsageRepository = (*memUsageRepo)(nil)

type memAnalysisRepo struct {
	saved []*domain.ConversationAnalysis
}

func (r *memAnalysisRepo) Save(ctx context.Context, analysis *domain.ConversationAnalysis) error {
	r.saved = append(r.saved, analysis)
	return nil
}

func (r *memAnalysisRepo) ListByStore(ctx context.Context, storeID string) ([]*domain.ConversationAnalysis, error) {
	var out []*domain.ConversationAnalysis
	for _, a := range r.saved {
		if a.StoreID == storeID {
			out = append(out, a)
		}
	}
	return out, nil
}

var _ ports.AnalysisRepository = (*memAnalysisRepo)(nil)

type memTicketRepo struct {
	byID map[string]*domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{byID: make(map[string]*domain.Ticket)}
}

func (r *memTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.byID[ticket.ID] = ticket
	return nil
}

func (r *memTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.byID[id], nil
}

func (r *memTicketRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Ticket, error) {
	var out []*domain.Ticket
	for _, t := range r.byID {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTicketRepo) List(ctx context.Context) ([]*domain.Ticket, error) {
	var out []*domain.Ticket
	for _, t := range r.byID {
		out = append(out, t)
	}
	return out, nil
}

func (r *memTicketRepo) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	if t, ok := r.byID[id]; ok {
		t.Status = status
	}
	return nil
}

var _ ports.TicketRepository = (*memTicketRepo)(nil)

type memCustomerTicketRepo struct {
	byID map[string]*domain.CustomerTicket
}

func newMemCustomerTicketRepo() *memCustomerTicketRepo {
	return &memCustomerTicketRepo{byID: make(map[string]*domain.CustomerTicket)}
}

func (r *memCustomerTicketRepo) Create(ctx context.Context, ticket *domain.CustomerTicket) error {
	r.byID[ticket.ID] = ticket
	return nil
}

func (r *memCustomerTicketRepo) GetByID(ctx context.Context, id string) (*domain.CustomerTicket, error) {
	return r.byID[id], nil
}

func (r *memCustomerTicketRepo) ListByStore(ctx context.Context, storeID string) ([]*domain.CustomerTicket, error) {
	var out []*domain.CustomerTicket
	for _, t := range r.byID {
		if t.StoreID == storeID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memCustomerTicketRepo) ListByStoreAndEmail(ctx context.Context, storeID, email string) ([]*domain.CustomerTicket, error) {
	var out []*domain.CustomerTicket
	for _, t := range r.byID {
		if t.StoreID == storeID && t.CustomerEmail == email {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memCustomerTicketRepo) Update(ctx context.Context, ticket *domain.CustomerTicket) error {
	r.byID[ticket.ID] = ticket
	return nil
}

var _ ports.CustomerTicketRepository = (*memCustomerTicketRepo)(nil)

// stubShopify fakes the Shopify API for OAuth and sync tests.
type stubShopify struct {
	accessToken  string
	exchangeErr  error
	shopName     string
	shopErr      error
	productCount int
	countErr     error
}

func (s *stubShopify) GenerateAuthURL(shop string, state string) (string, error) {
	return "https://" + shop + "/admin/oauth/authorize?state=" + state, nil
}

func (s *stubShopify) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	if s.exchangeErr != nil {
		return "", s.exchangeErr
	}
	return s.accessToken, nil
}

func (s *stubShopify) VerifyCallback(u *url.URL) (bool, error) {
	return true, nil
}

func (s *stubShopify) GetShop(ctx context.Context, shop string, accessToken string) (*shopify.Shop, error) {
	if s.shopErr != nil {
		return nil, s.shopErr
	}
	return &shopify.Shop{Name: s.shopName}, nil
}

func (s *stubShopify) CountProducts(ctx context.Context, shop string, accessToken string) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.productCount, nil
}

var _ ports.ShopifyClient = (*stubShopify)(nil)
