package domain_test

import (
	"testing"
	"time"

	"quell-core-api/internal/domain"

	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestStartersFallsBackOnMalformedJSON(t *testing.T) {
	cases := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"not json", "{broken"},
		{"wrong type", `{"a":1}`},
		{"empty array", "[]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &domain.Appearance{ConversationStarters: tc.stored}
			require.Equal(t, domain.DefaultConversationStarters(), a.Starters())
		})
	}

	a := &domain.Appearance{ConversationStarters: `["Hi!","Need help?"]`}
	require.Equal(t, []string{"Hi!", "Need help?"}, a.Starters())
}

func TestBootstrapForAppliesDefaults(t *testing.T) {
	store := &domain.Store{ShopDomain: "acme.myshopify.com"}

	b := domain.BootstrapFor(store, nil)
	require.Equal(t, "acme.myshopify.com", b.ShopDomain)
	require.Equal(t, domain.DefaultPrimaryColor, b.PrimaryColor)
	require.Equal(t, domain.DefaultBubbleShape, b.BubbleShape)
	require.Equal(t, domain.DefaultWidgetPosition, b.Position)
	require.True(t, b.ShowLogo)
	require.Equal(t, domain.DefaultConversationStarters(), b.ConversationStarters)

	b = domain.BootstrapFor(store, &domain.Appearance{
		PrimaryColor: "#112233",
		ShowLogo:     false,
	})
	require.Equal(t, "#112233", b.PrimaryColor)
	require.Equal(t, domain.DefaultBubbleShape, b.BubbleShape)
	require.False(t, b.ShowLogo)
}

func TestPendingStoreExpired(t *testing.T) {
	p := &domain.PendingStore{ExpiresAt: mustTime(t, "2026-01-01T12:00:00Z")}
	require.False(t, p.Expired(mustTime(t, "2026-01-01T11:59:59Z")))
	require.False(t, p.Expired(mustTime(t, "2026-01-01T12:00:00Z")))
	require.True(t, p.Expired(mustTime(t, "2026-01-01T12:00:01Z")))
}
