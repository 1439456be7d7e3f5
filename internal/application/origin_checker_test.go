package application_test

import (
	"context"
	"errors"
	"testing"

	"quell-core-api/internal/application"
	"quell-core-api/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestOriginCheckerAllowsEmptyOrigin(t *testing.T) {
	checker := application.NewOriginChecker(nil, newMemStoreRepo(), zerolog.Nop())

	allowed, err := checker.IsOriginAllowed(context.Background(), "")
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestOriginCheckerStaticAllowList(t *testing.T) {
	checker := application.NewOriginChecker(
		[]string{"https://dashboard.quell.app"},
		newMemStoreRepo(),
		zerolog.Nop(),
	)

	allowed, err := checker.IsOriginAllowed(context.Background(), "https://www.dashboard.quell.app")
	require.NoError(t, err)
	require.True(t, allowed)
	require.True(t, checker.IsStaticOrigin("https://dashboard.quell.app/"))
	require.False(t, checker.IsStaticOrigin("https://evil.example.com"))
}

func TestOriginCheckerRegisteredStoreDomain(t *testing.T) {
	stores := newMemStoreRepo(&domain.Store{
		ID:         "store-1",
		ShopDomain: "acme.myshopify.com",
		Status:     domain.StoreStatusActive,
	})
	checker := application.NewOriginChecker(nil, stores, zerolog.Nop())

	allowed, err := checker.IsOriginAllowed(context.Background(), "https://acme.myshopify.com")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = checker.IsOriginAllowed(context.Background(), "https://other.myshopify.com")
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestOriginCheckerFailsClosedOnRepositoryError(t *testing.T) {
	stores := newMemStoreRepo()
	stores.err = errors.New("connection reset")
	checker := application.NewOriginChecker(nil, stores, zerolog.Nop())

	allowed, err := checker.IsOriginAllowed(context.Background(), "https://acme.myshopify.com")
	require.Error(t, err)
	require.False(t, allowed)
}
