package domain_test

import (
	"testing"

	"quell-core-api/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestNormalizeHost(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"bare domain", "acme.myshopify.com", "acme.myshopify.com"},
		{"https origin", "https://acme.myshopify.com", "acme.myshopify.com"},
		{"http origin", "http://acme.myshopify.com", "acme.myshopify.com"},
		{"www prefix", "www.acme.myshopify.com", "acme.myshopify.com"},
		{"scheme and www", "https://www.acme.myshopify.com", "acme.myshopify.com"},
		{"trailing slash", "https://acme.myshopify.com/", "acme.myshopify.com"},
		{"path", "https://acme.myshopify.com/products/1", "acme.myshopify.com"},
		{"query", "https://acme.myshopify.com?utm=x", "acme.myshopify.com"},
		{"fragment", "https://acme.myshopify.com#top", "acme.myshopify.com"},
		{"uppercase", "HTTPS://ACME.MYSHOPIFY.COM", "acme.myshopify.com"},
		{"surrounding whitespace", "  acme.myshopify.com  ", "acme.myshopify.com"},
		{"port kept", "http://localhost:5173", "localhost:5173"},
		{"port with path", "http://localhost:5173/dashboard", "localhost:5173"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, domain.NormalizeHost(tc.input))
		})
	}
}

// The same function runs on both sides of every comparison, so any two
// spellings of the same host must collapse to the same value.
func TestNormalizeHostSymmetry(t *testing.T) {
	spellings := []string{
		"acme.myshopify.com",
		"https://acme.myshopify.com",
		"https://www.acme.myshopify.com/",
		"WWW.ACME.MYSHOPIFY.COM",
	}
	want := domain.NormalizeHost(spellings[0])
	for _, s := range spellings {
		require.Equal(t, want, domain.NormalizeHost(s))
	}
}
