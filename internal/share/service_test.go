package share

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kapu/digital-card-go/internal/domain"
	"github.com/kapu/digital-card-go/internal/service/cache"
)

type stubSuggester struct {
	links domain.ShareLinks
	err   error
	calls int
}

func (s *stubSuggester) Suggest(context.Context, domain.ShareInput) (domain.ShareLinks, error) {
	s.calls++
	return s.links, s.err
}

func serviceInput() domain.ShareInput {
	return domain.ShareInput{
		Name:        "Jane Doe",
		Designation: "Engineer",
		CardURL:     "https://card.example.com",
		Company:     "Acme",
	}
}

func TestLinksDeterministicOnly(t *testing.T) {
	svc := NewService(nil, nil, nil)

	result := svc.Links(context.Background(), serviceInput(), LinkOptions{Suggest: true})

	assert.Equal(t, Build(serviceInput()), result.Links)
	assert.Nil(t, result.Suggestions)
	assert.Nil(t, result.Recipient)
	assert.False(t, svc.SuggestionsEnabled())
}

func TestLinksWithRecipient(t *testing.T) {
	svc := NewService(nil, nil, nil)

	result := svc.Links(context.Background(), serviceInput(), LinkOptions{Recipient: "+91 98765 43210"})

	require.NotNil(t, result.Recipient)
	assert.Contains(t, result.Recipient.WhatsApp, "https://wa.me/919876543210?text=")
	assert.Contains(t, result.Recipient.SMS, "sms:919876543210?body=")
}

func TestLinksSuggestionsAreCached(t *testing.T) {
	suggester := &stubSuggester{links: domain.ShareLinks{CopyLink: "https://card.example.com"}}
	svc := NewService(suggester, cache.NewMemoryStore(), nil)

	first := svc.Links(context.Background(), serviceInput(), LinkOptions{Suggest: true})
	second := svc.Links(context.Background(), serviceInput(), LinkOptions{Suggest: true})

	require.NotNil(t, first.Suggestions)
	require.NotNil(t, second.Suggestions)
	assert.Equal(t, "https://card.example.com", second.Suggestions.CopyLink)
	assert.Equal(t, 1, suggester.calls)
	assert.Equal(t, Build(serviceInput()), second.Links)
}

func TestLinksSuggestionFailureKeepsDeterministicSet(t *testing.T) {
	suggester := &stubSuggester{err: errors.New("model down")}
	svc := NewService(suggester, cache.NewMemoryStore(), nil)

	result := svc.Links(context.Background(), serviceInput(), LinkOptions{Suggest: true})

	assert.Nil(t, result.Suggestions)
	assert.Equal(t, Build(serviceInput()), result.Links)
	assert.Error(t, svc.Prime(context.Background(), serviceInput()))
}

func TestSuggestionKeyDependsOnInput(t *testing.T) {
	a := serviceInput()
	b := serviceInput()
	b.CardURL = "https://other.example.com"

	assert.Equal(t, suggestionKey(a), suggestionKey(serviceInput()))
	assert.NotEqual(t, suggestionKey(a), suggestionKey(b))
}
