package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String(), "token %d missing a string form", tok)
	}
}

func TestGoStringQuotesPunctuation(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "'=='", EQUAL_EQUAL.GoString())
	require.Equal(t, "identifier", IDENTIFIER.GoString())
	require.Equal(t, "class", CLASS.GoString())
}

func TestKeywordsRoundTrip(t *testing.T) {
	for word, tok := range Keywords {
		require.Equal(t, word, tok.String())
	}
}

func TestKeywordsCoverReservedWords(t *testing.T) {
	for tok := AND; tok < maxToken; tok++ {
		found := false
		for _, kw := range Keywords {
			if kw == tok {
				found = true
				break
			}
		}
		require.True(t, found, "%s missing from Keywords", tok)
	}
}
