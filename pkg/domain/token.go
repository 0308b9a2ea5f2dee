package domain

import "strings"

// Token is one element of a token stream. A Token with an empty Type is a
// plain string; otherwise it is a typed token whose content is either Text
// (leaf) or Content (nested tokens).
type Token struct {
	// Alias contains additional type names assigned by the grammar.
	Alias []string `json:"alias,omitempty"`
	// Content contains nested tokens. Empty for leaf tokens.
	Content TokenStream `json:"content,omitempty"`
	// Text is the source text of a plain string or a leaf token.
	Text string `json:"text,omitempty"`
	// Type is the token type (e.g., "keyword", "string").
	Type string `json:"type,omitempty"`
}

// Plain returns a plain string token.
func Plain(text string) Token {
	return Token{Text: text}
}

// IsPlain reports whether the token is a plain string.
func (t Token) IsPlain() bool {
	return t.Type == ""
}

// IsLeaf reports whether the token carries text rather than nested tokens.
func (t Token) IsLeaf() bool {
	return len(t.Content) == 0
}

// String returns the source text covered by the token.
func (t Token) String() string {
	if t.IsLeaf() {
		return t.Text
	}
	return t.Content.String()
}

// TokenStream is the ordered output of a tokenizer.
type TokenStream []Token

// String concatenates the text of all tokens.
func (s TokenStream) String() string {
	var sb strings.Builder
	for _, t := range s {
		sb.WriteString(t.String())
	}
	return sb.String()
}

// CountTokens returns the number of typed tokens, including nested ones.
func (s TokenStream) CountTokens() int {
	count := 0
	for _, t := range s {
		if !t.IsPlain() {
			count++
		}
		count += t.Content.CountTokens()
	}
	return count
}
