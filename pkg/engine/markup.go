package engine

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/specvital/grammarsnap/pkg/domain"
)

// TokenClass is the class every highlighted span carries.
const TokenClass = "token"

// RenderMarkup renders a token stream as escaped markup. Typed tokens become
// <span class="token TYPE ALIAS..."> elements; plain strings become text.
func RenderMarkup(stream domain.TokenStream) (string, error) {
	var sb strings.Builder
	for _, node := range markupNodes(stream) {
		if err := html.Render(&sb, node); err != nil {
			return "", fmt.Errorf("render markup: %w", err)
		}
	}
	return sb.String(), nil
}

func markupNodes(stream domain.TokenStream) []*html.Node {
	nodes := make([]*html.Node, 0, len(stream))
	for _, token := range stream {
		if token.IsPlain() {
			nodes = append(nodes, &html.Node{Type: html.TextNode, Data: token.Text})
			continue
		}

		classes := append([]string{TokenClass, token.Type}, token.Alias...)
		el := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Span,
			Data:     atom.Span.String(),
			Attr:     []html.Attribute{{Key: "class", Val: strings.Join(classes, " ")}},
		}
		if token.IsLeaf() {
			if token.Text != "" {
				el.AppendChild(&html.Node{Type: html.TextNode, Data: token.Text})
			}
		} else {
			for _, child := range markupNodes(token.Content) {
				el.AppendChild(child)
			}
		}
		nodes = append(nodes, el)
	}
	return nodes
}
