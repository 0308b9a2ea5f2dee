package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/grammarsnap/pkg/domain"
)

// MaxTreeDepth is the maximum recursion depth when walking syntax trees.
const MaxTreeDepth = 1000

// maxInjectionDepth bounds nested language injections.
const maxInjectionDepth = 8

// TreeSitter is a Loader whose instances tokenize with tree-sitter grammars.
type TreeSitter struct {
	registry *Registry
}

// NewTreeSitter creates a loader over registry. A nil registry uses
// DefaultRegistry.
func NewTreeSitter(registry *Registry) *TreeSitter {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &TreeSitter{registry: registry}
}

// Registry returns the grammar registry of the loader.
func (ts *TreeSitter) Registry() *Registry {
	return ts.registry
}

// Load resolves every language and returns an instance restricted to them.
func (ts *TreeSitter) Load(ctx context.Context, languages []domain.LanguageID) (Instance, error) {
	inst := &treeSitterInstance{
		loaded: make(map[domain.LanguageID]*Grammar, len(languages)),
	}
	for _, lang := range languages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g := ts.registry.Resolve(lang)
		if g == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, lang)
		}
		if _, err := highlightQuery(g); err != nil {
			return nil, fmt.Errorf("load %s: %w", lang, err)
		}
		inst.loaded[lang] = g
		inst.loaded[g.ID] = g
		for _, alias := range g.Aliases {
			inst.loaded[alias] = g
		}
	}
	return inst, nil
}

type treeSitterInstance struct {
	loaded map[domain.LanguageID]*Grammar
}

func (inst *treeSitterInstance) ResolveLanguage(lang domain.LanguageID) *Grammar {
	return inst.loaded[lang]
}

func (inst *treeSitterInstance) Tokenize(ctx context.Context, code string, lang domain.LanguageID) (domain.TokenStream, error) {
	g := inst.ResolveLanguage(lang)
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotLoaded, lang)
	}
	return inst.tokenize(ctx, g, []byte(code), 0)
}

func (inst *treeSitterInstance) HighlightToMarkup(ctx context.Context, code string, lang domain.LanguageID) (string, error) {
	stream, err := inst.Tokenize(ctx, code, lang)
	if err != nil {
		return "", err
	}
	return RenderMarkup(stream)
}

// span is a highlighted byte range of the source.
type span struct {
	start, end uint32
	typ        string
	alias      []string
	inject     *Grammar
	children   []*span
}

func (s *span) contains(o *span) bool {
	return s.start <= o.start && o.end <= s.end
}

func (inst *treeSitterInstance) tokenize(ctx context.Context, g *Grammar, source []byte, depth int) (domain.TokenStream, error) {
	if len(source) == 0 {
		return domain.TokenStream{}, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g.Language())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s failed: %w", g.ID, err)
	}
	defer tree.Close()

	query, err := highlightQuery(g)
	if err != nil {
		return nil, err
	}

	root := tree.RootNode()
	var spans []*span
	if depth < maxInjectionDepth {
		spans = inst.injectionSpans(g, root)
	}
	spans = append(spans, captureSpans(query, root)...)

	roots := nest(spans)
	return inst.emit(ctx, source, roots, 0, uint32(len(source)), depth)
}

func (inst *treeSitterInstance) injectionSpans(g *Grammar, root *sitter.Node) []*span {
	if len(g.Injections) == 0 {
		return nil
	}

	var spans []*span
	WalkTree(root, func(node *sitter.Node) bool {
		parent := node.Parent()
		if parent == nil {
			return true
		}
		for _, injection := range g.Injections {
			if node.Type() != injection.Node || parent.Type() != injection.Parent {
				continue
			}
			embedded := inst.ResolveLanguage(injection.Language)
			if embedded == nil {
				continue
			}
			spans = append(spans, &span{
				start:  node.StartByte(),
				end:    node.EndByte(),
				typ:    "language-" + string(embedded.ID),
				inject: embedded,
			})
			return false
		}
		return true
	})
	return spans
}

func captureSpans(query *sitter.Query, root *sitter.Node) []*span {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	cursor.Exec(query, root)

	var spans []*span
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			typ, alias := tokenType(query.CaptureNameForId(capture.Index))
			spans = append(spans, &span{
				start: capture.Node.StartByte(),
				end:   capture.Node.EndByte(),
				typ:   typ,
				alias: alias,
			})
		}
	}
	return spans
}

// tokenType maps a capture name to a token type and aliases:
// "attr_name" becomes "attr-name", "keyword.control" becomes type "keyword"
// with alias "control".
func tokenType(capture string) (string, []string) {
	parts := strings.Split(strings.ReplaceAll(capture, "_", "-"), ".")
	if len(parts) == 1 {
		return parts[0], nil
	}
	return parts[0], parts[1:]
}

// nest arranges spans into a forest. Earlier spans win over later spans
// with the same range; spans crossing an enclosing span are dropped.
func nest(spans []*span) []*span {
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var roots, stack []*span
	for _, sp := range spans {
		if sp.end <= sp.start {
			continue
		}
		for len(stack) > 0 && stack[len(stack)-1].end <= sp.start {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, sp)
			stack = append(stack, sp)
			continue
		}
		top := stack[len(stack)-1]
		if !top.contains(sp) {
			continue
		}
		if top.start == sp.start && top.end == sp.end {
			continue
		}
		if top.inject != nil {
			continue
		}
		top.children = append(top.children, sp)
		stack = append(stack, sp)
	}
	return roots
}

func (inst *treeSitterInstance) emit(ctx context.Context, source []byte, spans []*span, from, to uint32, depth int) (domain.TokenStream, error) {
	stream := domain.TokenStream{}
	pos := from
	for _, sp := range spans {
		if sp.start > pos {
			stream = append(stream, domain.Plain(string(source[pos:sp.start])))
		}

		token := domain.Token{Type: sp.typ, Alias: sp.alias}
		switch {
		case sp.inject != nil:
			content, err := inst.tokenize(ctx, sp.inject, source[sp.start:sp.end], depth+1)
			if err != nil {
				return nil, err
			}
			token.Content = content
		case len(sp.children) == 0:
			token.Text = string(source[sp.start:sp.end])
		default:
			content, err := inst.emit(ctx, source, sp.children, sp.start, sp.end, depth)
			if err != nil {
				return nil, err
			}
			token.Content = content
		}
		stream = append(stream, token)
		pos = sp.end
	}
	if pos < to {
		stream = append(stream, domain.Plain(string(source[pos:to])))
	}
	return stream, nil
}

func walkTreeWithDepth(node *sitter.Node, visitor func(*sitter.Node) bool, depth int) {
	if depth > MaxTreeDepth {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkTreeWithDepth(node.Child(i), visitor, depth+1)
	}
}

// WalkTree recursively visits all nodes of a syntax tree.
// The visitor function returns false to stop traversing into children.
func WalkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	walkTreeWithDepth(node, visitor, 0)
}
