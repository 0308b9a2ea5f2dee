package engine

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/grammarsnap/pkg/domain"
)

type queryCacheKey struct {
	lang     domain.LanguageID
	queryStr string
}

type cachedQuery struct {
	once  sync.Once
	query *sitter.Query
	err   error
}

var queryCache sync.Map

// highlightQuery returns the compiled highlight query of g. The returned
// query is shared and must NOT be closed.
func highlightQuery(g *Grammar) (*sitter.Query, error) {
	key := queryCacheKey{
		lang:     g.ID,
		queryStr: g.HighlightQuery,
	}

	val, _ := queryCache.LoadOrStore(key, &cachedQuery{})
	cached, ok := val.(*cachedQuery)
	if !ok {
		return nil, fmt.Errorf("invalid cache entry type")
	}

	cached.once.Do(func() {
		cached.query, cached.err = sitter.NewQuery([]byte(g.HighlightQuery), g.Language())
	})
	if cached.err != nil {
		return nil, fmt.Errorf("highlight query of %s: %w", g.ID, cached.err)
	}
	return cached.query, nil
}
