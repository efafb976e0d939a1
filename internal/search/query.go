package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
)

// maxSearchHits caps how many log IDs one search can return. The result
// feeds the listing filter, which paginates afterwards.
const maxSearchHits = 1000

// SearchLogIDs returns the IDs of the user's logs whose content matches
// the query, best match first. An empty query matches nothing.
func (s *LogIndex) SearchLogIDs(ctx context.Context, userID, queryString string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queryString = strings.TrimSpace(queryString)
	if queryString == "" {
		return []string{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Match with fuzziness for typo tolerance, OR a prefix match so
	// partially typed words still hit.
	matchQuery := bleve.NewMatchQuery(queryString)
	matchQuery.SetField("content")
	matchQuery.SetFuzziness(1)

	prefixQuery := bleve.NewPrefixQuery(strings.ToLower(queryString))
	prefixQuery.SetField("content")

	contentQuery := bleve.NewDisjunctionQuery(matchQuery, prefixQuery)

	userQuery := bleve.NewTermQuery(userID)
	userQuery.SetField("user_id")

	searchQuery := bleve.NewConjunctionQuery(contentQuery, userQuery)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, maxSearchHits, 0, false)

	result, err := s.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search logs: %w", err)
	}

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}

	return ids, nil
}
