package intel

import (
	"context"
	"sort"
	"strings"

	"github.com/siherrmann/scout/model"
)

// RecordSource defines the interface for fetching recent competitor
// records, newest first.
type RecordSource interface {
	SelectRecentRecords(ctx context.Context, competitors []string, tenantID string, limit int) ([]*model.CompetitorInsight, error)
}

// Matcher surfaces competitor records relevant to a query. Competitor
// names are detected in the query and the extracted entities, with the
// tenant's category defaults as fallback when nothing matches.
type Matcher struct {
	source  RecordSource
	lexicon *model.Lexicon
	config  *model.RetrievalConfig
}

// NewMatcher creates a matcher over the given record source.
// A nil lexicon or config falls back to the defaults.
func NewMatcher(source RecordSource, lexicon *model.Lexicon, config *model.RetrievalConfig) *Matcher {
	if lexicon == nil {
		lexicon = model.DefaultLexicon()
	}
	if config == nil {
		config = model.DefaultRetrievalConfig()
	}
	return &Matcher{
		source:  source,
		lexicon: lexicon,
		config:  config,
	}
}

// Match fetches recent records for the competitors named in the query
// or seeds, scores them against the query and returns the most relevant
// ones. No detectable competitors and no tenant fallback means no
// insights, which is a valid outcome.
func (m *Matcher) Match(ctx context.Context, query string, seeds []string, tenantID string) ([]*model.CompetitorInsight, error) {
	scanText := query
	if len(seeds) > 0 {
		scanText += " " + strings.Join(seeds, " ")
	}

	competitors := m.lexicon.MatchCompetitors(scanText)
	if len(competitors) == 0 {
		competitors = m.lexicon.DefaultCompetitorsFor(tenantID)
	}
	if len(competitors) == 0 {
		return nil, nil
	}

	records, err := m.source.SelectRecentRecords(ctx, competitors, tenantID, m.config.RecordFetchLimit)
	if err != nil {
		return nil, err
	}

	queryTokens := strings.Fields(strings.ToLower(query))
	for _, record := range records {
		record.RelevanceToQuery = relevance(queryTokens, record.Text)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RelevanceToQuery > records[j].RelevanceToQuery
	})

	if len(records) > m.config.MaxInsights {
		records = records[:m.config.MaxInsights]
	}

	return records, nil
}

// relevance is the fraction of query tokens appearing as substrings in
// the record text.
func relevance(queryTokens []string, text string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	textLower := strings.ToLower(text)
	matched := 0
	for _, token := range queryTokens {
		if strings.Contains(textLower, token) {
			matched++
		}
	}

	score := float64(matched) / float64(len(queryTokens))
	if score > 1 {
		score = 1
	}
	return score
}
