package pipeline

import (
	"strings"

	"github.com/siherrmann/scout/model"
)

// LexiconExtractor creates a seed-entity extractor that scans chunk
// metadata and text against a known-entity lexicon. It is a fast
// heuristic, not a real NER model; swap in DefaultNERExtractor when
// recall matters more than latency.
func LexiconExtractor(lexicon *model.Lexicon, config *model.RetrievalConfig) ExtractFunc {
	if lexicon == nil {
		lexicon = model.DefaultLexicon()
	}
	if config == nil {
		config = model.DefaultRetrievalConfig()
	}

	return func(chunks []*model.RetrievedChunk) ([]string, error) {
		seen := map[string]bool{}
		var entities []string

		add := func(candidate string) {
			candidate = strings.TrimSpace(candidate)
			if candidate == "" || len(entities) >= config.MaxEntities {
				return
			}
			key := strings.ToLower(candidate)
			if seen[key] {
				return
			}
			seen[key] = true
			entities = append(entities, candidate)
		}

		for _, chunk := range chunks {
			add(chunk.Metadata.EntityType)
			add(chunk.Metadata.Domain)
			for _, match := range lexicon.MatchEntities(chunk.Text) {
				add(match)
			}
		}

		return entities, nil
	}
}
