package model

import "strings"

// Lexicon is the injected lookup table used for heuristic entity extraction
// and competitor identification. The default set covers the Philippine FMCG
// market; deployments can swap in tenant- or market-specific lexicons
// without code changes.
type Lexicon struct {
	// EntityTokens are known brand/product/location tokens scanned for in
	// chunk text
	EntityTokens []string `json:"entity_tokens"`
	// Competitors are known competitor names scanned for in query text and
	// seed entities
	Competitors []string `json:"competitors"`
	// CategoryDefaults maps a tenant category to its top competitors, used
	// when no competitor is named explicitly
	CategoryDefaults map[string][]string `json:"category_defaults"`
	// TenantCategories maps a tenant ID to its category
	TenantCategories map[string]string `json:"tenant_categories"`
	// Fallback are the global top competitors used when the tenant category
	// is unknown
	Fallback []string `json:"fallback"`
}

// DefaultLexicon returns the Philippine FMCG retail lexicon
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		EntityTokens: []string{
			"Alaska", "Bear Brand", "Nestle", "Oishi", "Jack 'n Jill",
			"Del Monte", "Alpine", "Cow Bell", "Krem-Top", "Magnolia",
			"Nido", "Birch Tree", "Piattos", "Nova", "Smart C",
			"NCR", "Luzon", "Visayas", "Mindanao", "Metro Manila",
			"milk", "snacks", "beverages", "condiments",
		},
		Competitors: []string{
			"Alaska", "Bear Brand", "Nestle", "Nido", "Birch Tree",
			"Alpine", "Cow Bell", "Oishi", "Jack 'n Jill", "Piattos",
			"Del Monte", "Magnolia",
		},
		CategoryDefaults: map[string][]string{
			"dairy":     {"Alaska", "Bear Brand", "Nido", "Alpine"},
			"snacks":    {"Oishi", "Jack 'n Jill", "Piattos"},
			"beverages": {"Nestle", "Del Monte", "Magnolia"},
		},
		TenantCategories: map[string]string{},
		Fallback:         []string{"Alaska", "Bear Brand", "Oishi", "Del Monte"},
	}
}

// MatchEntities returns the entity tokens appearing in text as
// case-insensitive substrings, in lexicon order
func (l *Lexicon) MatchEntities(text string) []string {
	return matchTokens(l.EntityTokens, text)
}

// MatchCompetitors returns the competitor names appearing in text as
// case-insensitive substrings, in lexicon order
func (l *Lexicon) MatchCompetitors(text string) []string {
	return matchTokens(l.Competitors, text)
}

// DefaultCompetitorsFor returns the fallback competitor set for a tenant
// when no competitor is named explicitly
func (l *Lexicon) DefaultCompetitorsFor(tenantID string) []string {
	if category, ok := l.TenantCategories[tenantID]; ok {
		if defaults, ok := l.CategoryDefaults[category]; ok && len(defaults) > 0 {
			return defaults
		}
	}
	return l.Fallback
}

func matchTokens(tokens []string, text string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, token := range tokens {
		if strings.Contains(lower, strings.ToLower(token)) {
			matched = append(matched, token)
		}
	}
	return matched
}
