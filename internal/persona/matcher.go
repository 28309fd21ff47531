package persona

import (
	"strings"

	"github.com/MikeSquared-Agency/profiler/internal/content"
)

const (
	// MaxCitations caps the citations collected per category.
	MaxCitations = 3
	// MaxTokens is how many leading description tokens are searched for.
	MaxTokens = 5
	// ExcerptLength is the excerpt budget in characters, marker excluded.
	ExcerptLength = 100
	// TruncationMarker always follows an excerpt.
	TruncationMarker = "..."
)

// Citation links a trait to a piece of the user's content.
type Citation struct {
	SourceKind content.Kind `json:"type"`
	URL        string       `json:"url"`
	Excerpt    string       `json:"excerpt"`
}

// Tokens returns the first MaxTokens whitespace-delimited tokens of the
// lowercased rendered description.
func Tokens(d TraitDescription) []string {
	fields := strings.Fields(strings.ToLower(d.Render()))
	if len(fields) > MaxTokens {
		fields = fields[:MaxTokens]
	}
	return fields
}

// Excerpt previews an item: the body, or the title when the body is empty,
// cut to ExcerptLength characters and followed by TruncationMarker.
func Excerpt(it content.Item) string {
	src := it.Body
	if src == "" {
		src = it.Title
	}
	r := []rune(src)
	if len(r) > ExcerptLength {
		r = r[:ExcerptLength]
	}
	return string(r) + TruncationMarker
}

// FindCitations scans items in order and returns up to MaxCitations whose
// searchable text contains any of the description's leading tokens as a
// substring. The result is never nil.
func FindCitations(d TraitDescription, items []content.Item) []Citation {
	return findCitations(Tokens(d), items, nil)
}

// searchTexts is indexed like items; nil means compute on demand.
func findCitations(tokens []string, items []content.Item, searchTexts []string) []Citation {
	citations := []Citation{}
	if len(tokens) == 0 {
		return citations
	}

	for i, it := range items {
		var text string
		if searchTexts != nil {
			text = searchTexts[i]
		} else {
			text = it.SearchText()
		}
		if !containsAny(text, tokens) {
			continue
		}
		citations = append(citations, Citation{
			SourceKind: it.Kind,
			URL:        it.URL,
			Excerpt:    Excerpt(it),
		})
		if len(citations) >= MaxCitations {
			break
		}
	}
	return citations
}

func containsAny(text string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}

// Cite attaches citations from the index to every trait of the persona.
// It is pure: the same persona and index always give the same result.
func Cite(p Persona, idx content.Index) CitedPersona {
	searchTexts := make([]string, len(idx.Items))
	for i, it := range idx.Items {
		searchTexts[i] = it.SearchText()
	}

	out := CitedPersona{Traits: make([]CitedTrait, 0, len(p.Traits))}
	for _, t := range p.Traits {
		out.Traits = append(out.Traits, CitedTrait{
			Category:    t.Category,
			Description: t.Description,
			Citations:   findCitations(Tokens(t.Description), idx.Items, searchTexts),
		})
	}
	return out
}
