package persona

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/MikeSquared-Agency/profiler/internal/content"
)

// CitedTrait is a trait with its supporting citations.
type CitedTrait struct {
	Category    string
	Description TraitDescription
	Citations   []Citation
}

// CitedPersona is the final report data, ordered like the source persona.
type CitedPersona struct {
	Traits []CitedTrait
}

// Len returns the number of categories.
func (c CitedPersona) Len() int { return len(c.Traits) }

// Get returns the cited trait for a category.
func (c CitedPersona) Get(category string) (CitedTrait, bool) {
	for _, t := range c.Traits {
		if t.Category == category {
			return t, true
		}
	}
	return CitedTrait{}, false
}

// CitationCount sums citations across categories.
func (c CitedPersona) CitationCount() int {
	n := 0
	for _, t := range c.Traits {
		n += len(t.Citations)
	}
	return n
}

type citedEntry struct {
	Description TraitDescription `json:"description"`
	Citations   []Citation       `json:"citations"`
}

// MarshalJSON encodes the persona as an object keyed by category, keeping
// category order.
func (c CitedPersona) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range c.Traits {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(t.Category)
		if err != nil {
			return nil, fmt.Errorf("marshal category: %w", err)
		}
		citations := t.Citations
		if citations == nil {
			citations = []Citation{}
		}
		val, err := json.Marshal(citedEntry{Description: t.Description, Citations: citations})
		if err != nil {
			return nil, fmt.Errorf("marshal category %s: %w", t.Category, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the MarshalJSON form, preserving key order.
func (c *CitedPersona) UnmarshalJSON(data []byte) error {
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return fmt.Errorf("cited persona: expected JSON object")
	}

	traits := []CitedTrait{}
	var decodeErr error
	root.ForEach(func(key, val gjson.Result) bool {
		var desc TraitDescription
		if d := val.Get("description"); d.Exists() {
			if err := desc.UnmarshalJSON([]byte(d.Raw)); err != nil {
				decodeErr = err
				return false
			}
		}
		citations := []Citation{}
		val.Get("citations").ForEach(func(_, cv gjson.Result) bool {
			kind := content.KindPost
			if cv.Get("type").String() == content.KindComment.String() {
				kind = content.KindComment
			}
			citations = append(citations, Citation{
				SourceKind: kind,
				URL:        cv.Get("url").String(),
				Excerpt:    cv.Get("excerpt").String(),
			})
			return true
		})
		traits = append(traits, CitedTrait{
			Category:    key.String(),
			Description: desc,
			Citations:   citations,
		})
		return true
	})
	if decodeErr != nil {
		return fmt.Errorf("cited persona: %w", decodeErr)
	}
	c.Traits = traits
	return nil
}
