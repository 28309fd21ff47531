package persona

import (
	"strings"

	"github.com/tidwall/gjson"
)

// FallbackCategory holds the raw model reply when it is not a JSON object.
const FallbackCategory = "analysis"

// Trait is one categorised finding about the user.
type Trait struct {
	Category    string
	Description TraitDescription
}

// Persona is the model's output, in the order the categories were produced.
type Persona struct {
	Traits []Trait
}

// Len returns the number of categories.
func (p Persona) Len() int { return len(p.Traits) }

// Set adds a category, replacing the description in place when the
// category already exists.
func (p *Persona) Set(category string, d TraitDescription) {
	for i := range p.Traits {
		if p.Traits[i].Category == category {
			p.Traits[i].Description = d
			return
		}
	}
	p.Traits = append(p.Traits, Trait{Category: category, Description: d})
}

// Get returns the description for a category.
func (p Persona) Get(category string) (TraitDescription, bool) {
	for _, t := range p.Traits {
		if t.Category == category {
			return t.Description, true
		}
	}
	return TraitDescription{}, false
}

// ParseReply turns a model reply into a Persona. A reply that is not a JSON
// object (after stripping Markdown fences) is wrapped under
// FallbackCategory and malformed is reported as true.
func ParseReply(reply string) (p Persona, malformed bool) {
	cleaned := cleanJSON(reply)
	if !gjson.Valid(cleaned) {
		return fallback(reply), true
	}
	root := gjson.Parse(cleaned)
	if !root.IsObject() {
		return fallback(reply), true
	}

	p.Traits = []Trait{}
	root.ForEach(func(key, val gjson.Result) bool {
		if val.Type == gjson.String {
			p.Set(key.String(), Text(val.String()))
		} else {
			p.Set(key.String(), StructuredJSON([]byte(val.Raw)))
		}
		return true
	})
	return p, false
}

func fallback(reply string) Persona {
	return Persona{Traits: []Trait{{
		Category:    FallbackCategory,
		Description: Text(strings.TrimSpace(reply)),
	}}}
}

func cleanJSON(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
