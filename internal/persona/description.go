package persona

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// DescriptionKind tags which variant a TraitDescription holds.
type DescriptionKind int

const (
	PlainText DescriptionKind = iota
	Structured
)

// TraitDescription is either free text or an arbitrary JSON value.
// The zero value is empty plain text.
type TraitDescription struct {
	kind DescriptionKind
	text string
	raw  json.RawMessage
}

// Text returns a plain-text description.
func Text(s string) TraitDescription {
	return TraitDescription{kind: PlainText, text: s}
}

// StructuredJSON returns a structured description holding raw JSON.
// Invalid JSON is kept as plain text so that rendering stays total.
func StructuredJSON(raw []byte) TraitDescription {
	if !gjson.ValidBytes(raw) {
		return Text(string(raw))
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return Text(string(raw))
	}
	return TraitDescription{kind: Structured, raw: buf.Bytes()}
}

func (d TraitDescription) Kind() DescriptionKind { return d.kind }

// Raw returns the JSON value for structured descriptions, nil otherwise.
func (d TraitDescription) Raw() json.RawMessage { return d.raw }

// Render flattens the description to text. Plain text is returned as is;
// structured values are walked in document order, emitting object keys
// followed by their values, separated by single spaces. Nulls render as
// nothing.
func (d TraitDescription) Render() string {
	if d.kind == PlainText {
		return d.text
	}
	var parts []string
	renderValue(gjson.ParseBytes(d.raw), &parts)
	return strings.Join(parts, " ")
}

func renderValue(v gjson.Result, parts *[]string) {
	switch {
	case v.IsObject():
		v.ForEach(func(key, val gjson.Result) bool {
			*parts = append(*parts, key.String())
			renderValue(val, parts)
			return true
		})
	case v.IsArray():
		v.ForEach(func(_, val gjson.Result) bool {
			renderValue(val, parts)
			return true
		})
	case v.Type == gjson.Null:
	default:
		if s := v.String(); s != "" {
			*parts = append(*parts, s)
		}
	}
}

// MarshalJSON writes plain text as a JSON string and structured values verbatim.
func (d TraitDescription) MarshalJSON() ([]byte, error) {
	if d.kind == Structured {
		return d.raw, nil
	}
	return json.Marshal(d.text)
}

// UnmarshalJSON treats JSON strings as plain text and anything else as structured.
func (d *TraitDescription) UnmarshalJSON(data []byte) error {
	v := gjson.ParseBytes(data)
	if v.Type == gjson.String {
		*d = Text(v.String())
		return nil
	}
	*d = StructuredJSON(data)
	return nil
}
