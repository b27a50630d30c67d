package transcribe

import (
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"
)

var responseSchema = sync.OnceValues(func() (*genai.Schema, error) {
	s, err := jsonschema.For[Result](&jsonschema.ForOptions{})
	if err != nil {
		return nil, fmt.Errorf("transcribe: response schema: %w", err)
	}
	return convSchema(s), nil
})

// convSchema converts a JSON schema to the subset Gemini accepts. Nullable
// unions such as ["null", "array"] become a single type with Nullable set.
func convSchema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	gs := &genai.Schema{
		Description: s.Description,
		Format:      s.Format,
		Items:       convSchema(s.Items),
		Required:    s.Required,
	}
	for _, v := range s.Enum {
		gs.Enum = append(gs.Enum, fmt.Sprintf("%v", v))
	}
	if len(s.Properties) > 0 {
		gs.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, p := range s.Properties {
			gs.Properties[k] = convSchema(p)
		}
		// Keep the field order of Result in the model output.
		gs.PropertyOrdering = s.PropertyOrder
	}

	typ := s.Type
	for _, t := range s.Types {
		if t == "null" {
			gs.Nullable = genai.Ptr(true)
		} else if typ == "" {
			typ = t
		}
	}
	switch typ {
	case "object":
		gs.Type = genai.TypeObject
	case "array":
		gs.Type = genai.TypeArray
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	}
	return gs
}
