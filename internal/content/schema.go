package content

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const documentSchema = `{
  "type": "object",
  "properties": {
    "articles": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "body", "category", "reading_time", "difficulty"],
        "properties": {
          "id": {"type": "string"},
          "title": {"type": "string", "minLength": 1},
          "body": {"type": "string"},
          "category": {"enum": ["health", "science", "history", "technology", "psychology", "nutrition", "fitness", "medicine"]},
          "reading_time": {"type": "integer", "minimum": 1},
          "tags": {"type": "array", "items": {"type": "string"}},
          "difficulty": {"enum": ["beginner", "intermediate", "advanced"]},
          "health_related": {"type": "boolean"},
          "image_url": {"type": "string"}
        }
      }
    },
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["article_id", "question", "options", "correct_index"],
        "properties": {
          "id": {"type": "string"},
          "article_id": {"type": "string", "minLength": 1},
          "question": {"type": "string", "minLength": 1},
          "options": {"type": "array", "minItems": 2, "items": {"type": "string"}},
          "correct_index": {"type": "integer", "minimum": 0},
          "explanation": {"type": "string"}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// ValidateDocument checks a decoded catalog document (the generic form
// produced by yaml.Unmarshal into any) against the catalog schema.
func ValidateDocument(doc any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate catalog document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid catalog document: %s", strings.Join(msgs, "; "))
}
