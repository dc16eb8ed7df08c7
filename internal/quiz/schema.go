package quiz

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const artifactSchemaURL = "schema://evalai/artifact.json"

// artifactSchema describes a persisted Artifact. Readers validate against it
// so a truncated or hand-edited cache file is reported instead of served.
const artifactSchema = `{
  "type": "object",
  "required": ["source_identity", "content_key", "questions", "created_at"],
  "properties": {
    "source_identity": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "minLength": 1}
    },
    "content_key": {"type": "string", "pattern": "^[0-9a-f]{64}$"},
    "created_at": {"type": "string"},
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {"$ref": "#/$defs/question"}
    }
  },
  "$defs": {
    "question": {
      "type": "object",
      "required": ["id", "type", "question"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "type": {"enum": ["MCQ", "SAQ"]},
        "question": {"type": "string", "minLength": 1},
        "explanation": {"type": "string"},
        "options": {
          "type": "object",
          "propertyNames": {"enum": ["A", "B", "C", "D"]},
          "additionalProperties": {"type": "string", "minLength": 1}
        },
        "correct_answer": {"enum": ["A", "B", "C", "D"]},
        "answer": {"type": "string", "minLength": 1}
      },
      "allOf": [
        {
          "if": {"properties": {"type": {"const": "MCQ"}}},
          "then": {
            "required": ["options", "correct_answer"],
            "properties": {"options": {"minProperties": 4, "maxProperties": 4}}
          }
        },
        {
          "if": {"properties": {"type": {"const": "SAQ"}}},
          "then": {"required": ["answer"]}
        }
      ]
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func artifactValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(artifactSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse artifact schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(artifactSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(artifactSchemaURL)
	})
	return compiled, compileErr
}

// DecodeArtifact validates raw against the artifact schema and decodes it.
func DecodeArtifact(raw []byte) (*Artifact, error) {
	sch, err := artifactValidator()
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON: %w", err)
	}
	if err := sch.Validate(parsed); err != nil {
		return nil, fmt.Errorf("artifact schema validation failed: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return &a, nil
}

// EncodeArtifact is the canonical on-disk form of an artifact.
func EncodeArtifact(a *Artifact) ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}
