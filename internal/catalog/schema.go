package catalog

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"vmm-exam-service/internal/domain"
)

const bankSchemaURL = "schema://question-bank.json"

const bankSchema = `{
  "type": "object",
  "required": ["id", "questions"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "title": {"type": "string"},
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "prompt", "options"],
        "properties": {
          "id": {"type": "integer", "minimum": 1},
          "prompt": {"type": "string", "minLength": 1},
          "correctOption": {"type": "string"},
          "options": {
            "type": "array",
            "minItems": 2,
            "items": {
              "type": "object",
              "required": ["id", "text"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "text": {"type": "string"},
                "feedback": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func bankValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(bankSchema), &def); err != nil {
			compileErr = fmt.Errorf("parse bank schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(bankSchemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(bankSchemaURL)
	})
	return compiled, compileErr
}

// DecodeBank validates raw JSON against the bank schema and decodes it.
// Question ids must be unique within the bank.
func DecodeBank(raw []byte) (domain.QuestionBank, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("invalid bank json: %w", err)
	}
	schema, err := bankValidator()
	if err != nil {
		return domain.QuestionBank{}, err
	}
	if err := schema.Validate(parsed); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("bank schema validation failed: %w", err)
	}

	var bank domain.QuestionBank
	if err := json.Unmarshal(raw, &bank); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("unmarshal bank: %w", err)
	}
	seen := make(map[int]struct{}, len(bank.Questions))
	for _, q := range bank.Questions {
		if _, dup := seen[q.ID]; dup {
			return domain.QuestionBank{}, fmt.Errorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return bank, nil
}
