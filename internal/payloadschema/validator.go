// Package payloadschema validates JSON request bodies against embedded schemas
// before they are decoded into typed payloads.
package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ufolux/TransPop/internal/language"
)

//go:embed translate_request.schema.json
var translateRequestSchemaJSON string

//go:embed input_update.schema.json
var inputUpdateSchemaJSON string

const (
	translateRequestSchema = "translate_request.schema.json"
	inputUpdateSchema      = "input_update.schema.json"
)

// TranslateRequest is the body of a one-shot translation call.
type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang,omitempty"`
	Provider   string `json:"provider,omitempty"`
}

// InputUpdate is a partial edit of the orchestrator input; absent fields are left unchanged.
type InputUpdate struct {
	Text       *string `json:"text,omitempty"`
	SourceLang *string `json:"source_lang,omitempty"`
	TargetLang *string `json:"target_lang,omitempty"`
	Provider   *string `json:"provider,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchemas   map[string]*jsonschema.Schema
	compiledSchemaErr error
)

func ValidateTranslateRequest(payload json.RawMessage) (*TranslateRequest, error) {
	var req TranslateRequest
	if err := validateInto(translateRequestSchema, payload, &req); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("text must not be blank")
	}
	if err := validateProvider(req.Provider); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.TargetLang) == language.AutoDetect {
		return nil, fmt.Errorf("target_lang cannot be %q", language.AutoDetect)
	}
	return &req, nil
}

func ValidateInputUpdate(payload json.RawMessage) (*InputUpdate, error) {
	var update InputUpdate
	if err := validateInto(inputUpdateSchema, payload, &update); err != nil {
		return nil, err
	}

	if update.Provider != nil {
		if err := validateProvider(*update.Provider); err != nil {
			return nil, err
		}
	}
	if update.TargetLang != nil && strings.TrimSpace(*update.TargetLang) == language.AutoDetect {
		return nil, fmt.Errorf("target_lang cannot be %q", language.AutoDetect)
	}
	return &update, nil
}

func validateInto(schemaName string, payload json.RawMessage, out any) error {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema(schemaName)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("normalize payload JSON: %w", err)
	}
	if err := json.Unmarshal(normalized, out); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	return nil
}

func validateProvider(raw string) error {
	if raw == "" {
		return nil
	}
	if _, ok := language.ParseProviderKind(raw); !ok {
		return fmt.Errorf("provider %q is not supported", raw)
	}
	return nil
}

func loadSchema(name string) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		sources := map[string]string{
			translateRequestSchema: translateRequestSchemaJSON,
			inputUpdateSchema:      inputUpdateSchemaJSON,
		}
		for resource, body := range sources {
			if err := compiler.AddResource(resource, strings.NewReader(body)); err != nil {
				compiledSchemaErr = fmt.Errorf("add schema resource %s: %w", resource, err)
				return
			}
		}

		schemas := make(map[string]*jsonschema.Schema, len(sources))
		for resource := range sources {
			schema, err := compiler.Compile(resource)
			if err != nil {
				compiledSchemaErr = fmt.Errorf("compile schema %s: %w", resource, err)
				return
			}
			schemas[resource] = schema
		}
		compiledSchemas = schemas
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	schema, ok := compiledSchemas[name]
	if !ok {
		return nil, fmt.Errorf("schema %s not initialized", name)
	}
	return schema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}
