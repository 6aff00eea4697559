package catalogs

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const itemsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "name"],
    "properties": {
      "id": {"type": "integer", "minimum": 0},
      "name": {"type": "string", "minLength": 1},
      "price": {"type": "integer", "minimum": 0},
      "tradeable": {"type": "boolean"},
      "noted": {"type": "boolean"},
      "common_shop": {"type": "boolean"},
      "player_sold": {"type": "boolean"}
    },
    "additionalProperties": false
  }
}`

const staticSpawnsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["pos", "item"],
    "properties": {
      "pos": {
        "type": "array",
        "items": {"type": "integer", "minimum": 0},
        "minItems": 3,
        "maxItems": 3
      },
      "item": {"type": "integer", "minimum": 0},
      "note": {"type": "string"}
    },
    "additionalProperties": false
  }
}`

const shopsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name", "items"],
    "properties": {
      "name": {"type": "string", "minLength": 1},
      "items": {"type": "array", "items": {"type": "integer", "minimum": 0}}
    },
    "additionalProperties": false
  }
}`

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func compiledSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		out := map[string]*jsonschema.Schema{}
		for name, src := range map[string]string{
			"items.json":         itemsSchema,
			"static_spawns.json": staticSpawnsSchema,
			"shops.json":         shopsSchema,
		} {
			s, err := jsonschema.CompileString(name+".schema", src)
			if err != nil {
				schemasErr = fmt.Errorf("compile %s schema: %w", name, err)
				return
			}
			out[name] = s
		}
		schemas = out
	})
	return schemas, schemasErr
}

// validate checks raw against the schema registered for file name.
func validate(name string, raw []byte) error {
	all, err := compiledSchemas()
	if err != nil {
		return err
	}
	s, ok := all[name]
	if !ok {
		return fmt.Errorf("%s: no schema", name)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
