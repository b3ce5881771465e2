package config

import "github.com/santhosh-tekuri/jsonschema/v5"

const runSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "grid": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "height": {"type": "integer", "minimum": 4},
        "width": {"type": "integer", "minimum": 8},
        "stand_still": {"type": "boolean"}
      }
    },
    "run": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "episodes": {"type": "integer", "minimum": 0},
        "seed": {"type": "integer"},
        "max_steps": {"type": "integer", "minimum": 1},
        "step_delay_ms": {"type": "integer", "minimum": 0},
        "policy": {"enum": ["random", "scripted"]},
        "script": {
          "type": "array",
          "items": {"type": "integer", "minimum": 0, "maximum": 4}
        }
      }
    }
  }
}`

var runSchema = jsonschema.MustCompileString("windyrl.schema.json", runSchemaJSON)
