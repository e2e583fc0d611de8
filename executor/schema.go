package executor

import (
	"bytes"
	"embed"

	"github.com/m-mizutani/goerr/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaAnalysis       = "analysis.json"
	schemaStrategy       = "strategy.json"
	schemaCandidate      = "candidate.json"
	schemaImplementation = "implementation.json"
	schemaEvaluation     = "evaluation.json"
)

var schemas map[string]*jsonschema.Schema

func init() {
	names := []string{
		schemaAnalysis,
		schemaStrategy,
		schemaCandidate,
		schemaImplementation,
		schemaEvaluation,
	}

	compiler := jsonschema.NewCompiler()
	for _, name := range names {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			panic("missing embedded schema: " + name)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			panic("broken embedded schema " + name + ": " + err.Error())
		}
		if err := compiler.AddResource(name, doc); err != nil {
			panic("failed to register schema " + name + ": " + err.Error())
		}
	}

	schemas = make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		schema, err := compiler.Compile(name)
		if err != nil {
			panic("failed to compile schema " + name + ": " + err.Error())
		}
		schemas[name] = schema
	}
}

// validateOutput checks a raw model response against the schema of its
// phase.
func validateOutput(schemaName string, raw []byte) error {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return goerr.Wrap(err, "model response is not valid JSON", goerr.V("schema", schemaName))
	}
	if err := schemas[schemaName].Validate(instance); err != nil {
		return goerr.Wrap(err, "model response violates schema", goerr.V("schema", schemaName))
	}
	return nil
}
