package model

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/cv.schema.json
var cvSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(cvSchema)

// ValidateMap validates a generic map against the CV schema.
func ValidateMap(m map[string]interface{}) error {
	return validate(gojsonschema.NewGoLoader(m))
}

// Validate validates a typed CV by round-tripping it through JSON so that
// omitempty fields are treated the same way the client sends them.
func Validate(cv CV) error {
	b, err := json.Marshal(cv)
	if err != nil {
		return err
	}
	return validate(gojsonschema.NewBytesLoader(b))
}

func validate(doc gojsonschema.JSONLoader) error {
	res, err := gojsonschema.Validate(schemaLoader, doc)
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}
