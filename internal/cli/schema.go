// Copyright 2021 The questal Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// validateSchema checks a JSON body against the JSON Schema in the
// named file.
func validateSchema(file, body string) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	compiler := jsonschema.NewCompiler()
	if err = compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	if !gjson.Valid(body) {
		return errors.New("response body is not JSON")
	}
	if err = schema.Validate(gjson.Parse(body).Value()); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}
