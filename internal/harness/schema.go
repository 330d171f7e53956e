package harness

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource string

// SchemaError reports a scenario that does not satisfy the scenario schema,
// positioned in the scenario file.
type SchemaError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *SchemaError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// checkSchema validates raw scenario YAML against #Scenario.
//
// The YAML is converted to CUE so that schema errors carry positions in the
// scenario file rather than in the schema.
func checkSchema(filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return formatCUEError(err, filename)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return formatCUEError(err, filename)
	}

	v := schema.LookupPath(cue.ParsePath("#Scenario")).Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err, filename)
	}
	return nil
}

// formatCUEError extracts the first error from a CUE error, preferring a
// position inside filename.
func formatCUEError(err error, filename string) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	field := strings.Join(first.Path(), ".")
	if field == "" {
		field = "scenario"
	}
	format, args := first.Msg()
	schemaErr := &SchemaError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
	for i, pos := range errors.Positions(first) {
		if i == 0 || pos.Filename() == filename {
			schemaErr.Pos = pos
		}
		if pos.Filename() == filename {
			break
		}
	}
	return schemaErr
}
