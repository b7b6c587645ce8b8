package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/indutny/sneequals/value"
)

// Error codes used in CLI responses.
const (
	ErrCodeNotFound    = "E_NOT_FOUND"
	ErrCodeBadFormat   = "E_BAD_FORMAT"
	ErrCodeBadSpec     = "E_BAD_SPEC"
	ErrCodeExec        = "E_EXEC"
	ErrCodeStore       = "E_STORE"
	ErrCodeUnsupported = "E_UNSUPPORTED"
)

// LoadDocument reads a document file into a value graph. The format is
// chosen by extension: .json, .yaml/.yml, or .cue (evaluated to a concrete
// value).
func LoadDocument(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("read document %s", path), err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var raw any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("parse JSON document %s", path), err)
		}
		return value.FromAny(raw), nil

	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("parse YAML document %s", path), err)
		}
		return value.FromAny(raw), nil

	case ".cue":
		return loadCUEDocument(path, data)

	default:
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("unsupported document format %q (want .json, .yaml, .yml, or .cue)", filepath.Ext(path)))
	}
}

// loadCUEDocument evaluates a single CUE file to a concrete value.
func loadCUEDocument(path string, data []byte) (value.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("compile CUE document %s", path), err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("CUE document %s is not concrete", path), err)
	}

	var raw any
	if err := v.Decode(&raw); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("decode CUE document %s", path), err)
	}
	return value.FromAny(raw), nil
}
