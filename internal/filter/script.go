// Script predicates evaluate a user-supplied JavaScript match(record)
// function against each record using the Goja engine.
package filter

import (
	"fmt"
	"log/slog"

	"github.com/dop251/goja"

	"github.com/ecanbaykurt/Project-Explorer/internal/logger"
)

// Error codes for script predicates
const (
	ErrCodeScriptEmpty       = "SCRIPT_EMPTY"
	ErrCodeScriptTooLong     = "SCRIPT_TOO_LONG"
	ErrCodeCompilationFailed = "COMPILATION_FAILED"
	ErrCodeMissingMatch      = "MISSING_MATCH"
	ErrCodeNotFunction       = "NOT_FUNCTION"
	ErrCodeExecutionFailed   = "EXECUTION_FAILED"
)

// MaxScriptLength is the maximum allowed script length in bytes (100KB).
const MaxScriptLength = 100 * 1024

// ScriptError carries structured context for script predicate failures.
type ScriptError struct {
	Code        string
	Message     string
	RecordIndex int
}

func (e *ScriptError) Error() string {
	return e.Message
}

func newScriptError(code, message string, recordIdx int) *ScriptError {
	return &ScriptError{
		Code:        code,
		Message:     message,
		RecordIndex: recordIdx,
	}
}

// scriptPredicate wraps a compiled Goja runtime exposing match(record).
//
// Goja runtimes are not goroutine-safe; a Predicate holding a script must not
// be shared across concurrent Apply calls. Script predicates are accepted
// from local configuration only, so each session compiles its own.
type scriptPredicate struct {
	source  string
	runtime *goja.Runtime
	matchFn goja.Callable
}

// compileScript validates and compiles a script predicate. The script must
// define a top-level function match(record) returning a truthy/falsy value.
func compileScript(source string) (*scriptPredicate, error) {
	if source == "" {
		return nil, newScriptError(ErrCodeScriptEmpty, "script cannot be empty", -1)
	}
	if len(source) > MaxScriptLength {
		return nil, newScriptError(ErrCodeScriptTooLong,
			fmt.Sprintf("script exceeds maximum length: %d bytes exceeds %d", len(source), MaxScriptLength), -1)
	}

	vm := goja.New()
	if _, err := vm.RunString(source); err != nil {
		return nil, newScriptError(ErrCodeCompilationFailed,
			fmt.Sprintf("script compilation failed: %v", err), -1)
	}

	matchValue := vm.Get("match")
	if matchValue == nil || goja.IsUndefined(matchValue) || goja.IsNull(matchValue) {
		return nil, newScriptError(ErrCodeMissingMatch, "match function not found in script", -1)
	}
	matchFn, ok := goja.AssertFunction(matchValue)
	if !ok {
		return nil, newScriptError(ErrCodeNotFunction, "match is not a function", -1)
	}

	logger.Debug("script predicate compiled", slog.Int("script_length", len(source)))

	return &scriptPredicate{
		source:  source,
		runtime: vm,
		matchFn: matchFn,
	}, nil
}

// match evaluates the script against one record's field map.
func (s *scriptPredicate) match(fields map[string]interface{}, recordIdx int) (bool, error) {
	result, err := s.matchFn(goja.Undefined(), s.runtime.ToValue(fields))
	if err != nil {
		return false, newScriptError(ErrCodeExecutionFailed,
			fmt.Sprintf("script evaluation failed at record %d: %v", recordIdx, err), recordIdx)
	}
	return result.ToBoolean(), nil
}
