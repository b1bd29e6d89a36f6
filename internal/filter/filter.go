// Package filter implements the filter engine: pure, order-preserving
// selection of project records according to a FilterState.
//
// A record matches iff every active predicate holds (logical AND); within the
// category set, membership is logical OR. Filtering performs no I/O and the
// same (Dataset, FilterState) pair always yields the same view.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ecanbaykurt/Project-Explorer/internal/dataset"
	"github.com/ecanbaykurt/Project-Explorer/internal/logger"
	"github.com/ecanbaykurt/Project-Explorer/pkg/explorer"
)

// Error codes for filter evaluation
const (
	ErrCodeInvalidExpression = "INVALID_EXPRESSION"
	ErrCodeEvaluationFailed  = "EVALUATION_FAILED"
	ErrCodeNotBoolean        = "NOT_BOOLEAN"
)

// ErrInvalidExpression is returned when the expression syntax is invalid.
var ErrInvalidExpression = errors.New("invalid expression syntax")

// EvalError carries structured context for predicate evaluation failures.
type EvalError struct {
	Code        string
	Message     string
	Expression  string
	RecordIndex int
}

func (e *EvalError) Error() string {
	return e.Message
}

func newEvalError(code, message, expression string, recordIdx int) *EvalError {
	return &EvalError{
		Code:        code,
		Message:     message,
		Expression:  expression,
		RecordIndex: recordIdx,
	}
}

// Predicate is a compiled FilterState. Compilation happens once per state so
// the expression and script predicates are not re-parsed per record.
type Predicate struct {
	state      explorer.FilterState
	categories map[string]struct{}
	search     string
	program    *vm.Program
	script     *scriptPredicate
}

// Compile validates a FilterState and compiles its expression and script
// predicates. A zero-value state compiles to a match-everything predicate.
func Compile(state explorer.FilterState) (*Predicate, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}

	p := &Predicate{
		state:  state,
		search: strings.ToLower(state.Search),
	}

	if len(state.Categories) > 0 {
		p.categories = make(map[string]struct{}, len(state.Categories))
		for _, c := range state.Categories {
			p.categories[c] = struct{}{}
		}
	}

	if state.Expression != "" {
		// AllowUndefinedVariables keeps records without coordinates from
		// failing expressions that never touch x/y/z.
		program, err := expr.Compile(state.Expression, expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
		}
		p.program = program
	}

	if state.Script != "" {
		script, err := compileScript(state.Script)
		if err != nil {
			return nil, err
		}
		p.script = script
	}

	return p, nil
}

// Match reports whether the record satisfies every active predicate.
// recordIdx is used only for error context.
func (p *Predicate) Match(rec explorer.ProjectRecord, recordIdx int) (bool, error) {
	if p.categories != nil {
		if _, ok := p.categories[rec.Category]; !ok {
			return false, nil
		}
	}
	if r := p.state.LaunchYear; r != nil && !r.Contains(rec.LaunchYear) {
		return false, nil
	}
	if r := p.state.TeamSize; r != nil && !r.Contains(rec.TeamSize) {
		return false, nil
	}
	if r := p.state.Funding; r != nil && !r.Contains(rec.Funding) {
		return false, nil
	}
	if r := p.state.SuccessRate; r != nil && !r.Contains(rec.SuccessRate) {
		return false, nil
	}
	if p.search != "" {
		if !strings.Contains(strings.ToLower(rec.Title), p.search) &&
			!strings.Contains(strings.ToLower(rec.Description), p.search) {
			return false, nil
		}
	}

	if p.program != nil {
		output, err := expr.Run(p.program, rec.Fields())
		if err != nil {
			return false, newEvalError(
				ErrCodeEvaluationFailed,
				fmt.Sprintf("expression evaluation failed at record %d: %v", recordIdx, err),
				p.state.Expression,
				recordIdx,
			)
		}
		result, ok := output.(bool)
		if !ok {
			return false, newEvalError(
				ErrCodeNotBoolean,
				fmt.Sprintf("expression returned %T at record %d, expected bool", output, recordIdx),
				p.state.Expression,
				recordIdx,
			)
		}
		if !result {
			return false, nil
		}
	}

	if p.script != nil {
		result, err := p.script.match(rec.Fields(), recordIdx)
		if err != nil {
			return false, err
		}
		if !result {
			return false, nil
		}
	}

	return true, nil
}

// Apply filters the dataset's records through the given FilterState.
//
// The returned view is a stable subsequence of the dataset: matching records
// appear in their original relative order. A zero-value FilterState returns
// every record.
func Apply(ds *dataset.Dataset, state explorer.FilterState) ([]explorer.ProjectRecord, error) {
	pred, err := Compile(state)
	if err != nil {
		return nil, err
	}
	return applyCompiled(ds, pred)
}

func applyCompiled(ds *dataset.Dataset, pred *Predicate) ([]explorer.ProjectRecord, error) {
	start := time.Now()
	view := make([]explorer.ProjectRecord, 0, len(ds.Records))
	for i, rec := range ds.Records {
		ok, err := pred.Match(rec, i)
		if err != nil {
			return nil, err
		}
		if ok {
			view = append(view, rec)
		}
	}
	logger.LogFilterApplied(pred.state.Key(), len(ds.Records), len(view), false, time.Since(start))
	return view, nil
}
