// Package quality evaluates CPO quality readings against configurable CEL rules.
// Matching rules produce alerts; they never reject a record.
package quality

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
)

// Rule is a named boolean CEL expression over one tank's readings.
//
// Variables: tank (int), level_cm, temperature, ffa, moisture, dobi (double)
// and has_ffa, has_moisture, has_dobi (bool) telling whether a reading was taken.
type Rule struct {
	Name string `json:"name"`
	Expr string `json:"expr"`
}

// DefaultRules are used when no rules are configured.
var DefaultRules = []Rule{
	{Name: "high_ffa", Expr: "has_ffa && ffa > 5.0"},
	{Name: "high_moisture", Expr: "has_moisture && moisture > 0.25"},
	{Name: "low_dobi", Expr: "has_dobi && dobi < 2.0"},
}

// ParseRules reads "name=expr;name=expr". Blank input yields DefaultRules.
func ParseRules(spec string) ([]Rule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return DefaultRules, nil
	}
	var rules []Rule
	for _, part := range strings.Split(spec, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, expr, ok := strings.Cut(part, "=")
		name, expr = strings.TrimSpace(name), strings.TrimSpace(expr)
		if !ok || name == "" || expr == "" {
			return nil, fmt.Errorf("quality rule %q: want name=expression", part)
		}
		rules = append(rules, Rule{Name: name, Expr: expr})
	}
	return rules, nil
}

// Sample is the input of one evaluation.
type Sample struct {
	Tank        int
	LevelCm     float64
	Temperature float64
	FFA         *float64
	Moisture    *float64
	Dobi        *float64
}

func (s Sample) activation() map[string]any {
	return map[string]any{
		"tank":         int64(s.Tank),
		"level_cm":     s.LevelCm,
		"temperature":  s.Temperature,
		"ffa":          valueOr(s.FFA),
		"moisture":     valueOr(s.Moisture),
		"dobi":         valueOr(s.Dobi),
		"has_ffa":      s.FFA != nil,
		"has_moisture": s.Moisture != nil,
		"has_dobi":     s.Dobi != nil,
	}
}

func valueOr(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

type compiledRule struct {
	name string
	prg  cel.Program
}

// Evaluator holds compiled rules. It is safe for concurrent use.
type Evaluator struct {
	rules []compiledRule
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("tank", cel.IntType),
		cel.Variable("level_cm", cel.DoubleType),
		cel.Variable("temperature", cel.DoubleType),
		cel.Variable("ffa", cel.DoubleType),
		cel.Variable("moisture", cel.DoubleType),
		cel.Variable("dobi", cel.DoubleType),
		cel.Variable("has_ffa", cel.BoolType),
		cel.Variable("has_moisture", cel.BoolType),
		cel.Variable("has_dobi", cel.BoolType),
	)
}

// NewEvaluator compiles rules. Every rule must type-check to bool.
func NewEvaluator(rules []Rule) (*Evaluator, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	ev := &Evaluator{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		ast, iss := env.Compile(r.Expr)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("compile quality rule %s: %w", r.Name, iss.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("quality rule %s must return bool, got %s", r.Name, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program quality rule %s: %w", r.Name, err)
		}
		ev.rules = append(ev.rules, compiledRule{name: r.Name, prg: prg})
	}
	return ev, nil
}

// Evaluate returns the names of matching rules prefixed with the tank, e.g. "tank2:high_ffa".
// A rule that fails at runtime is reported as an error and skipped.
func (e *Evaluator) Evaluate(s Sample) ([]string, error) {
	if e == nil {
		return nil, nil
	}
	vars := s.activation()

	var alerts []string
	var errs []string
	for _, r := range e.rules {
		out, _, err := r.prg.Eval(vars)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", r.name, err))
			continue
		}
		if matched, ok := out.Value().(bool); ok && matched {
			alerts = append(alerts, fmt.Sprintf("tank%d:%s", s.Tank, r.name))
		}
	}
	if len(errs) > 0 {
		return alerts, fmt.Errorf("evaluate quality rules: %s", strings.Join(errs, "; "))
	}
	return alerts, nil
}
