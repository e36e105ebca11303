package template

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/ospreyhq/osprey-cli/pkg/types"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Engine expands ${...} placeholders in URL templates against a flat
// variable namespace. Templates are parsed once and cached by source text;
// no functions are exposed to the evaluation context, so a template can only
// ever look up named values.
type Engine struct {
	log types.Logger

	mu    sync.RWMutex
	cache map[string]hcl.Expression
}

// NewEngine creates a template engine
func NewEngine(log types.Logger) *Engine {
	return &Engine{
		log:   log,
		cache: make(map[string]hcl.Expression),
	}
}

// maxExpandPasses bounds nested substitution: a variable's value may itself
// reference other variables (a versioned CDN_LOCATION referencing VERSION)
const maxExpandPasses = 8

// Expand substitutes every known placeholder in src, repeating until the
// result is stable, and strips one trailing slash. Strings without template
// markers come back unchanged; placeholders that name no variable stay in
// place verbatim.
func (e *Engine) Expand(src string, vars map[string]interface{}) (string, error) {
	if !strings.Contains(src, "${") {
		return src, nil
	}

	out := src
	for pass := 0; pass < maxExpandPasses; pass++ {
		next, err := e.expandOnce(out, vars)
		if err != nil {
			return "", err
		}
		if next == out {
			break
		}
		out = next
		if !strings.Contains(out, "${") {
			break
		}
	}

	return strings.TrimSuffix(out, "/"), nil
}

// expandOnce runs a single substitution pass
func (e *Engine) expandOnce(src string, vars map[string]interface{}) (string, error) {
	expr, err := e.compile(src)
	if err != nil {
		e.log.Error("template parse failed", "template", src, "error", err)
		return "", err
	}

	ctx := &hcl.EvalContext{Variables: bindVariables(expr, vars)}

	value, diags := expr.Value(ctx)
	if diags.HasErrors() {
		err := types.WrapError(types.ErrInvalidTemplate, fmt.Sprintf("evaluating %q: %s", src, diags.Error()))
		e.log.Error("template evaluation failed", "template", src, "error", diags.Error())
		return "", err
	}

	str, convErr := convert.Convert(value, cty.String)
	if convErr != nil {
		err := types.WrapError(types.ErrInvalidTemplate, fmt.Sprintf("converting %q: %v", src, convErr))
		e.log.Error("template result is not a string", "template", src, "error", convErr)
		return "", err
	}

	return str.AsString(), nil
}

// compile parses src, consulting the expression cache first
func (e *Engine) compile(src string) (hcl.Expression, error) {
	e.mu.RLock()
	expr, ok := e.cache[src]
	e.mu.RUnlock()
	if ok {
		return expr, nil
	}

	parsed, diags := hclsyntax.ParseTemplate([]byte(src), "url-template", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, types.WrapError(types.ErrInvalidTemplate, fmt.Sprintf("parsing %q: %s", src, diags.Error()))
	}

	e.mu.Lock()
	e.cache[src] = parsed
	e.mu.Unlock()

	return parsed, nil
}

// bindVariables converts vars into cty values for every name the template
// references. Names without a usable value are bound to their own ${name}
// text, which leaves the placeholder untouched in the output.
func bindVariables(expr hcl.Expression, vars map[string]interface{}) map[string]cty.Value {
	bound := make(map[string]cty.Value)

	for _, traversal := range expr.Variables() {
		name := traversal.RootName()
		if _, done := bound[name]; done {
			continue
		}

		if value, ok := vars[name]; ok {
			if ctyVal, ok := toCty(value); ok {
				bound[name] = ctyVal
				continue
			}
		}
		bound[name] = cty.StringVal("${" + name + "}")
	}

	return bound
}

// toCty converts a configuration value to cty; compound values do not take
// part in templating
func toCty(value interface{}) (cty.Value, bool) {
	switch v := value.(type) {
	case string:
		return cty.StringVal(v), true
	case bool:
		return cty.BoolVal(v), true
	case float64:
		return cty.NumberFloatVal(v), true
	case int:
		return cty.NumberIntVal(int64(v)), true
	case int64:
		return cty.NumberIntVal(v), true
	default:
		return cty.NilVal, false
	}
}
