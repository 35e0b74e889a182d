// Regular expression generator: strings matching a pattern, produced in
// process by gofakeit or by an external rex-style command
package generate

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/brianvoe/gofakeit/v6"
)

// RegexParam configures NewRegex.
type RegexParam struct {
	Pattern string
	// Command, when set, names an executable invoked as
	// `Command "<pattern>" /encoding:ASCII`; its standard output is the value.
	Command string
}

// RegexGenerator produces strings matching a regular expression.
type RegexGenerator struct {
	pattern string
	command string
	faker   *gofakeit.Faker
}

// NewRegex builds a regular expression generator. env.Param is a pattern
// string or a RegexParam; without one the pattern of the property's string
// rule is used. A configured command that cannot be found is an error.
func NewRegex(def *bo.PropDef, env Env) (Generator, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	env = env.withDefaults()

	var p RegexParam
	switch v := env.Param.(type) {
	case nil:
	case string:
		p.Pattern = v
	case RegexParam:
		p = v
	default:
		return nil, fmt.Errorf("regex generator for %s: unsupported parameter %T", def.Key(), env.Param)
	}
	if p.Pattern == "" {
		if rule, ok := bo.RuleOf[*bo.StringRule](def); ok {
			p.Pattern = rule.Pattern
		}
	}
	if p.Pattern == "" {
		return nil, registrationError("regex generator for %s has no pattern", def.Key())
	}

	g := &RegexGenerator{pattern: p.Pattern}
	if p.Command != "" {
		path, err := exec.LookPath(p.Command)
		if err != nil {
			return nil, fmt.Errorf("%w: regex command %q: %w", ErrExternalResource, p.Command, err)
		}
		g.command = path
		return g, nil
	}
	g.faker = gofakeit.New(int64(env.Rand.Uint64() >> 1))
	return g, nil
}

func (g *RegexGenerator) GenerateValidValue(ctx context.Context) (any, error) {
	if g.command == "" {
		return g.faker.Regex(g.pattern), nil
	}
	out, err := exec.CommandContext(ctx, g.command, g.pattern, "/encoding:ASCII").Output() //nolint:gosec // command is configured by the test author
	if err != nil {
		return nil, fmt.Errorf("%w: running %s: %w", ErrExternalResource, g.command, err)
	}
	return strings.TrimRight(string(out), "\r\n"), nil
}
