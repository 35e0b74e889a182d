// Text file generator: samples one line of a cached plain text corpus
package generate

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/andrewh/botest/pkg/random"
)

// TextFileGenerator returns a random line of a file, parsed as the property
// type. The file is read once per State; missing and empty files are errors.
type TextFileGenerator struct {
	def   *bo.PropDef
	rand  *random.Rand
	lines []string
}

// NewTextFile builds a generator over the file named by env.Param.
func NewTextFile(def *bo.PropDef, env Env) (Generator, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	path, ok := env.Param.(string)
	if !ok || path == "" {
		return nil, registrationError("text file generator for %s needs a file path parameter", def.Key())
	}
	env = env.withDefaults()
	lines, err := env.State.fileLines(path, func() ([]string, error) { return readLines(path) })
	if err != nil {
		return nil, err
	}
	return &TextFileGenerator{def: def, rand: env.Rand, lines: lines}, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // sample file path is supplied by the test author
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExternalResource, err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrExternalResource, path, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s has no values", ErrExternalResource, path)
	}
	return lines, nil
}

func (g *TextFileGenerator) GenerateValidValue(_ context.Context) (any, error) {
	line := g.lines[g.rand.Pick(len(g.lines))]
	if g.def.Type == bo.TypeString || g.def.Type == bo.TypeEnum {
		return line, nil
	}
	v, err := bo.ParseValue(g.def.Type, line)
	if err != nil {
		return nil, fmt.Errorf("text file value for %s: %w", g.def.Key(), err)
	}
	return v, nil
}
