// Package names provides embedded name lists for the name value generator.
// Each file holds one lower-case entry per line.
package names

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"strings"
)

//go:embed lists
var ListFS embed.FS

// Built-in list names.
const (
	FirstNames = "first_names"
	Surnames   = "surnames"
	Companies  = "companies"
)

// Load returns the entries of a built-in list, skipping blank lines.
func Load(list string) ([]string, error) {
	data, err := ListFS.ReadFile("lists/" + list + ".txt")
	if err != nil {
		return nil, fmt.Errorf("unknown name list %q: %w", list, err)
	}
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}
