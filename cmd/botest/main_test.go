// Tests for the botest CLI commands
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopDefs = "testdata/shop.yaml"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := rootCmd()
	root.SetArgs(args)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func decodeLines(t *testing.T, s string) []jsonObject {
	t.Helper()
	var objs []jsonObject
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		var o jsonObject
		require.NoError(t, json.Unmarshal(sc.Bytes(), &o))
		objs = append(objs, o)
	}
	return objs
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	t.Run("valid definitions", func(t *testing.T) {
		t.Parallel()
		out, _, err := execute(t, "validate", shopDefs)
		require.NoError(t, err)
		assert.Contains(t, out, "Class definitions valid: 3 classes")
		for _, class := range []string{"Country", "Customer", "Order"} {
			assert.Contains(t, out, class)
		}
		assert.Contains(t, out, "botest generate --class Country "+shopDefs)
	})

	t.Run("single class", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "one.yaml")
		require.NoError(t, os.WriteFile(path, []byte("classes:\n  Tag:\n    properties:\n      Label: {type: string}\n"), 0o600))
		out, _, err := execute(t, "validate", path)
		require.NoError(t, err)
		assert.Contains(t, out, "1 class\n")
	})

	t.Run("invalid definitions", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("classes:\n  A:\n    relationships:\n      B: Missing\n"), 0o600))
		_, _, err := execute(t, "validate", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Missing")
	})

	t.Run("missing argument", func(t *testing.T) {
		t.Parallel()
		_, _, err := execute(t, "validate")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing class definition file")
	})
}

func TestGenerateCommand(t *testing.T) {
	t.Parallel()

	t.Run("table output", func(t *testing.T) {
		t.Parallel()
		out, _, err := execute(t, "generate", "--class", "Order", "--count", "2", "--seed", "42", shopDefs)
		require.NoError(t, err)
		assert.Contains(t, out, "ORDERID", "headers are upper cased by the table style")
		lines := strings.Split(strings.TrimSpace(out), "\n")
		assert.Greater(t, len(lines), 4)
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()
		out, _, err := execute(t, "generate", "--class", "Customer", "--count", "3", "--format", "json", shopDefs)
		require.NoError(t, err)
		objs := decodeLines(t, out)
		require.Len(t, objs, 3)
		for _, o := range objs {
			assert.Equal(t, "Customer", o.Class)
			assert.NotEmpty(t, o.Values["CustomerID"])
			assert.NotEmpty(t, o.Values["Country"], "compulsory relationship is set")
			assert.NotContains(t, o.Values, "Email")
		}
	})

	t.Run("all props", func(t *testing.T) {
		t.Parallel()
		out, _, err := execute(t, "generate", "--class", "Customer", "--all-props", "--format", "json", shopDefs)
		require.NoError(t, err)
		objs := decodeLines(t, out)
		require.Len(t, objs, 1)
		assert.Regexp(t, `^[a-z]{5}@example\.com$`, objs[0].Values["Email"])
		assert.Equal(t, objs[0].Values["Country"], objs[0].Values["CountryRef"])
	})

	t.Run("seeded output is reproducible", func(t *testing.T) {
		t.Parallel()
		args := []string{"generate", "--class", "Country", "--seed", "7", "--format", "json", shopDefs}
		first, _, err := execute(t, args...)
		require.NoError(t, err)
		second, _, err := execute(t, args...)
		require.NoError(t, err)
		assert.Equal(t, decodeLines(t, first)[0].Values, decodeLines(t, second)[0].Values)
	})

	t.Run("sqlite store", func(t *testing.T) {
		t.Parallel()
		dsn := filepath.Join(t.TempDir(), "out.db")
		_, _, err := execute(t, "generate", "--class", "Order", "--count", "2", "--store", "sqlite", "--dsn", dsn, shopDefs)
		require.NoError(t, err)
		info, err := os.Stat(dsn)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})

	t.Run("trace and verbose write to stderr", func(t *testing.T) {
		t.Parallel()
		out, errOut, err := execute(t, "generate", "--class", "Country", "--trace", "--verbose", "--format", "json", shopDefs)
		require.NoError(t, err)
		assert.Len(t, decodeLines(t, out), 1)
		assert.Contains(t, errOut, "CreateValidBusinessObject")
		assert.Contains(t, errOut, "generated business objects")
	})

	t.Run("metrics write to stderr", func(t *testing.T) {
		t.Parallel()
		out, errOut, err := execute(t, "generate", "--class", "Order", "--count", "2", "--metrics", "--format", "json", shopDefs)
		require.NoError(t, err)
		assert.Len(t, decodeLines(t, out), 2)
		assert.Contains(t, errOut, "botest.objects.created")
		assert.Contains(t, errOut, "botest.object.create.duration")
		assert.NotContains(t, out, "botest.objects.created")
	})

	t.Run("config file", func(t *testing.T) {
		t.Parallel()
		cfg := filepath.Join(t.TempDir(), "botest.yaml")
		require.NoError(t, os.WriteFile(cfg, []byte("class: Country\ncount: 2\nformat: json\n"), 0o600))
		out, _, err := execute(t, "generate", "--config", cfg, shopDefs)
		require.NoError(t, err)
		assert.Len(t, decodeLines(t, out), 2)
	})

	errorCases := []struct {
		name string
		args []string
		want string
	}{
		{"missing class", []string{"generate", shopDefs}, "missing --class"},
		{"unknown class", []string{"generate", "--class", "Planet", shopDefs}, "Planet"},
		{"bad format", []string{"generate", "--class", "Order", "--format", "xml", shopDefs}, "unknown format"},
		{"negative count", []string{"generate", "--class", "Order", "--count", "-1", shopDefs}, "non-negative"},
		{"bad driver", []string{"generate", "--class", "Order", "--store", "oracle", shopDefs}, "unsupported driver"},
		{"missing file", []string{"generate", "--class", "Order", "nope.yaml"}, "reading class definitions"},
		{"missing argument", []string{"generate", "--class", "Order"}, "missing class definition file"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := execute(t, tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "botest dev")
}
