// Table and JSON rendering of generated business objects
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
)

type renderFunc func(w io.Writer, class *bo.ClassDef, objs []*bo.Object) error

func renderer(format string) (renderFunc, error) {
	switch format {
	case "", "table":
		return renderTable, nil
	case "json":
		return renderJSON, nil
	}
	return nil, fmt.Errorf("unknown format %q: use table or json", format)
}

// columns lists properties, then single relationships, in declaration order.
func columns(class *bo.ClassDef) []string {
	var cols []string
	for _, p := range class.Props() {
		cols = append(cols, p.Name)
	}
	for _, r := range class.Relationships() {
		if r.Kind == bo.Single {
			cols = append(cols, r.Name)
		}
	}
	return cols
}

func cell(obj *bo.Object, name string) string {
	if obj.Class().HasRelationship(name) {
		if id, ok := obj.RelatedID(name); ok {
			return id.String()
		}
		return ""
	}
	switch v := obj.Value(name).(type) {
	case nil:
		return ""
	case time.Time:
		return v.Format(time.RFC3339)
	case decimal.Decimal:
		return v.String()
	case *bo.Object:
		return v.ID().String()
	default:
		return fmt.Sprint(v)
	}
}

func renderTable(w io.Writer, class *bo.ClassDef, objs []*bo.Object) error {
	cols := columns(class)
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"#"}
	for _, c := range cols {
		header = append(header, c)
	}
	t.AppendHeader(header)
	for i, obj := range objs {
		row := table.Row{i + 1}
		for _, c := range cols {
			row = append(row, cell(obj, c))
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d %s", len(objs), class.Name)})
	t.Render()
	return nil
}

type jsonObject struct {
	Class  string            `json:"class"`
	ID     string            `json:"id"`
	Values map[string]string `json:"values"`
}

func renderJSON(w io.Writer, class *bo.ClassDef, objs []*bo.Object) error {
	enc := json.NewEncoder(w)
	cols := columns(class)
	for _, obj := range objs {
		out := jsonObject{Class: class.Name, ID: obj.ID().String(), Values: make(map[string]string)}
		for _, c := range cols {
			if s := cell(obj, c); s != "" {
				out.Values[c] = s
			}
		}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encoding %s: %w", class.Name, err)
		}
	}
	return nil
}
