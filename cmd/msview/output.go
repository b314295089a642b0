package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/bpowers/msview/reshape"
)

// viewJSON is the json output: the view kind and its columns in order.
type viewJSON struct {
	Kind    string       `json:"kind"`
	Rows    int          `json:"rows"`
	Columns []columnJSON `json:"columns"`
}

type columnJSON struct {
	Name   string `json:"name"`
	Values any    `json:"values"`
}

func writeView(w io.Writer, v reshape.View, format string) error {
	switch format {
	case "json":
		return writeJSON(w, v)
	case "jsonl":
		return writeJSONL(w, v)
	case "arrow":
		return writeArrow(w, v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeJSON(w io.Writer, v reshape.View) error {
	out := viewJSON{Kind: v.Kind().String(), Rows: v.Len()}
	for _, name := range v.Columns() {
		data, err := v.Column(name)
		if err != nil {
			return err
		}
		out.Columns = append(out.Columns, columnJSON{Name: name, Values: data})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// writeJSONL writes one object per row keyed by column name.
func writeJSONL(w io.Writer, v reshape.View) error {
	names := v.Columns()
	cols := make([]any, len(names))
	for i, name := range names {
		data, err := v.Column(name)
		if err != nil {
			return err
		}
		cols[i] = data
	}

	enc := json.NewEncoder(w)
	for row := 0; row < v.Len(); row++ {
		obj := make(map[string]any, len(names))
		for i, name := range names {
			obj[name] = cell(cols[i], row)
		}
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("encode jsonl: %w", err)
		}
	}
	return nil
}

// cell returns entry row of a view column, or nil for a null entry.
func cell(data any, row int) any {
	switch d := data.(type) {
	case []int32:
		return d[row]
	case []uint16:
		return d[row]
	case []uint32:
		return d[row]
	case []uint64:
		return d[row]
	case []float32:
		return d[row]
	case []float64:
		return d[row]
	case [][]float32:
		return d[row]
	case [][]uint16:
		return d[row]
	case [][]reshape.Point:
		return d[row]
	case [][]reshape.Peak:
		return d[row]
	case reshape.Nullable[float32]:
		if v, ok := d.Get(row); ok {
			return v
		}
		return nil
	case reshape.Nullable[uint16]:
		if v, ok := d.Get(row); ok {
			return v
		}
		return nil
	default:
		return nil
	}
}

// writeArrow writes the view as an Arrow IPC stream.
func writeArrow(w io.Writer, v reshape.View) error {
	mem := memory.NewGoAllocator()
	rec, err := reshape.ToRecord(v, mem)
	if err != nil {
		return err
	}
	defer rec.Release()

	wr := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err := wr.Write(rec); err != nil {
		wr.Close()
		return fmt.Errorf("write arrow: %w", err)
	}
	return wr.Close()
}
