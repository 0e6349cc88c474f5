package main

import (
	"encoding/json"
	"fmt"
	"io"
)

// writeJSON 以单行 JSON 输出 v
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	return enc.Encode(v)
}

// writeField 以 "name = value" 的形式输出一行，name 左对齐到 width
func writeField(w io.Writer, width int, name string, value interface{}) {
	fmt.Fprintf(w, "%-*s = %v\n", width, name, value)
}
