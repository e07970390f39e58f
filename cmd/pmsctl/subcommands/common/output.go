package common

import (
	"encoding/json"
	"io"
	"os"
)

// Dump writes v as indented JSON.
func Dump(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

// ReadSource reads a file, or stdin when path is "-".
func ReadSource(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
