package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/bishiboosh/properties-serializer/internal/shape"
)

var errNotTable = errors.New("properties root is not a table")

var flattenCmd = &cobra.Command{
	Use:   "flatten [flags] file.toml",
	Short: "Convert a TOML document to properties",
	Long: `Flatten turns nested TOML tables into dotted keys and arrays into
numbered keys: [db] host = "h" becomes db.host=h and ports = [80, 443]
becomes ports.0=80 and ports.1=443. Keys are written in sorted order.`,
	Args: cobra.ExactArgs(1),
	RunE: runFlatten,
}

var expandCmd = &cobra.Command{
	Use:   "expand [flags] file.properties",
	Short: "Convert properties to a TOML document",
	Long: `Expand is the reverse of flatten: dotted keys become tables, and keys
numbered 0..n-1 below the same parent become an array. Values stay strings
unless --infer is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	flattenCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
	expandCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
	expandCmd.Flags().Bool("infer", false, "turn booleans and numbers back into TOML scalars")
}

func runFlatten(cmd *cobra.Command, args []string) (err error) {
	s := sessionOf(cmd)
	outPath, err := flagString(cmd, "output")
	if err != nil {
		return err
	}

	var doc map[string]any
	if args[0] == "-" {
		_, err = toml.NewDecoder(os.Stdin).Decode(&doc)
	} else {
		_, err = toml.DecodeFile(args[0], &doc)
	}
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", args[0], err)
	}

	w, closeOut, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); err == nil {
			err = cerr
		}
	}()
	return s.format.EncodeTo(cmd.Context(), w, doc, shape.Tree())
}

func runExpand(cmd *cobra.Command, args []string) (err error) {
	s := sessionOf(cmd)
	outPath, err := flagString(cmd, "output")
	if err != nil {
		return err
	}
	infer, err := flagBool(cmd, "infer")
	if err != nil {
		return err
	}

	_, m, err := s.loadFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	v, err := s.format.DecodeFromMap(cmd.Context(), m, shape.Tree())
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	doc, err := asTable(v)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if infer {
		doc = inferScalars(doc).(map[string]any)
	}

	w, closeOut, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); err == nil {
			err = cerr
		}
	}()
	return writeTOML(w, doc)
}

func asTable(v any) (map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return t, nil
	case []any:
		return nil, fmt.Errorf("%w: keys 0..%d form an array", errNotTable, len(t)-1)
	}
	return nil, fmt.Errorf("%w: the empty key holds a value", errNotTable)
}

// inferScalars rewrites strings that read as booleans, integers or floats.
func inferScalars(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = inferScalars(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = inferScalars(e)
		}
		return t
	case string:
		if b, err := strconv.ParseBool(t); err == nil && (t == "true" || t == "false") {
			return b
		}
		if n, err := strconv.ParseInt(t, 10, 64); err == nil && strconv.FormatInt(n, 10) == t {
			return n
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil && strconv.FormatFloat(f, 'g', -1, 64) == t {
			return f
		}
	}
	return v
}

func writeTOML(w io.Writer, doc map[string]any) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	return enc.Encode(doc)
}
