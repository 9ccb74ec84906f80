package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/bishiboosh/properties-serializer/internal/flatmap"
	"github.com/bishiboosh/properties-serializer/internal/proptext"
)

var showCmd = &cobra.Command{
	Use:   "show [flags] file.properties",
	Short: "Print the entries of a properties file",
	Long: `Show parses a properties file (- for stdin) and prints its entries.
pretty aligns keys and shortens long values to the terminal width, props
prints the normalized file, json prints an object in file order.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().String("format", "pretty", "output format (pretty|props|json)")
	showCmd.Flags().String("prefix", "", "only show keys at or below this dotted tag")
}

func runShow(cmd *cobra.Command, args []string) error {
	s := sessionOf(cmd)
	format := s.cfg.Output.Format
	if cmd.Flags().Changed("format") {
		var err error
		if format, err = flagString(cmd, "format"); err != nil {
			return err
		}
	}
	prefix, err := flagString(cmd, "prefix")
	if err != nil {
		return err
	}

	_, m, err := s.loadFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if prefix != "" {
		m = subtree(m, prefix)
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	switch format {
	case "pretty":
		renderPretty(out, m, terminalWidth(os.Stdout))
	case "props":
		err = proptext.Write(out, m)
	case "json":
		err = renderJSON(out, m)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}
	return out.Flush()
}

// subtree keeps the entries whose key is tag or starts with tag + ".".
func subtree(m *flatmap.Map, tag string) *flatmap.Map {
	out := flatmap.New(0)
	for k, v := range m.All() {
		if k == tag || strings.HasPrefix(k, tag+flatmap.Separator) {
			out.Put(k, v)
		}
	}
	return out
}

var controlEscapes = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`, "\f", `\f`)

// renderPretty prints "key = value" lines with keys padded to a common
// display width. With width > 0 values are cut to fit.
func renderPretty(w io.Writer, m *flatmap.Map, width int) {
	keyWidth := 0
	for k := range m.All() {
		keyWidth = max(keyWidth, runewidth.StringWidth(k))
	}
	keyColor := color.New(color.FgCyan)
	sepColor := color.New(color.Faint)
	emptyColor := color.New(color.Faint, color.Italic)

	for k, v := range m.All() {
		v = controlEscapes.Replace(v)
		if avail := width - keyWidth - 3; width > 0 && avail > 3 && runewidth.StringWidth(v) > avail {
			v = runewidth.Truncate(v, avail, "...")
		}
		if v == "" {
			v = emptyColor.Sprint("(empty)")
		}
		pad := strings.Repeat(" ", keyWidth-runewidth.StringWidth(k))
		fmt.Fprintf(w, "%s%s %s %s\n", keyColor.Sprint(k), pad, sepColor.Sprint("="), v)
	}
}

// renderJSON prints m as one JSON object, keeping file order.
func renderJSON(w io.Writer, m *flatmap.Map) error {
	if m.Len() == 0 {
		_, err := io.WriteString(w, "{}\n")
		return err
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	i := 0
	for k, v := range m.All() {
		key, err := json.Marshal(k)
		if err != nil {
			return err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return err
		}
		sb.WriteString("  ")
		sb.Write(key)
		sb.WriteString(": ")
		sb.Write(val)
		if i++; i < m.Len() {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
