package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bishiboosh/properties-serializer/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "props",
	Short: "Inspect, edit and convert .properties files",
	Long: `props reads and writes Java-style .properties files, normalizes them,
and converts between TOML documents and flat dotted keys.`,
	SilenceUsage:      true,
	PersistentPreRunE: openSession,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(unsetCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("config", "", "path to props.toml (default: nearest one above the working directory)")
	pf.Bool("cache", false, "reuse parsed files from the on-disk cache")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")
}

func main() {
	if err := execute(context.Background(), os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// execute runs the command line args and releases the session afterwards.
func execute(ctx context.Context, args []string) error {
	// Commands keep the context of a previous run.
	for _, c := range rootCmd.Commands() {
		c.SetContext(ctx)
	}
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if s := sessionOf(rootCmd); s != nil {
		s.close(err)
	}
	return err
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of f, 0 when it is not a terminal.
func terminalWidth(f *os.File) int {
	if !isTerminal(f) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

func flagString(cmd *cobra.Command, name string) (string, error) {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	return v, nil
}

func flagBool(cmd *cobra.Command, name string) (bool, error) {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	return v, nil
}

func flagInt(cmd *cobra.Command, name string) (int, error) {
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	return v, nil
}
