package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bishiboosh/properties-serializer/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := flagString(cmd, "format")
		if err != nil {
			return err
		}
		full, err := flagBool(cmd, "full")
		if err != nil {
			return err
		}
		payload := versionPayload{
			Tool:    "props",
			Version: strings.TrimSpace(version.Version),
		}
		if payload.Version == "" {
			payload.Version = "dev"
		}
		if full {
			payload.GitCommit = valueOrUnknown(strings.TrimSpace(version.GitCommit))
			payload.BuildDate = valueOrUnknown(strings.TrimSpace(version.BuildDate))
		}

		switch strings.ToLower(format) {
		case "pretty":
			renderVersionPretty(cmd.OutOrStdout(), payload)
			return nil
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
		}
	},
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().Bool("full", false, "include commit and build date")
}

func renderVersionPretty(out io.Writer, p versionPayload) {
	fmt.Fprintf(out, "props %s\n", version.Colored(p.Version))
	if p.GitCommit != "" {
		fmt.Fprintf(out, "commit: %s\n", p.GitCommit)
	}
	if p.BuildDate != "" {
		fmt.Fprintf(out, "built:  %s\n", p.BuildDate)
	}
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
