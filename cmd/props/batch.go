package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bishiboosh/properties-serializer/internal/proptext"
)

var (
	errCheckFailed  = errors.New("some files failed to parse")
	errNotFormatted = errors.New("some files are not formatted")
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] path...",
	Short: "Parse properties files and report syntax errors",
	Long: `Check parses every given file, and every *.properties file below given
directories, in parallel. It exits non-zero when any file fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] path...",
	Short: "Rewrite properties files in normalized form",
	Long: `Fmt rewrites every given file, and every *.properties file below given
directories, with one escaped key=value line per entry. Comments, blank lines
and continuations are dropped. With --check nothing is written and the files
that would change are listed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFmt,
}

func init() {
	checkCmd.Flags().Int("jobs", 0, "max parallel files (0 = props.toml or GOMAXPROCS)")
	checkCmd.Flags().BoolP("quiet", "q", false, "only print failures")
	fmtCmd.Flags().Int("jobs", 0, "max parallel files (0 = props.toml or GOMAXPROCS)")
	fmtCmd.Flags().Bool("check", false, "list files that would change without writing them")
}

// fileResult is the outcome for one file; indexes are unique per goroutine.
type fileResult struct {
	path    string
	keys    int
	changed bool
	err     error
}

// listPropertiesFiles expands directories into their *.properties files,
// sorted. Plain file arguments are kept as given.
func listPropertiesFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		isDir, err := statArg(arg)
		if err != nil {
			return nil, err
		}
		if !isDir {
			files = append(files, arg)
			continue
		}
		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".properties") {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func statArg(arg string) (isDir bool, err error) {
	if arg == "-" {
		return false, nil
	}
	info, err := os.Stat(arg)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (s *session) jobs(cmd *cobra.Command) (int, error) {
	jobs, err := flagInt(cmd, "jobs")
	if err != nil {
		return 0, err
	}
	if jobs <= 0 {
		jobs = s.cfg.Check.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return jobs, nil
}

// eachFile runs fn over files with at most jobs in flight. Per-file failures
// are stored in the results; only cancellation stops the batch.
func eachFile(ctx context.Context, files []string, jobs int, fn func(ctx context.Context, res *fileResult)) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	if len(files) == 0 {
		return results, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i].path = path
			fn(gctx, &results[i])
			return nil
		})
	}
	return results, g.Wait()
}

func runCheck(cmd *cobra.Command, args []string) error {
	s := sessionOf(cmd)
	jobs, err := s.jobs(cmd)
	if err != nil {
		return err
	}
	quiet, err := flagBool(cmd, "quiet")
	if err != nil {
		return err
	}
	files, err := listPropertiesFiles(args)
	if err != nil {
		return err
	}

	results, err := eachFile(cmd.Context(), files, jobs, func(ctx context.Context, res *fileResult) {
		_, m, err := s.loadFile(ctx, res.path)
		if err != nil {
			res.err = err
			return
		}
		res.keys = m.Len()
	})
	if err != nil {
		return err
	}
	return reportCheck(cmd.OutOrStdout(), results, quiet)
}

func reportCheck(w io.Writer, results []fileResult, quiet bool) error {
	okMark := color.New(color.FgGreen).Sprint("ok")
	failMark := color.New(color.FgRed, color.Bold).Sprint("FAIL")

	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			fmt.Fprintf(w, "%s %s\n", failMark, describeError(res.path, res.err))
			continue
		}
		if !quiet {
			fmt.Fprintf(w, "%s   %s (%s keys)\n", okMark, res.path, strconv.Itoa(res.keys))
		}
	}
	if failed > 0 {
		fmt.Fprintf(w, "%d of %d files failed\n", failed, len(results))
		return errCheckFailed
	}
	return nil
}

// describeError renders a syntax error as "path:line: message".
func describeError(path string, err error) string {
	var se *proptext.SyntaxError
	if errors.As(err, &se) {
		return fmt.Sprintf("%s:%d: %v (byte %d)", path, se.Line, se.Err, se.Offset)
	}
	return err.Error()
}

func runFmt(cmd *cobra.Command, args []string) error {
	s := sessionOf(cmd)
	jobs, err := s.jobs(cmd)
	if err != nil {
		return err
	}
	checkOnly, err := flagBool(cmd, "check")
	if err != nil {
		return err
	}
	files, err := listPropertiesFiles(args)
	if err != nil {
		return err
	}
	for _, f := range files {
		if f == "-" {
			return errEditStdin
		}
	}

	results, err := eachFile(cmd.Context(), files, jobs, func(ctx context.Context, res *fileResult) {
		data, m, err := s.loadFile(ctx, res.path)
		if err != nil {
			res.err = err
			return
		}
		formatted := render(m)
		res.keys = m.Len()
		res.changed = !bytes.Equal(data, formatted)
		if res.changed && !checkOnly {
			res.err = writeFileAtomic(res.path, formatted)
		}
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var failed, changed int
	for _, res := range results {
		switch {
		case res.err != nil:
			failed++
			fmt.Fprintln(cmd.ErrOrStderr(), describeError(res.path, res.err))
		case res.changed:
			changed++
			fmt.Fprintln(out, res.path)
		}
	}
	if failed > 0 {
		return errCheckFailed
	}
	if checkOnly && changed > 0 {
		return errNotFormatted
	}
	return nil
}
