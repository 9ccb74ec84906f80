package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	errKeyNotFound = errors.New("key not found")
	errEditStdin   = errors.New("cannot edit stdin in place")
)

var getCmd = &cobra.Command{
	Use:   "get file.properties key",
	Short: "Print the value of one key",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

var setCmd = &cobra.Command{
	Use:   "set file.properties key value",
	Short: "Set one key, creating the file if needed",
	Long: `Set stores value under key and rewrites the file in normalized form.
Comments and blank lines are not kept.`,
	Args: cobra.ExactArgs(3),
	RunE: runSet,
}

var unsetCmd = &cobra.Command{
	Use:   "unset file.properties key",
	Short: "Remove one key",
	Args:  cobra.ExactArgs(2),
	RunE:  runUnset,
}

func init() {
	getCmd.Flags().String("default", "", "value printed when the key is absent")
	setCmd.Flags().Bool("create", true, "create the file when it does not exist")
	unsetCmd.Flags().Bool("ignore-missing", false, "succeed when the key is absent")
}

func runGet(cmd *cobra.Command, args []string) error {
	s := sessionOf(cmd)
	_, m, err := s.loadFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	v, ok := m.Get(args[1])
	if !ok {
		if !cmd.Flags().Changed("default") {
			return fmt.Errorf("%s: %w: %q", args[0], errKeyNotFound, args[1])
		}
		if v, err = flagString(cmd, "default"); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

func runSet(cmd *cobra.Command, args []string) error {
	s := sessionOf(cmd)
	path, key, value := args[0], args[1], args[2]
	if path == "-" {
		return errEditStdin
	}
	create, err := flagBool(cmd, "create")
	if err != nil {
		return err
	}

	m, err := s.loadOrEmpty(cmd, path, create)
	if err != nil {
		return err
	}
	if old, ok := m.Get(key); ok && old == value {
		return nil
	}
	m.Put(key, value)
	return writeFileAtomic(path, render(m))
}

func runUnset(cmd *cobra.Command, args []string) error {
	s := sessionOf(cmd)
	path, key := args[0], args[1]
	if path == "-" {
		return errEditStdin
	}
	ignoreMissing, err := flagBool(cmd, "ignore-missing")
	if err != nil {
		return err
	}

	_, m, err := s.loadFile(cmd.Context(), path)
	if err != nil {
		return err
	}
	if !m.Delete(key) {
		if ignoreMissing {
			return nil
		}
		return fmt.Errorf("%s: %w: %q", path, errKeyNotFound, key)
	}
	return writeFileAtomic(path, render(m))
}
