package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zoobzio/zin"
)

func (a *app) putCmd() *cobra.Command {
	var asString bool
	cmd := &cobra.Command{
		Use:   "put [key] [value]",
		Short: "Store a value",
		Long: `Store a value under a key. The value is read as JSON when it parses as JSON
(numbers, booleans, arrays, objects) and as a plain string otherwise. Use
--string to always store a string. The JSON literal null deletes the key.`,
		Args: cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string, s *session) error {
			var value any = args[1]
			if !asString {
				value = parseValue(args[1])
			}
			if err := s.z.Put(args[0], value); err != nil {
				return err
			}
			a.log.Info().Str("key", args[0]).Msg("stored")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&asString, "string", false, "store the value as a string without parsing")
	return cmd
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print a value",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string, s *session) error {
			v, ok := s.z.Get(args[0])
			if !ok {
				return fmt.Errorf("key %q not found", args[0])
			}
			out, err := formatValue(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}),
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [key]",
		Short: "Delete a value",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string, s *session) error {
			if !s.z.Delete(args[0]) {
				return fmt.Errorf("could not delete %q", args[0])
			}
			return nil
		}),
	}
}

func (a *app) containsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contains [key]",
		Short: "Report whether a key is stored",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string, s *session) error {
			fmt.Fprintln(cmd.OutOrStdout(), s.z.Contains(args[0]))
			return nil
		}),
	}
}

func (a *app) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored keys",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string, s *session) error {
			fmt.Fprintln(cmd.OutOrStdout(), s.z.Count())
			return nil
		}),
	}
}

func (a *app) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored value",
		Long:  "Delete every stored value. The key file is kept, so new values use the same key.",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string, s *session) error {
			if !s.z.DeleteAll() {
				return fmt.Errorf("could not clear the store")
			}
			a.log.Info().Msg("cleared")
			return nil
		}),
	}
}

func (a *app) gcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Reclaim space from deleted and overwritten values",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string, s *session) error {
			if err := s.db.Cleanup(); err != nil {
				return fmt.Errorf("garbage collection failed: %w", err)
			}
			a.log.Info().Msg("garbage collection finished")
			return nil
		}),
	}
}

// parseValue reads s as JSON, falling back to the string itself. Whole
// numbers become int64 so they read back as integers.
func parseValue(s string) any {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return s
	}
	return normalize(v)
}

// normalize replaces json.Number, which is a string underneath, with a
// Go number so every parser stores it as one.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}

// formatValue prints strings bare and everything else as JSON.
func formatValue(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("formatting %s value: %w", describe(v), err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func describe(v any) string {
	d, err := zin.Describe(v)
	if err != nil {
		return fmt.Sprintf("%T", v)
	}
	return d.String()
}
