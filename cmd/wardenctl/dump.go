package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jrife/warden/variables"
	"github.com/spf13/cobra"
)

var dumpFlags struct {
	key     string
	regex   string
	exclude []string
	raw     bool
}

var dumpCmd = &cobra.Command{
	Use:   "dump NAME",
	Short: "Print the entries of a collection",
	Long: `Print the entries of a collection as NAME:KEY=VALUE lines in the order
a rule resolving the whole collection would see them. Keys are
addressed like get, set and del address them unless --raw is given.

Exclusions written as /pattern/ are regular expressions, any other
exclusion matches one key exactly.`,
	Args: cobra.ExactArgs(1),
	RunE: dumpCollection,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpFlags.key, "key", "k", "", "only print entries stored under this key")
	dumpCmd.Flags().StringVarP(&dumpFlags.regex, "regex", "r", "", "only print entries whose key matches this pattern")
	dumpCmd.Flags().StringSliceVarP(&dumpFlags.exclude, "exclude", "x", nil, "leave out keys matching this exclusion")
	dumpCmd.Flags().BoolVar(&dumpFlags.raw, "raw", false, "print the stored keys as is, ignoring compartments")

	rootCmd.AddCommand(dumpCmd)
}

func parseExclusions(exclusions []string) (variables.KeyExclusions, error) {
	var ke variables.KeyExclusions

	for _, exclusion := range exclusions {
		if len(exclusion) > 1 && strings.HasPrefix(exclusion, "/") && strings.HasSuffix(exclusion, "/") {
			re, err := variables.NewRegexKeyExclusion(exclusion[1 : len(exclusion)-1])

			if err != nil {
				return nil, err
			}

			ke = append(ke, re)

			continue
		}

		ke = append(ke, variables.ExactKeyExclusion(exclusion))
	}

	return ke, nil
}

func printValues(w io.Writer, values []*variables.VariableValue) {
	for _, value := range values {
		fmt.Fprintf(w, "%s=%s\n", value.KeyWithCollection(), value.Value())
	}
}

func dumpCollection(cmd *cobra.Command, args []string) error {
	if dumpFlags.key != "" && dumpFlags.regex != "" {
		return fmt.Errorf("--key and --regex are mutually exclusive")
	}

	ke, err := parseExclusions(dumpFlags.exclude)

	if err != nil {
		return err
	}

	if dumpFlags.regex != "" {
		if _, err := variables.CompilePattern(dumpFlags.regex); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", dumpFlags.regex, err)
		}
	}

	base, err := openCollection(args[0])

	if err != nil {
		return err
	}

	defer base.Close()

	c := base

	if !dumpFlags.raw {
		if c, err = scope(base); err != nil {
			return err
		}
	}

	var values []*variables.VariableValue

	if dumpFlags.regex != "" {
		values = c.ResolveRegularExpression(dumpFlags.regex, values, ke)
	} else {
		values = c.ResolveMultiMatches(dumpFlags.key, values, ke)
	}

	printValues(cmd.OutOrStdout(), values)

	return nil
}
