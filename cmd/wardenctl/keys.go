package main

import (
	"fmt"

	"github.com/jrife/warden/variables"
	"github.com/spf13/cobra"
)

var setFlags struct {
	append bool
}

var getCmd = &cobra.Command{
	Use:   "get NAME KEY",
	Short: "Print every value stored under a key",
	Args:  cobra.ExactArgs(2),
	RunE:  getKey,
}

var setCmd = &cobra.Command{
	Use:   "set NAME KEY VALUE",
	Short: "Set the first value of a key",
	Long: `Set the first value of a key, storing it if the key holds no value
yet. With --append the value is added after the existing ones instead.`,
	Args: cobra.ExactArgs(3),
	RunE: setKey,
}

var delCmd = &cobra.Command{
	Use:   "del NAME KEY",
	Short: "Remove a key and all of its values",
	Args:  cobra.ExactArgs(2),
	RunE:  deleteKey,
}

func init() {
	setCmd.Flags().BoolVarP(&setFlags.append, "append", "a", false, "append instead of replacing the first value")

	rootCmd.AddCommand(getCmd, setCmd, delCmd)
}

func getKey(cmd *cobra.Command, args []string) error {
	base, err := openCollection(args[0])

	if err != nil {
		return err
	}

	defer base.Close()

	c, err := scope(base)

	if err != nil {
		return err
	}

	values := c.ResolveSingleMatch(args[1], nil)

	if len(values) == 0 {
		return fmt.Errorf("%s:%s is not set", args[0], args[1])
	}

	printValues(cmd.OutOrStdout(), values)

	return nil
}

func setKey(cmd *cobra.Command, args []string) error {
	if args[1] == "" {
		return fmt.Errorf("key must not be empty")
	}

	base, err := openCollection(args[0])

	if err != nil {
		return err
	}

	defer base.Close()

	c, err := scope(base)

	if err != nil {
		return err
	}

	if setFlags.append {
		c.Store(args[1], args[2])
	} else if !c.StoreOrUpdateFirst(args[1], args[2]) {
		return fmt.Errorf("could not set %s:%s", args[0], args[1])
	}

	printValues(cmd.OutOrStdout(), []*variables.VariableValue{variables.NewWithCollection(c.Name(), args[1], args[2])})

	return nil
}

func deleteKey(cmd *cobra.Command, args []string) error {
	base, err := openCollection(args[0])

	if err != nil {
		return err
	}

	defer base.Close()

	c, err := scope(base)

	if err != nil {
		return err
	}

	c.Delete(args[1])

	return nil
}
