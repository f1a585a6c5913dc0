package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/beka-birhanu/vinom-drift/identity"
	"github.com/spf13/cobra"
)

func init() {
	hashKeyCmd := &cobra.Command{
		Use:   "hash-key [key]",
		Short: "Print the bcrypt hash of a pilot key for PILOT_KEY_HASH",
		Long: `Check the strength of a pilot key and print its bcrypt hash. The key is
read from standard input when not given as an argument.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHashKey,
	}
	rootCmd.AddCommand(hashKeyCmd)
}

func runHashKey(cmd *cobra.Command, args []string) error {
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("no key given")
		}
		key = strings.TrimRight(line, "\r\n")
	}

	hash, err := identity.HashKey(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
