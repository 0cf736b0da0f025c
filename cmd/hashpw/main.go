// Command hashpw prints the bcrypt hash to put in ADMIN_PASSWORD_HASH.
//
//	hashpw 'correct horse'
//	echo 'correct horse' | hashpw
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/seat-booking/internal/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hashpw [password]",
		Short: "Hash an admin password for ADMIN_PASSWORD_HASH",
		Long: `Hash an admin password with bcrypt.

The password is taken from the first argument, or from the first line of
standard input when no argument is given.  Only the hash is printed.
`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, err := readPassword(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			hash, err := utils.HashPassword(plain, cost)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

func readPassword(in io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
