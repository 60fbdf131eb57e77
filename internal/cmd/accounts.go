package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flanux/bankportal/internal/errors"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := buildStack()
		if err != nil {
			return err
		}

		accounts, err := st.client.Accounts(cmd.Context())
		if err != nil {
			if errors.Is(err, errors.ErrUnauthorized) {
				return fmt.Errorf("session expired, log in again")
			}
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NUMBER\tCUSTOMER\tTYPE\tBALANCE\tSTATUS")
		for _, a := range accounts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n", a.AccountNumber, a.CustomerName, a.Type, a.Balance, a.Status)
		}
		return w.Flush()
	},
}
