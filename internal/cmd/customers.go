package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flanux/bankportal/internal/errors"
)

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List customers",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := buildStack()
		if err != nil {
			return err
		}

		customers, err := st.client.Customers(cmd.Context())
		if err != nil {
			if errors.Is(err, errors.ErrUnauthorized) {
				return fmt.Errorf("session expired, log in again")
			}
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tEMAIL\tPHONE")
		for _, c := range customers {
			fmt.Fprintf(w, "%s %s\t%s\t%s\n", c.FirstName, c.LastName, c.Email, c.Phone)
		}
		return w.Flush()
	},
}
