package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flanux/bankportal/routeguard"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := buildStack()
		if err != nil {
			return err
		}

		sess := st.store.Current()
		if decision := routeguard.Decide(sess, routeguard.RouteDashboard); !decision.Render() {
			fmt.Printf("Not logged in (would redirect to %s)\n", decision.RedirectTo)
			return nil
		}

		fmt.Printf("User:     %s (%s)\n", sess.Principal.Name, sess.Principal.Username)
		fmt.Printf("Role:     %s\n", sess.Principal.Role)
		if sess.Principal.BranchID != "" {
			fmt.Printf("Branch:   %s\n", sess.Principal.BranchID)
		}
		if sess.Principal.CustomerID != "" {
			fmt.Printf("Customer: %s\n", sess.Principal.CustomerID)
		}
		if !sess.IssuedAt.IsZero() {
			fmt.Printf("Since:    %s\n", sess.IssuedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}
