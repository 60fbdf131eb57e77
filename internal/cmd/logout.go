package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	Long: `Clears the local session unconditionally and notifies the backend on a
best-effort basis. A failing backend never blocks the local teardown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := buildStack()
		if err != nil {
			return err
		}
		st.store.Logout(cmd.Context())
		fmt.Println("Logged out")
		return nil
	},
}
