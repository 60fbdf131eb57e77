package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/flanux/bankportal/internal/config"
	"github.com/flanux/bankportal/internal/errors"
	"github.com/flanux/bankportal/session"
)

var (
	flagUsername   string
	flagPassword   string
	flagBranchCode string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and persist the session",
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "username")
	loginCmd.Flags().StringVarP(&flagPassword, "password", "p", "", "password (prompted when omitted)")
	loginCmd.Flags().StringVar(&flagBranchCode, "branch-code", "", "branch code (branch portal)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	st, err := buildStack()
	if err != nil {
		return err
	}

	username := flagUsername
	if username == "" {
		fmt.Print("Username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		username = strings.TrimSpace(line)
	}

	password := flagPassword
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return err
		}
		password = string(raw)
	}

	creds := session.Credentials{Username: username, Password: password}
	if st.portal == config.PortalBranch {
		creds.BranchCode = flagBranchCode
	}

	if err := st.store.Login(cmd.Context(), creds); err != nil {
		switch {
		case errors.Is(err, errors.ErrInvalidCredentials):
			return fmt.Errorf("invalid credentials")
		case errors.Is(err, errors.ErrNetworkFailure):
			return fmt.Errorf("could not reach the backend, try again")
		default:
			return err
		}
	}

	sess := st.store.Current()
	if sess == nil {
		return nil
	}
	fmt.Printf("Logged in as %s (%s)\n", sess.Principal.Name, sess.Principal.Role)
	return nil
}
