package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/qurvii/stylesync/internal/api"
)

var (
	loginEmployeeID int
	loginPassword   string

	registerUsername   string
	registerEmployeeID int
	registerPassword   string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the API session",
	Long:  `Sign in, register, inspect and end the stored API session.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with employee credentials",
	Long:  `Exchange employee credentials for a token pair and store it locally.`,
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long:  `Create a new operator account and sign it in immediately.`,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	Long:  `Invalidate the session server-side and remove the stored tokens.`,
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session status",
	Long:  `Display the signed-in user and access token expiry.`,
	RunE:  runStatus,
}

func init() {
	loginCmd.Flags().IntVar(&loginEmployeeID, "employee-id", 0, "Employee ID")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (falls back to STYLESYNC_PASSWORD)")

	registerCmd.Flags().StringVar(&registerUsername, "username", "", "Username (min 3 characters)")
	registerCmd.Flags().IntVar(&registerEmployeeID, "employee-id", 0, "Employee ID")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password (min 6 characters, falls back to STYLESYNC_PASSWORD)")

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  SIGNING IN")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	password := loginPassword
	if password == "" {
		password = os.Getenv("STYLESYNC_PASSWORD")
	}

	if loginEmployeeID <= 0 {
		color.Red("  Error: --employee-id is required")
		return fmt.Errorf("employee id is required")
	}
	if password == "" {
		color.Red("  Error: --password or STYLESYNC_PASSWORD is required")
		return fmt.Errorf("password is required")
	}

	client, _, _, err := newClient()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	user, err := client.Login(ctx, loginEmployeeID, password)
	if err != nil {
		color.Red("  Error: %s", api.ServerMessage(err, err.Error()))
		return err
	}

	success.Printf("  ✓ Signed in as %s (employee %d)\n", user.Username, user.EmployeeID)
	fmt.Println()
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  CREATING ACCOUNT")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	password := registerPassword
	if password == "" {
		password = os.Getenv("STYLESYNC_PASSWORD")
	}

	// Same client-side checks the signup form enforces.
	username := strings.TrimSpace(registerUsername)
	if len(username) < 3 {
		color.Red("  Error: username must be at least 3 characters")
		return fmt.Errorf("username too short")
	}
	if registerEmployeeID <= 0 {
		color.Red("  Error: --employee-id must be a positive number")
		return fmt.Errorf("invalid employee id")
	}
	if len(password) < 6 {
		color.Red("  Error: password must be at least 6 characters")
		return fmt.Errorf("password too short")
	}

	client, _, _, err := newClient()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	user, err := client.Register(ctx, username, registerEmployeeID, password)
	if err != nil {
		color.Red("  Error: %s", api.ServerMessage(err, err.Error()))
		return err
	}

	success.Printf("  ✓ Account created\n")
	success.Printf("  ✓ Signed in as %s (employee %d)\n", user.Username, user.EmployeeID)
	fmt.Println()
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  SIGNING OUT")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	client, store, _, err := newClient()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	if !store.Authenticated() {
		color.Yellow("  Not signed in.")
		fmt.Println()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := client.Logout(ctx); err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	success.Println("  ✓ Signed out")
	fmt.Println()
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  SESSION STATUS")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	client, store, cfg, err := newClient()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	color.Yellow("  API: %s\n", cfg.API.BaseURL)

	if !store.Authenticated() {
		color.Yellow("  Not signed in. Run 'stylesync auth login' first.")
		fmt.Println()
		return nil
	}

	if user := store.User(); user != nil {
		success.Printf("  ✓ Signed in as %s (employee %d)\n", user.Username, user.EmployeeID)
	} else {
		success.Println("  ✓ Signed in")
	}

	if expiry, err := store.AccessTokenExpiry(); err == nil {
		if time.Now().After(expiry) {
			color.Yellow("  Access token expired %s (refreshed on next request)", expiry.Format("2006-01-02 15:04"))
		} else {
			fmt.Printf("  Access token valid until %s\n", expiry.Format("2006-01-02 15:04"))
		}
	}

	// Confirm the tokens still work server-side.
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := client.Profile(ctx); err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			color.Yellow("  Session expired. Run 'stylesync auth login' again.")
		} else {
			color.Yellow("  Could not verify session: %v", err)
		}
	} else {
		success.Println("  ✓ Session verified with server")
	}
	fmt.Println()
	return nil
}
