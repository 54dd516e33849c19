package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/studyshelf/studyshelf/internal/model"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage authentication with the StudyShelf marketplace.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the marketplace",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and clear the local session",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE:  runRegister,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE:  runStatus,
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your profile",
	RunE:  runUpdate,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(updateCmd)
}

func readLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func readPassword(prompt string) string {
	fmt.Print(prompt)
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return string(passwordBytes)
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	reader := bufio.NewReader(os.Stdin)
	identifier := readLine(reader, "Phone / Email: ")
	password := readPassword("Password: ")

	fmt.Println("🔄 Logging in...")
	result := app.Session.Login(context.Background(), identifier, password)
	if !result.Success {
		return fmt.Errorf("login failed: %s", result.Message)
	}

	fmt.Println("✅ Logged in successfully!")

	// Pull the order ledger so entitlements are ready offline
	if err := app.Refresher.RefreshNow(context.Background()); err == nil {
		fmt.Printf("📦 %d purchase(s) available locally.\n", len(app.Ents.Purchases()))
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if !app.Session.IsAuthenticated() && app.Session.Token() == "" {
		fmt.Println("Not logged in.")
		return nil
	}

	app.Session.Logout()
	fmt.Println("✅ Logged out successfully.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	reader := bufio.NewReader(os.Stdin)
	profile := model.UserProfile{
		Name:    readLine(reader, "Full Name: "),
		Phone:   readLine(reader, "Phone Number: "),
		Email:   readLine(reader, "Email (optional): "),
		ClassID: app.Config.SelectedClass,
		Board:   app.Config.SelectedBoard,
	}

	if errs := model.ValidateProfile(profile); len(errs) > 0 {
		for _, msg := range errs {
			fmt.Println("❌", msg)
		}
		return fmt.Errorf("invalid profile")
	}

	password := readPassword("Password: ")
	confirm := readPassword("Confirm Password: ")

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	fmt.Println("🔄 Creating account...")
	data, err := app.Client.Register(context.Background(), profile, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	app.Session.Register(data.User, data.Token)
	fmt.Println("✅ Account created and logged in!")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Printf("Server: %s\n", app.Config.ServerURL)

	u := app.Session.User()
	if app.Session.Token() == "" || u == nil {
		fmt.Println("Session: not logged in")
		return nil
	}

	fmt.Printf("Session: %s (%s)\n", u.Name, u.Phone)
	fmt.Printf("Class:   %s\n", model.ClassName(u.ClassID))
	fmt.Printf("Purchases cached locally: %d\n", len(app.Ents.Purchases()))

	if notes, err := app.Client.Notifications(context.Background(), app.Session.Token()); err == nil {
		unread := 0
		for _, n := range notes {
			if !n.Read {
				unread++
			}
		}
		fmt.Printf("Notifications: %d (%d unread)\n", len(notes), unread)
	}
	return nil
}

// runUpdate edits the profile field by field; empty input keeps the
// current value. The profile is replaced wholesale on the backend.
func runUpdate(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	current := app.Session.User()
	if app.Session.Token() == "" || current == nil {
		return fmt.Errorf("please login first: studyshelf auth login")
	}

	reader := bufio.NewReader(os.Stdin)
	keep := func(entered, existing string) string {
		if entered == "" {
			return existing
		}
		return entered
	}

	profile := model.UserProfile{
		ID:      current.ID,
		Name:    keep(readLine(reader, fmt.Sprintf("Full Name [%s]: ", current.Name)), current.Name),
		Phone:   keep(readLine(reader, fmt.Sprintf("Phone Number [%s]: ", current.Phone)), current.Phone),
		Email:   keep(readLine(reader, fmt.Sprintf("Email [%s]: ", current.Email)), current.Email),
		ClassID: keep(readLine(reader, fmt.Sprintf("Class [%s]: ", current.ClassID)), current.ClassID),
		Board:   keep(readLine(reader, fmt.Sprintf("Board [%s]: ", current.Board)), current.Board),
	}

	if errs := model.ValidateProfile(profile); len(errs) > 0 {
		for _, msg := range errs {
			fmt.Println("❌", msg)
		}
		return fmt.Errorf("invalid profile")
	}

	if err := app.Session.UpdateProfile(context.Background(), profile); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Println("✅ Profile updated.")
	return nil
}
