package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearAll bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the local purchase cache",
	Long: `Clear the locally cached purchase set. Entitlements are restored from
the order ledger on the next login or orders fetch; nothing is deleted
on the server. With --all the local session is cleared too.`,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearAll, "all", false, "Also clear the local session")
}

func runClear(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Clear the local purchase cache? [y/N]: ")
	answer, _ := reader.ReadString('\n')
	if !strings.EqualFold(strings.TrimSpace(answer), "y") {
		fmt.Println("Cancelled.")
		return nil
	}

	if _, err := app.DB.Exec(`DELETE FROM purchases`); err != nil {
		return fmt.Errorf("failed to clear purchases: %w", err)
	}
	fmt.Println("✅ Local purchase cache cleared.")

	if clearAll {
		app.Session.Logout()
		fmt.Println("✅ Session cleared.")
	}
	return nil
}
