package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/studyshelf/studyshelf/internal/gate"
	"github.com/studyshelf/studyshelf/internal/store"
)

var buyYes bool

var buyCmd = &cobra.Command{
	Use:   "buy <item-id>",
	Short: "Purchase a catalog item",
	Long: `Purchase a single PDF or video course by its catalog id.

Payment runs in demo mode: the order is created as completed without
contacting a payment gateway.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuy,
}

func init() {
	buyCmd.Flags().BoolVarP(&buyYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runBuy(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if !app.Session.IsAuthenticated() && app.Session.Token() == "" {
		return fmt.Errorf("please login first: studyshelf auth login")
	}

	item, err := app.Client.ContentByID(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load item: %w", err)
	}

	if gate.Unlocked(app.Ents, *item) {
		fmt.Println("Already unlocked, nothing to buy.")
		return nil
	}

	plan := store.PlanForItem(*item)
	fmt.Printf("%s\n  %s • ₹%d\n", plan.Name, plan.Type, plan.Price)

	if !buyYes {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Confirm purchase? [y/N]: ")
		answer, _ := reader.ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	// Drive the same purchase flow the TUI uses
	app.Store.OpenCheckout(plan)
	app.Store.SubmitPayment(context.Background())

	if app.Store.CheckoutPhase() != store.CheckoutSuccess {
		msg := app.Store.CheckoutError()
		if msg == "" {
			msg = "payment failed"
		}
		return fmt.Errorf("%s", msg)
	}

	app.Store.CloseModal()
	fmt.Printf("✅ Purchased %s. Find it under your downloads.\n", plan.Name)
	return nil
}
