package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/studyshelf/studyshelf/internal/model"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your orders",
	Long:  `List your orders from the marketplace ledger and refresh local entitlements.`,
	RunE:  runOrders,
}

var downloadsCmd = &cobra.Command{
	Use:   "downloads",
	Short: "List your purchased materials",
	RunE:  runDownloads,
}

func runOrders(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	token := app.Session.Token()
	if token == "" {
		return fmt.Errorf("please login first: studyshelf auth login")
	}

	list, err := app.Client.Orders(context.Background(), token)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}

	// The ledger is the source of truth; fold it into the local cache
	if _, err := app.Ents.MergeOrders(list); err != nil {
		fmt.Println("⚠ Could not update the local purchase cache:", err)
	}

	if len(list) == 0 {
		fmt.Println("No orders yet.")
		return nil
	}

	fmt.Printf("Orders (%d):\n\n", len(list))
	for _, o := range list {
		name := o.PackageType
		if len(o.Items) > 0 {
			name = o.Items[0].Name
		}
		line := fmt.Sprintf("  %-12s %-40s ₹%-6d %s", o.ID, truncate(name, 40), o.Amount, o.OrderStatus)
		if o.OrderType == "hardcopy" && o.TrackingID != "" {
			line += " • tracking " + o.TrackingID
		}
		fmt.Println(line)
	}
	return nil
}

func runDownloads(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	purchases := app.Ents.Purchases()
	var pdfLike []model.Purchase
	for _, p := range purchases {
		switch p.PackageType {
		case model.PackagePDFs, model.PackageBundle, model.PlanSinglePDF:
			pdfLike = append(pdfLike, p)
		}
	}

	if len(pdfLike) == 0 {
		fmt.Println("No purchases yet. Browse with: studyshelf list")
		return nil
	}

	fmt.Printf("You have access to %d item(s):\n\n", len(pdfLike))
	for _, p := range pdfLike {
		name := p.Name
		if name == "" {
			name = model.ClassName(p.ClassID) + " " + p.PackageType
		}
		fmt.Printf("  %-44s %s\n", truncate(name, 44), p.PurchasedAt.Format("02 Jan 2006"))
	}
	return nil
}
