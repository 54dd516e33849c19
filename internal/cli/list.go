package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/studyshelf/studyshelf/internal/api"
	"github.com/studyshelf/studyshelf/internal/gate"
	"github.com/studyshelf/studyshelf/internal/model"
)

var (
	listType    string
	listClass   string
	listBoard   string
	listSubject string
	listSearch  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog items",
	Long:  `List PDFs and video courses from the marketplace catalog.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Content type (pdf or video)")
	listCmd.Flags().StringVarP(&listClass, "class", "c", "", "Class track (class10, class11, class12, neet)")
	listCmd.Flags().StringVarP(&listBoard, "board", "b", "", "Syllabus board (state, cbse)")
	listCmd.Flags().StringVarP(&listSubject, "subject", "s", "", "Subject filter")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Search query")
}

func runList(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	classID := listClass
	if classID == "" {
		classID = app.Config.SelectedClass
	}
	board := listBoard
	if board == "" {
		board = app.Config.SelectedBoard
	}

	items, err := app.Client.Content(context.Background(), api.ContentFilters{
		Type:    listType,
		ClassID: classID,
		Board:   board,
		Subject: listSubject,
		Search:  listSearch,
	})
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("No items found.")
		return nil
	}

	fmt.Printf("%s catalog (%d items):\n\n", model.ClassName(classID), len(items))
	for _, item := range items {
		marker := "🔒"
		if gate.Unlocked(app.Ents, item) {
			marker = "✓"
		}
		fmt.Printf("  %s %-12s %-44s %-14s %s\n",
			marker, item.Key(), truncate(item.Title, 44), item.Subject, gate.Badge(item))
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
