package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gigspace/gigspace/internal/api"
)

var (
	gigsCategory string
	gigsSearch   string
	gigsMine     bool
)

func init() {
	rootCmd.AddCommand(gigsCmd)
	gigsCmd.AddCommand(gigsListCmd)
	gigsCmd.AddCommand(gigsShowCmd)

	gigsListCmd.Flags().StringVar(&gigsCategory, "category", "", "filter by category name")
	gigsListCmd.Flags().StringVar(&gigsSearch, "search", "", "full-text search in title and description")
	gigsListCmd.Flags().BoolVar(&gigsMine, "mine", false, "only gigs owned by the signed-in freelancer")
}

var gigsCmd = &cobra.Command{
	Use:   "gigs",
	Short: "Browse service listings",
}

var gigsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List gigs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSession()
		if err != nil {
			return err
		}
		if _, err := requireSession(store); err != nil {
			return err
		}
		client, err := newClient(store)
		if err != nil {
			return err
		}

		gigs, err := client.ListGigs(context.Background(), api.GigFilter{
			Category: gigsCategory,
			Search:   gigsSearch,
			Mine:     gigsMine,
		})
		if err != nil {
			return fmt.Errorf("list gigs: %w", err)
		}

		if jsonOutput {
			return writeJSON(os.Stdout, gigs)
		}
		if len(gigs) == 0 {
			printf("No gigs found.\n")
			return nil
		}

		rows := make([][]string, 0, len(gigs))
		for _, gig := range gigs {
			rows = append(rows, []string{
				gig.ID,
				truncateCell(gig.Title, 40),
				gig.Seller.DisplayName,
				fmt.Sprintf("$%.2f", gig.Price),
				fmt.Sprintf("%dd", gig.DeliveryDays),
				fmt.Sprintf("%.1f", gig.AverageRating),
			})
		}
		return writeTable(os.Stdout, []string{"ID", "TITLE", "SELLER", "PRICE", "DELIVERY", "RATING"}, rows)
	},
}

var gigsShowCmd = &cobra.Command{
	Use:   "show <gig-id>",
	Short: "Show one gig in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSession()
		if err != nil {
			return err
		}
		if _, err := requireSession(store); err != nil {
			return err
		}
		client, err := newClient(store)
		if err != nil {
			return err
		}

		gig, err := client.GetGig(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("get gig: %w", err)
		}

		if jsonOutput {
			return writeJSON(os.Stdout, gig)
		}

		printf("%s\n", gig.Title)
		printf("seller:    %s\n", gig.Seller.DisplayName)
		printf("category:  %s\n", gig.CategoryName)
		printf("price:     $%.2f\n", gig.Price)
		printf("delivery:  %d days\n", gig.DeliveryDays)
		printf("rating:    %.1f (%d orders)\n", gig.AverageRating, gig.TotalOrders)
		if len(gig.Tags) > 0 {
			printf("tags:      %s\n", strings.Join(gig.Tags, ", "))
		}
		if gig.Description != "" {
			printf("\n%s\n", gig.Description)
		}
		return nil
	},
}

func truncateCell(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
