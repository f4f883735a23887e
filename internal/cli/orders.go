package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ordersCmd)
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your orders",
	Long:  "List orders where the signed-in user is the buyer or the seller.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSession()
		if err != nil {
			return err
		}
		sess, err := requireSession(store)
		if err != nil {
			return err
		}
		client, err := newClient(store)
		if err != nil {
			return err
		}

		orders, err := client.ListOrders(context.Background())
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}

		if jsonOutput {
			return writeJSON(os.Stdout, orders)
		}
		if len(orders) == 0 {
			printf("No orders.\n")
			return nil
		}

		rows := make([][]string, 0, len(orders))
		for _, order := range orders {
			side := "buying"
			counterparty := order.Seller.DisplayName
			if order.Seller.ID == sess.User.ID {
				side = "selling"
				counterparty = order.Buyer.DisplayName
			}
			rows = append(rows, []string{
				order.ID,
				truncateCell(order.Gig.Title, 40),
				side,
				counterparty,
				string(order.Status),
				fmt.Sprintf("$%.2f", order.Total),
			})
		}
		return writeTable(os.Stdout, []string{"ID", "GIG", "SIDE", "WITH", "STATUS", "TOTAL"}, rows)
	},
}
