package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/qurvii/stylesync/internal/api"
	"github.com/qurvii/stylesync/internal/export"
	"github.com/qurvii/stylesync/pkg/models"
)

var (
	listStyle   int
	listChannel string
	listPage    int
	listLimit   int

	exportOutput string

	upsertFile string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the product catalog",
	Long:  `List, export and inspect products across marketplaces.`,
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog products",
	Long:  `Display products from the catalog, newest first.`,
	RunE:  runProductsList,
}

var productsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export products to CSV",
	Long:  `Write the filtered product listings to a CSV file.`,
	RunE:  runProductsExport,
}

var productsOpenCmd = &cobra.Command{
	Use:   "open [channel] [product-id]",
	Short: "Print the storefront URL for a listing",
	Long:  `Build the marketplace storefront URL for a product id.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runProductsOpen,
}

var productsUpsertCmd = &cobra.Command{
	Use:   "bulk-upsert",
	Short: "Upsert records from a JSON file",
	Long:  `Submit pre-normalized records from a JSON file to the upsert endpoint.`,
	RunE:  runProductsUpsert,
}

func init() {
	productsListCmd.Flags().IntVar(&listStyle, "style", 0, "Filter by style number")
	productsListCmd.Flags().StringVar(&listChannel, "channel", "", "Filter by channel")
	productsListCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	productsListCmd.Flags().IntVar(&listLimit, "limit", 0, "Page size (0 = config default)")

	productsExportCmd.Flags().IntVar(&listStyle, "style", 0, "Filter by style number")
	productsExportCmd.Flags().StringVar(&listChannel, "channel", "", "Filter by channel")
	productsExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output CSV path (default under output dir)")

	productsUpsertCmd.Flags().StringVar(&upsertFile, "file", "", "JSON file with an array of records")
	productsUpsertCmd.MarkFlagRequired("file")

	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsExportCmd)
	productsCmd.AddCommand(productsOpenCmd)
	productsCmd.AddCommand(productsUpsertCmd)
}

func runProductsList(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)

	header.Println("\n  PRODUCT CATALOG")
	fmt.Println("  " + strings.Repeat("─", 50))
	fmt.Println()

	client, _, cfg, err := newClient()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	limit := listLimit
	if limit <= 0 {
		limit = cfg.Defaults.PageLimit
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	products, err := client.Products(ctx, api.ProductQuery{
		StyleNumber: listStyle,
		Channel:     listChannel,
		Page:        listPage,
		Limit:       limit,
	})
	if err != nil {
		color.Red("  Error: %s", api.ServerMessage(err, err.Error()))
		return err
	}

	if len(products) == 0 {
		color.Yellow("  No products found.")
		fmt.Println()
		return nil
	}

	color.Yellow("  Page %d, %d products\n\n", listPage, len(products))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Style", "Channel", "Product ID", "Price", "Status", "Created"})
	table.SetBorder(false)
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
	)

	for _, p := range products {
		for i, l := range p.Listings {
			style := ""
			created := ""
			if i == 0 {
				style = fmt.Sprintf("%d", p.StyleNumber)
				created = p.CreatedAt.Format("2006-01-02")
			}
			status := l.Status
			if strings.EqualFold(status, models.StatusActive) {
				status = color.GreenString(status)
			} else if strings.EqualFold(status, models.StatusInactive) {
				status = color.RedString(status)
			}
			table.Append([]string{style, l.Channel, l.ProductID, fmt.Sprintf("%.2f", l.Price), status, created})
		}
	}

	table.Render()
	fmt.Println()
	return nil
}

func runProductsExport(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  EXPORTING PRODUCTS")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	client, _, cfg, err := newClient()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Large page keeps the export to one request.
	products, err := client.Products(ctx, api.ProductQuery{
		StyleNumber: listStyle,
		Channel:     listChannel,
		Page:        1,
		Limit:       1000,
	})
	if err != nil {
		color.Red("  Error: %s", api.ServerMessage(err, err.Error()))
		return err
	}

	if len(products) == 0 {
		color.Yellow("  No products to export.")
		fmt.Println()
		return nil
	}

	output := exportOutput
	if output == "" {
		output = fmt.Sprintf("%s/products-%s.csv", cfg.Output.Dir, time.Now().Format("20060102-150405"))
	}

	if err := export.WriteProducts(output, products); err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	listings := 0
	for _, p := range products {
		listings += len(p.Listings)
	}
	success.Printf("  ✓ Exported %d products (%d listings) to %s\n", len(products), listings, output)
	fmt.Println()
	return nil
}

// Storefront URL shapes per marketplace. AJIO and Tata CLiQ embed a
// slug the storefront ignores; any slug resolves as long as the id
// matches.
func storefrontURL(channel models.Channel, productID string) (string, bool) {
	switch channel {
	case models.ChannelAjio:
		return "https://www.ajio.com/qurvii-women-regular-fit-top/p/" + productID + "?", true
	case models.ChannelTataCliq:
		return "https://www.tatacliq.com/qurvii-black-plain-jacket/p-" + strings.ToLower(productID), true
	case models.ChannelShopify:
		return "https://qurvii.com/products/" + productID, true
	case models.ChannelNykaa:
		return "https://www.nykaafashion.com/qurvii/p/" + productID, true
	case models.ChannelMyntra:
		return "http://myntra.com/" + productID, true
	default:
		return "", false
	}
}

func runProductsOpen(cmd *cobra.Command, args []string) error {
	channel := models.Channel(strings.ToLower(strings.TrimSpace(args[0])))
	productID := strings.TrimSpace(args[1])

	url, ok := storefrontURL(channel, productID)
	if !ok {
		color.Red("  Error: unknown channel %q", args[0])
		return fmt.Errorf("unknown channel: %s", args[0])
	}

	fmt.Println(url)
	return nil
}

func runProductsUpsert(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)
	info := color.New(color.FgYellow)

	header.Println("\n  BULK UPSERT")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	data, err := os.ReadFile(upsertFile)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	var records []models.UploadRecord
	if err := json.Unmarshal(data, &records); err != nil {
		color.Red("  Error parsing %s: %v", upsertFile, err)
		return fmt.Errorf("failed to parse records file: %w", err)
	}

	if len(records) == 0 {
		color.Yellow("  ⚠ No records in %s. Nothing to upsert.", upsertFile)
		fmt.Println()
		return nil
	}

	client, _, cfg, err := newClient()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	info.Printf("  Submitting %d records...\n\n", len(records))

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	defer cancel()

	stop := startUploadRamp()
	result, msg, err := client.BulkUpsert(ctx, records)
	stop(err == nil)
	fmt.Println()
	fmt.Println()

	if err != nil {
		color.Red("  Error: %s", api.ServerMessage(err, err.Error()))
		return err
	}

	if msg != "" {
		success.Printf("  ✓ %s\n", msg)
	}
	success.Printf("  ✓ %d inserted, %d updated\n", result.Inserted, result.Updated)
	fmt.Println()
	return nil
}
