package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/qurvii/stylesync/internal/api"
	"github.com/qurvii/stylesync/internal/export"
	"github.com/qurvii/stylesync/internal/pipeline"
	"github.com/qurvii/stylesync/pkg/models"
)

var (
	uploadDryRun bool
	uploadExport string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Normalize and submit feed exports",
	Long:  `Parse marketplace feed exports into catalog records and push them to the API.`,
}

var uploadRunCmd = &cobra.Command{
	Use:   "run [channel] [file]",
	Short: "Upload a feed file",
	Long: `Normalize a feed export and submit the records in bulk.

Channels: ` + strings.Join(pipeline.ProfileNames(), ", ") + `

The oms feed is the combined order-management export; AJIO and Tata
CLiQ rows are taken from it. The other channels use their seller-panel
export directly.`,
	Args: cobra.ExactArgs(2),
	RunE: runUpload,
}

func init() {
	uploadRunCmd.Flags().BoolVar(&uploadDryRun, "dry-run", false, "Parse and preview without submitting")
	uploadRunCmd.Flags().StringVar(&uploadExport, "export", "", "Also write normalized records to this CSV file")

	uploadCmd.AddCommand(uploadRunCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	channelArg, feedFile := args[0], args[1]

	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)
	info := color.New(color.FgYellow)

	profile, err := pipeline.ProfileFor(channelArg)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	header.Printf("\n  UPLOADING %s FEED\n", strings.ToUpper(profile.Name))
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	if _, err := os.Stat(feedFile); os.IsNotExist(err) {
		color.Red("  Error: File not found: %s", feedFile)
		return fmt.Errorf("file not found: %s", feedFile)
	}

	info.Printf("  Source: %s\n\n", feedFile)

	table, err := pipeline.ReadTable(feedFile)
	if err != nil {
		color.Red("  Error reading feed: %v", err)
		return err
	}

	result, err := pipeline.Process(profile, table)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	printStats(result.Stats)

	client, _, cfg, err := newClient()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	previewRecords(result.Records, cfg.Defaults.PreviewRows)

	if uploadExport != "" {
		if err := export.WriteRecords(uploadExport, result.Records); err != nil {
			color.Red("  Error exporting records: %v", err)
			return err
		}
		success.Printf("  ✓ Records exported to %s\n\n", uploadExport)
	}

	if len(result.Records) == 0 {
		color.Yellow("  ⚠ No valid records found in %s. Nothing to upload.", feedFile)
		fmt.Println()
		return nil
	}

	if uploadDryRun {
		info.Printf("  Dry run: %d records ready, skipping submission\n", len(result.Records))
		fmt.Println()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	defer cancel()

	info.Printf("  Submitting %d records...\n\n", len(result.Records))

	stop := startUploadRamp()
	bulk, err := client.BulkUpload(ctx, result.Records)
	stop(err == nil)
	fmt.Println()
	fmt.Println()

	if err != nil {
		color.Red("  Error: %s", api.ServerMessage(err, err.Error()))
		return err
	}

	success.Printf("  ✓ Upload complete: %d inserted, %d updated (%d total)\n",
		bulk.Inserted, bulk.Updated, len(result.Records))
	fmt.Println()
	return nil
}

func printStats(stats pipeline.Stats) {
	success := color.New(color.FgGreen)

	success.Printf("  ✓ Parsed %d records\n", stats.Total)
	for _, channel := range models.Channels {
		if n := stats.PerChannel[channel]; n > 0 {
			fmt.Printf("    %s: %d\n", channel, n)
		}
	}
	if stats.Skipped > 0 {
		color.Yellow("  ⚠ %d rows skipped", stats.Skipped)
	}
	if stats.Duplicates > 0 {
		color.Yellow("  ⚠ %d duplicate rows dropped", stats.Duplicates)
	}
	fmt.Println()
}

func previewRecords(records []models.UploadRecord, maxRows int) {
	if len(records) == 0 {
		return
	}
	if maxRows <= 0 {
		maxRows = 10
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Style", "Channel", "Product ID", "Price", "Status"})
	table.SetBorder(false)
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor},
	)
	table.SetColumnColor(
		tablewriter.Colors{tablewriter.FgYellowColor},
		tablewriter.Colors{},
		tablewriter.Colors{},
		tablewriter.Colors{},
		tablewriter.Colors{tablewriter.FgGreenColor},
	)

	displayCount := len(records)
	if displayCount > maxRows {
		displayCount = maxRows
	}

	for i := 0; i < displayCount; i++ {
		r := records[i]
		status := r.Status
		if status != models.StatusActive {
			status = color.YellowString(status)
		}
		table.Append([]string{
			fmt.Sprintf("%d", r.StyleNumber),
			string(r.Channel),
			r.ProductID,
			fmt.Sprintf("%.2f", r.Price),
			status,
		})
	}

	if len(records) > displayCount {
		table.Append([]string{"...", "...", "...", "...", fmt.Sprintf("and %d more", len(records)-displayCount)})
	}

	table.Render()
	fmt.Println()
}

// startUploadRamp shows a bar that climbs toward 90% while the bulk
// request is in flight and snaps to 100% when it settles. One request
// carries the whole batch, so there is no real per-record progress to
// report.
func startUploadRamp() func(completed bool) {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("  Uploading records"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.GreenString("█"),
			SaucerHead:    color.GreenString("█"),
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(300 * time.Millisecond)
		defer ticker.Stop()

		progress := 0
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if progress < 90 {
					progress += 10
					bar.Set(progress)
				}
			}
		}
	}()

	return func(completed bool) {
		close(done)
		if completed {
			bar.Set(100)
		}
	}
}
