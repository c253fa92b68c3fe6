package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/qurvii/stylesync/pkg/models"
)

var recordHeader = []string{"Style Number", "Channel", "Product ID", "Price", "Status"}

// WriteRecords writes normalized upload records to a CSV file, creating
// the output directory when needed.
func WriteRecords(path string, records []models.UploadRecord) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(recordHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			strconv.Itoa(r.StyleNumber),
			string(r.Channel),
			r.ProductID,
			formatPrice(r.Price),
			r.Status,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// WriteProducts flattens products into one CSV row per marketplace
// listing, the same shape as a records export.
func WriteProducts(path string, products []models.Product) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(recordHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, p := range products {
		for _, l := range p.Listings {
			row := []string{
				strconv.Itoa(p.StyleNumber),
				l.Channel,
				l.ProductID,
				formatPrice(l.Price),
				l.Status,
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
	}

	w.Flush()
	return w.Error()
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
