package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/qurvii/stylesync/pkg/models"
)

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestWriteRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "records.csv")

	records := []models.UploadRecord{
		{StyleNumber: 12345, Channel: models.ChannelAjio, ProductID: "000123456_top", Price: 1299, Status: "active"},
		{StyleNumber: 23456, Channel: models.ChannelMyntra, ProductID: "9876543", Price: 999.5, Status: "inactive"},
	}

	if err := WriteRecords(path, records); err != nil {
		t.Fatal(err)
	}

	rows := readCSVFile(t, path)
	want := [][]string{
		{"Style Number", "Channel", "Product ID", "Price", "Status"},
		{"12345", "ajio", "000123456_top", "1299", "active"},
		{"23456", "myntra", "9876543", "999.5", "inactive"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestWriteProductsFlattensListings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")

	products := []models.Product{
		{
			ID:          "p1",
			StyleNumber: 12345,
			CreatedAt:   time.Now(),
			Listings: []models.MarketplaceListing{
				{Channel: "ajio", ProductID: "000123456_top", Price: 1299, Status: "active"},
				{Channel: "myntra", ProductID: "9876543", Price: 1399, Status: "active"},
			},
		},
		{ID: "p2", StyleNumber: 23456},
	}

	if err := WriteProducts(path, products); err != nil {
		t.Fatal(err)
	}

	rows := readCSVFile(t, path)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus one per listing", len(rows))
	}
	if rows[1][0] != "12345" || rows[2][1] != "myntra" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestWriteRecordsEmptyStillWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := WriteRecords(path, nil); err != nil {
		t.Fatal(err)
	}

	rows := readCSVFile(t, path)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want header only", len(rows))
	}
}
