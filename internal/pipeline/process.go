package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/qurvii/stylesync/pkg/models"
)

// MissingProductID is stored when a single-channel feed row has no
// product identifier. The server treats it as "listing exists but the
// panel did not expose an id".
const MissingProductID = "not defined"

var (
	styleNumberPattern = regexp.MustCompile(`\d{5}`)
	tataCliqPattern    = regexp.MustCompile(`(?i)tata.*cliq`)
	digitsPattern      = regexp.MustCompile(`\d`)
)

// Stats summarizes one normalization run.
type Stats struct {
	Total      int
	PerChannel map[models.Channel]int
	Skipped    int
	Duplicates int
}

// Result is the outcome of normalizing a feed: the deduplicated records
// plus counters for the summary panel.
type Result struct {
	Records []models.UploadRecord
	Stats   Stats
}

// Process normalizes a feed table according to the profile. Rows that
// cannot yield a valid record are counted as skipped, repeated
// (style, channel) pairs as duplicates; neither aborts the run. A feed
// whose header lacks a required column does abort, naming the missing
// columns.
func Process(p *Profile, t *Table) (*Result, error) {
	idx := struct{ sku, id, price, status, channel int }{
		sku:    t.Column(p.cols.sku),
		id:     t.Column(p.cols.id),
		price:  t.Column(p.cols.price),
		status: t.Column(p.cols.status),
	}
	if p.Combined {
		idx.channel = t.Column(p.cols.channel)
	}

	var missing []string
	for _, col := range p.requiredColumns() {
		if t.Column(col) == -1 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("feed is missing required columns: %s", strings.Join(missing, ", "))
	}

	result := &Result{
		Stats: Stats{PerChannel: make(map[models.Channel]int)},
	}
	seen := make(map[string]bool)

	for _, row := range t.Rows {
		sku := t.Cell(row, idx.sku)

		styleNumber, ok := extractStyleNumber(sku)
		if !ok {
			result.Stats.Skipped++
			continue
		}

		channel := p.Channel
		if p.Combined {
			channel = matchChannel(t.Cell(row, idx.channel))
			if channel == "" {
				// OMS exports mix every synced marketplace; rows for
				// channels with their own dedicated feed are ignored.
				result.Stats.Skipped++
				continue
			}
		}

		price, ok := parsePrice(t.Cell(row, idx.price))
		if !ok {
			result.Stats.Skipped++
			continue
		}

		record := models.UploadRecord{
			StyleNumber: styleNumber,
			Channel:     channel,
			Price:       price,
		}

		rawID := t.Cell(row, idx.id)
		rawStatus := t.Cell(row, idx.status)
		if p.Combined {
			id, ok := combinedProductID(channel, rawID, sku)
			if !ok {
				result.Stats.Skipped++
				continue
			}
			record.ProductID = id
			record.Status = omsStatus(rawStatus)
		} else {
			record.ProductID = rawID
			if record.ProductID == "" {
				record.ProductID = MissingProductID
			}
			record.Status = feedStatus(rawStatus)
		}

		key := strconv.Itoa(styleNumber) + "-" + string(channel)
		if seen[key] {
			result.Stats.Duplicates++
			continue
		}
		seen[key] = true

		result.Records = append(result.Records, record)
		result.Stats.Total++
		result.Stats.PerChannel[channel]++
	}

	return result, nil
}

// extractStyleNumber pulls the first five-digit run out of a SKU. Every
// style the company sells is keyed by such a number; a SKU without one
// is not a product row.
func extractStyleNumber(sku string) (int, bool) {
	match := styleNumberPattern.FindString(sku)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// matchChannel maps an OMS channel cell to a canonical channel. Cells
// name channels loosely ("AJIO B2C", "Tata CLiQ Luxury"), so matching
// is by substring.
func matchChannel(cell string) models.Channel {
	switch {
	case strings.Contains(strings.ToLower(cell), "ajio"):
		return models.ChannelAjio
	case tataCliqPattern.MatchString(cell):
		return models.ChannelTataCliq
	default:
		return ""
	}
}

// combinedProductID derives the stored product id for an OMS row. AJIO
// listing ids embed the product id in their first nine digits and need
// the SKU's color token appended to match the storefront URL; Tata CLiQ
// ids are stored as exported.
func combinedProductID(channel models.Channel, rawID, sku string) (string, bool) {
	if rawID == "" {
		return "", false
	}

	if channel == models.ChannelAjio {
		digits := digitsOnly(rawID)
		if len(digits) > 9 {
			digits = digits[:9]
		}
		if digits == "" {
			return "", false
		}
		return digits + "_" + colorToken(sku), true
	}

	return rawID, true
}

func digitsOnly(s string) string {
	return strings.Join(digitsPattern.FindAllString(s, -1), "")
}

// colorToken derives the id suffix from a SKU like "12345-RED Top":
// the second word of the post-dash segment when present, otherwise the
// whole segment, lowercased.
func colorToken(sku string) string {
	parts := strings.SplitN(sku, "-", 2)
	if len(parts) < 2 {
		return strings.ToLower(strings.TrimSpace(sku))
	}

	segment := strings.TrimSpace(parts[1])
	words := strings.Fields(segment)
	if len(words) >= 2 {
		return strings.ToLower(words[1])
	}
	return strings.ToLower(segment)
}

// omsStatus maps the OMS listing status to active/inactive. "Managed"
// is the only state in which the listing is live.
func omsStatus(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "managed") {
		return models.StatusActive
	}
	return models.StatusInactive
}

// feedStatus passes a seller-panel status through, defaulting to
// active when the column is blank.
func feedStatus(raw string) string {
	status := strings.ToLower(strings.TrimSpace(raw))
	if status == "" {
		return models.StatusActive
	}
	return status
}

func parsePrice(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}
