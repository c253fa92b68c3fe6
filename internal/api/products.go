package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/qurvii/stylesync/pkg/models"
)

// ProductQuery filters the products listing. Zero values mean "not
// filtered"; Page and Limit fall back to the server's defaults.
type ProductQuery struct {
	StyleNumber int
	Channel     string
	Page        int
	Limit       int
}

type productsData struct {
	Products []models.Product `json:"products"`
}

// Products fetches the product catalog, newest first.
func (c *Client) Products(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	query := url.Values{}
	if q.StyleNumber > 0 {
		query.Set("styleNumber", strconv.Itoa(q.StyleNumber))
	}
	if q.Channel != "" {
		query.Set("channel", q.Channel)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var data productsData
	if _, err := c.call(ctx, http.MethodGet, "/products", query, nil, &data, true); err != nil {
		return nil, err
	}
	return data.Products, nil
}

type bulkRequest struct {
	Records []models.UploadRecord `json:"records"`
}

// BulkUpload submits normalized records in one request. An empty list
// is refused locally; nothing goes over the wire.
func (c *Client) BulkUpload(ctx context.Context, records []models.UploadRecord) (*models.BulkResult, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	var result models.BulkResult
	if _, err := c.call(ctx, http.MethodPost, "/products/bulk", nil,
		bulkRequest{Records: records}, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

// BulkUpsert submits pre-normalized records to the upsert endpoint used
// by the dashboard's JSON upload. The server's summary message is
// returned for display.
func (c *Client) BulkUpsert(ctx context.Context, records []models.UploadRecord) (*models.BulkResult, string, error) {
	if len(records) == 0 {
		return nil, "", ErrNoRecords
	}

	var result models.BulkResult
	msg, err := c.call(ctx, http.MethodPost, "/products/bulk-upsert", nil,
		bulkRequest{Records: records}, &result, true)
	if err != nil {
		return nil, "", err
	}
	return &result, msg, nil
}
