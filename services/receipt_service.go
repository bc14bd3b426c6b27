package services

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"time"

	"github.com/mridulaoc/life_academy/database"
	"github.com/mridulaoc/life_academy/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var receiptTemplate = template.Must(template.New("receipt").Parse(`
<!DOCTYPE html>
<html>
<head><style>
body { font-family: Helvetica, Arial, sans-serif; margin: 40px; }
h1 { border-bottom: 2px solid #333; padding-bottom: 8px; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; }
th, td { text-align: left; padding: 8px; border-bottom: 1px solid #ddd; }
.totals td { border: none; }
.totals tr:last-child td { font-weight: bold; border-top: 2px solid #333; }
</style></head>
<body>
<h1>Payment Receipt</h1>
<p><b>Order:</b> {{.ExternalOrderID}}<br>
<b>Billed to:</b> {{.BillingName}} ({{.BillingEmail}})<br>
<b>Date:</b> {{.Date}}</p>
<table>
<tr><th>Item</th><th>Type</th><th>Price</th></tr>
{{range .Items}}<tr><td>{{.Title}}</td><td>{{.ItemType}}</td><td>{{printf "%.2f" .Price}}</td></tr>{{end}}
</table>
<table class="totals">
<tr><td>Subtotal</td><td>{{printf "%.2f" .Subtotal}}</td></tr>
{{if .CouponCode}}<tr><td>Discount ({{.CouponCode}})</td><td>-{{printf "%.2f" .Discount}}</td></tr>{{end}}
<tr><td>Tax</td><td>{{printf "%.2f" .Tax}}</td></tr>
<tr><td>Total ({{.Currency}})</td><td>{{printf "%.2f" .Amount}}</td></tr>
</table>
</body>
</html>`))

// GenerateOrderReceipt renders a PDF receipt for a completed order owned by
// the user.
func GenerateOrderReceipt(orderID, userID uuid.UUID) ([]byte, error) {
	var order models.Order
	err := database.DB.Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.Status != models.OrderStatusCompleted && order.Status != models.OrderStatusRefundProcessed {
		return nil, ErrInvalidState
	}

	htmlContent, err := renderReceiptHTML(order)
	if err != nil {
		return nil, err
	}
	return generatePDFFromHTML(htmlContent)
}

func renderReceiptHTML(order models.Order) (string, error) {
	couponCode := ""
	if order.CouponCode != nil {
		couponCode = *order.CouponCode
	}
	date := order.CreatedAt
	if order.CompletedAt != nil {
		date = *order.CompletedAt
	}

	data := struct {
		ExternalOrderID string
		BillingName     string
		BillingEmail    string
		Date            string
		Items           []models.OrderItem
		Subtotal        float64
		Discount        float64
		Tax             float64
		Amount          float64
		Currency        string
		CouponCode      string
	}{
		ExternalOrderID: order.ExternalOrderID,
		BillingName:     order.BillingName,
		BillingEmail:    order.BillingEmail,
		Date:            date.Format("January 2, 2006"),
		Items:           order.Items,
		Subtotal:        order.Subtotal,
		Discount:        order.Discount,
		Tax:             order.Tax,
		Amount:          order.Amount,
		Currency:        order.Currency,
		CouponCode:      couponCode,
	}

	var renderedHTML bytes.Buffer
	if err := receiptTemplate.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, 30*time.Second)
	defer cancelTimeout()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}
