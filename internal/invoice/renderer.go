package invoice

import (
	"html/template"
	"io"

	"glalex-shop/internal/domain"
)

// Renderer turns an order into a downloadable invoice document. The PDF
// renderer is optional wiring; when absent the HTML renderer serves as the
// export format.
type Renderer interface {
	ContentType() string
	Render(w io.Writer, o *domain.Order) error
}

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Invoice {{.Number}}</title></head>
<body>
<h1>Invoice {{.Number}}</h1>
<p>Ordered: {{.OrderedAt.Format "2006-01-02 15:04"}}</p>
<p>Customer: {{.FullName}}<br>
Phone: {{.Phone}}<br>
Delivery: {{.DeliveryAddress}}{{if .City}}, {{.City}}{{end}}</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Product</th><th>Qty</th><th>Unit price</th><th>Subtotal</th></tr>
{{range .Lines}}<tr>
<td>{{.ProductName}}</td><td>{{.Quantity}}</td>
<td>{{.UnitPrice.StringFixed 2}}</td><td>{{.Subtotal.StringFixed 2}}</td>
</tr>{{end}}
<tr><td colspan="3"><b>Total</b></td><td><b>{{.Total.StringFixed 2}}</b></td></tr>
</table>
<p>Payment: {{.PaymentMethod}} ({{.PaymentStatus}}){{if .TransactionRef}}, ref {{.TransactionRef}}{{end}}</p>
{{if .DeliveredAt}}<p>Delivered: {{.DeliveredAt.Format "2006-01-02 15:04"}}</p>{{end}}
</body>
</html>
`))

// HTMLRenderer writes a printable HTML invoice.
type HTMLRenderer struct{}

func NewHTMLRenderer() *HTMLRenderer { return &HTMLRenderer{} }

func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (r *HTMLRenderer) Render(w io.Writer, o *domain.Order) error {
	return invoiceTmpl.Execute(w, o)
}
