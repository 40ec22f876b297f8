// internal/pkg/receipt/service.go
package receipt

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/order"
)

// Service renders order tickets for the thermal printer
type Service struct {
	config *config.Config
}

// NewService creates a new receipt service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// TicketLine is one printed item with its display name already composed
type TicketLine struct {
	Name      string
	Size      string
	Quantity  int
	Modifiers []string
	Total     string
}

// TicketData represents the data passed to the ticket template
type TicketData struct {
	Reference   string
	PlacedAt    string
	ServiceType string
	TableNumber string
	Customer    string
	Address     string
	Lines       []TicketLine
	Total       string
	PendingSync bool
	Company     CompanyInfo
}

// CompanyInfo represents restaurant information printed on the header
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
}

// GenerateTicket renders a printable ticket from a captured draft. The
// reference is the local id until the order syncs, after which callers pass
// the server order number; pendingSync prints the banner either way.
func (s *Service) GenerateTicket(draft *order.OrderDraft, reference string, pendingSync bool) (*bytes.Buffer, error) {
	data := TicketData{
		Reference:   reference,
		PlacedAt:    draft.PlacedAt.Format("02/01/2006 15:04"),
		ServiceType: serviceLabel(draft.ServiceType),
		TableNumber: draft.TableNumber,
		Total:       formatCents(draft.Total),
		PendingSync: pendingSync,
		Company: CompanyInfo{
			Name:    s.config.App.CompanyName,
			Address: s.config.App.CompanyAddress,
			Phone:   s.config.App.CompanyPhone,
		},
	}
	if draft.Contact != nil {
		data.Customer = fmt.Sprintf("%s (%s)", draft.Contact.Name, draft.Contact.Phone)
		data.Address = draft.Contact.Address
	}

	for _, item := range draft.Items {
		line := TicketLine{
			Name:     item.ProductName,
			Size:     item.Size,
			Quantity: item.Quantity,
			Total:    formatCents(item.TotalPrice),
		}
		if item.SecondProductName != "" {
			line.Name = fmt.Sprintf("%s / %s", item.ProductName, item.SecondProductName)
		}
		for _, mod := range item.Modifiers {
			line.Modifiers = append(line.Modifiers, fmt.Sprintf("+ %s %s", mod.Name, formatCents(mod.Price)))
		}
		data.Lines = append(data.Lines, line)
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	// 80mm thermal roll
	pdfg.Dpi.Set(203)
	pdfg.PageWidth.Set(80)
	pdfg.PageHeight.Set(297)
	pdfg.MarginLeft.Set(2)
	pdfg.MarginRight.Set(2)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(true)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.DisableSmartShrinking.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data TicketData) (string, error) {
	tmpl := template.Must(template.New("ticket").Parse(ticketTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func serviceLabel(t order.ServiceType) string {
	switch t {
	case order.ServiceDineIn:
		return "MESA"
	case order.ServiceTakeout:
		return "PARA LLEVAR"
	case order.ServiceDelivery:
		return "DOMICILIO"
	default:
		return string(t)
	}
}

func formatCents(amount int64) string {
	return fmt.Sprintf("$%d.%02d", amount/100, amount%100)
}

// Ticket HTML template
const ticketTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: monospace; font-size: 11px; margin: 0; }
        .header { text-align: center; margin-bottom: 8px; }
        .header h1 { font-size: 14px; margin: 0; }
        .banner { border: 2px solid #000; text-align: center; font-weight: bold; padding: 4px; margin: 6px 0; }
        .meta { margin-bottom: 6px; }
        table { width: 100%; border-collapse: collapse; }
        td { vertical-align: top; padding: 1px 0; }
        td.amount { text-align: right; white-space: nowrap; }
        .mods { padding-left: 10px; font-size: 10px; }
        .total { border-top: 1px dashed #000; font-weight: bold; margin-top: 4px; padding-top: 4px; }
        .rule { border-top: 1px dashed #000; margin: 4px 0; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Company.Name}}</h1>
        <div>{{.Company.Address}}</div>
        <div>{{.Company.Phone}}</div>
    </div>

    {{if .PendingSync}}<div class="banner">PENDIENTE DE SINCRONIZAR</div>{{end}}

    <div class="meta">
        <div>Pedido: {{.Reference}}</div>
        <div>{{.PlacedAt}}</div>
        <div>{{.ServiceType}}{{if .TableNumber}} {{.TableNumber}}{{end}}</div>
        {{if .Customer}}<div>{{.Customer}}</div>{{end}}
        {{if .Address}}<div>{{.Address}}</div>{{end}}
    </div>

    <div class="rule"></div>

    <table>
        {{range .Lines}}
        <tr>
            <td>{{.Quantity}} x {{.Name}} ({{.Size}})</td>
            <td class="amount">{{.Total}}</td>
        </tr>
        {{range .Modifiers}}
        <tr><td class="mods" colspan="2">{{.}}</td></tr>
        {{end}}
        {{end}}
    </table>

    <table class="total">
        <tr>
            <td>TOTAL</td>
            <td class="amount">{{.Total}}</td>
        </tr>
    </table>
</body>
</html>
`
