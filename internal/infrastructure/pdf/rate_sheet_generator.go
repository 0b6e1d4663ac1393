// Package pdf genera la hoja de tarifas de un alojamiento (precio, bloqueo y reservas por noche).
//
// Layout de la página A4 (una sección por habitación):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Alojamiento + ID    │  Rango + fecha de emisión    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  HABITACIÓN: Nombre + stock total                            │
//	│  TABLA: Fecha | Día | Precio | Bloq. | Reserv. | Disp. | Estado │
//	│  RESUMEN: noches registradas / vendibles                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/rate-calendar-api/internal/application/dto"
	app "github.com/jhoicas/rate-calendar-api/internal/application/ratecalendar"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ app.RateSheetGenerator = (*MarotoRateSheetGenerator)(nil)

// MarotoRateSheetGenerator implementa ratecalendar.RateSheetGenerator usando Maroto v2.
type MarotoRateSheetGenerator struct{}

// NewMarotoRateSheetGenerator construye el generador.
func NewMarotoRateSheetGenerator() *MarotoRateSheetGenerator { return &MarotoRateSheetGenerator{} }

// GenerateRateSheet genera el PDF y devuelve sus bytes.
func (g *MarotoRateSheetGenerator) GenerateRateSheet(_ context.Context, sheet app.RateSheet) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Hoja de tarifas - "+sheet.Accommodation.Name, true).
		WithAuthor(sheet.Accommodation.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sheet))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	if len(sheet.Rooms) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("El alojamiento no tiene habitaciones registradas.", props.Text{
				Size: 9, Top: 3, Color: colorGray, Align: align.Center,
			}),
		)))
	}
	for _, room := range sheet.Rooms {
		m.AddRows(roomTitleRow(room))
		m.AddRows(tableHeaderRow())
		m.AddRows(dayRows(room.Days)...)
		m.AddRows(summaryRow(room))
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(sheet app.RateSheet) core.Row {
	rango := sheet.Start.Format("02/01/2006") + " - " + sheet.End.Format("02/01/2006")
	return row.New(18).Add(
		col.New(7).Add(
			text.New(sheet.Accommodation.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("ID: "+sheet.Accommodation.ID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("HOJA DE TARIFAS E INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(rango, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("Emitida: "+sheet.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func roomTitleRow(room dto.RoomWindowResponse) core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New(fmt.Sprintf("%s   |   Stock total: %d", room.Name, room.TotalStock), props.Text{
			Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 3,
		}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(7).Add(
		h("Fecha", 2, align.Left),
		h("Día", 2, align.Left),
		h("Precio", 2, align.Right),
		h("Bloq.", 1, align.Center),
		h("Reserv.", 1, align.Center),
		h("Disp.", 1, align.Center),
		h("Estado", 3, align.Left),
	)
}

// dayRows: una fila por noche; las disponibilidades negativas se resaltan.
func dayRows(days []dto.DayPolicyResponse) []core.Row {
	result := make([]core.Row, 0, len(days))
	for _, d := range days {
		price := "sin registrar"
		if d.Price != nil {
			price = "$" + formatMoney(*d.Price)
		}
		remaining := props.Text{Size: 8, Align: align.Center, Top: 1}
		if d.Remaining < 0 {
			remaining.Color = colorAlert
			remaining.Style = fontstyle.Bold
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(d.Date, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(d.Weekday, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(price, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(strconv.Itoa(d.BlockedStock), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(strconv.Itoa(d.BookedStock), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(strconv.Itoa(d.Remaining), remaining)),
			col.New(3).Add(text.New(status(d), props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
		))
	}
	return result
}

func summaryRow(room dto.RoomWindowResponse) core.Row {
	registered, sellable := 0, 0
	for _, d := range room.Days {
		if d.Registered {
			registered++
		}
		if d.Sellable {
			sellable++
		}
	}
	return row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Noches registradas: %d de %d   |   Vendibles: %d", registered, len(room.Days), sellable), props.Text{
			Size: 8, Align: align.Right, Top: 2, Color: colorGray,
		}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func status(d dto.DayPolicyResponse) string {
	switch {
	case !d.Registered:
		return "Sin tarifa"
	case !d.IsActive:
		return "Cerrada"
	case d.Sellable:
		return "A la venta"
	default:
		return "Agotada"
	}
}

// moneyPrinter agrupa miles con la convención es-CO ("25.000", "1.000.000").
var moneyPrinter = message.NewPrinter(language.Spanish)

// formatMoney formatea un precio entero con separador de miles.
func formatMoney(d decimal.Decimal) string {
	return moneyPrinter.Sprintf("%d", d.Round(0).IntPart())
}
