package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/table"
)

// SummaryMarkdown renders the summary table as a markdown document
func SummaryMarkdown(summary []models.SummaryRecord, res models.RunResult) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Summary Statistics")
	latest := "n/a"
	if !res.LatestDate.IsZero() {
		latest = res.LatestDate.Format(table.DateLayout)
	}
	doc.PlainText(fmt.Sprintf("%d rows, %d tickers, data through %s (YTD year %d)",
		res.Rows, len(res.Tickers), latest, res.CurrentYear))

	t := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: table.SummaryHeader,
		Rows:   [][]string{},
	}
	for _, s := range summary {
		vol := ""
		if s.Volatility30D.Valid {
			vol = s.Volatility30D.Decimal.StringFixed(2)
		}
		t.Rows = append(t.Rows, []string{
			s.Ticker,
			s.Company,
			s.LatestPrice.StringFixed(2),
			s.YTDReturn.StringFixed(2),
			s.OneYearReturn.StringFixed(2),
			strconv.FormatInt(s.AvgVolume, 10),
			vol,
			s.LatestDate.Format(table.DateLayout),
		})
	}
	doc.Table(t)

	return doc.String()
}

// WriteReport prints the summary report to w. Styled output is rendered for
// a terminal; on a rendering failure the plain markdown is written instead.
func WriteReport(w io.Writer, summary []models.SummaryRecord, res models.RunResult, styled bool) error {
	out := SummaryMarkdown(summary, res)
	if styled {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(120),
		)
		if err == nil {
			if rendered, err := r.Render(out); err == nil {
				out = rendered
			}
		}
	}
	_, err := io.WriteString(w, out)
	return err
}
