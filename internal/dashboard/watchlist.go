package dashboard

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/models"
)

// CardState is the visual state of a watchlist card
type CardState string

const (
	CardNormal CardState = ""
	CardActive CardState = "active"
	CardDimmed CardState = "dimmed"
)

// Card is one watchlist entry
type Card struct {
	Company       string              `json:"company"`
	Ticker        string              `json:"ticker"`
	Price         decimal.Decimal     `json:"price"`
	OneYearReturn decimal.Decimal     `json:"one_year_return_pct"`
	YTDReturn     decimal.Decimal     `json:"ytd_return_pct"`
	Volatility30D decimal.NullDecimal `json:"volatility_30d_pct"`
	State         CardState           `json:"state"`
}

// WatchlistView is the card panel with its filter caption
type WatchlistView struct {
	Cards   []Card `json:"cards"`
	Caption string `json:"caption,omitempty"`
}

// Watchlist renders one card per selected company that has a summary row,
// in selection order. Active filters only change card state, never which
// cards appear.
func Watchlist(summary []models.SummaryRecord, selected, active []string) WatchlistView {
	byCompany := make(map[string]models.SummaryRecord, len(summary))
	for _, s := range summary {
		byCompany[s.Company] = s
	}
	isActive := make(map[string]bool, len(active))
	for _, a := range active {
		isActive[a] = true
	}
	filtering := len(active) > 0

	var v WatchlistView
	nActive := 0
	for _, company := range selected {
		s, ok := byCompany[company]
		if !ok {
			continue
		}
		c := Card{
			Company:       s.Company,
			Ticker:        s.Ticker,
			Price:         s.LatestPrice,
			OneYearReturn: s.OneYearReturn,
			YTDReturn:     s.YTDReturn,
			Volatility30D: s.Volatility30D,
		}
		if filtering {
			if isActive[company] {
				c.State = CardActive
				nActive++
			} else {
				c.State = CardDimmed
			}
		}
		v.Cards = append(v.Cards, c)
	}
	if filtering {
		v.Caption = fmt.Sprintf("Filtering: %d of %d", nActive, len(v.Cards))
	}
	return v
}

// SummaryFor returns the summary rows of the displayed companies ordered
// by one-year return descending
func SummaryFor(summary []models.SummaryRecord, display []string) []models.SummaryRecord {
	want := make(map[string]bool, len(display))
	for _, d := range display {
		want[d] = true
	}
	var out []models.SummaryRecord
	for _, s := range summary {
		if want[s.Company] {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OneYearReturn.GreaterThan(out[j].OneYearReturn)
	})
	return out
}
