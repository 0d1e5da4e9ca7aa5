package http

import (
	"net/http"
	"time"

	"wallet/internal/core"
	"wallet/internal/log"
)

type formattedTotals struct {
	Total    string `json:"total"`
	Lifetime string `json:"lifetime"`
}

// summaryView is a MonthOverview plus the totals rendered in the selected
// currency.
type summaryView struct {
	core.MonthOverview
	Formatted formattedTotals `json:"formatted"`
}

type summaryResponse struct {
	Filter   core.FilterState `json:"filter"`
	Currency core.Currency    `json:"currency"`
	Summary  summaryView      `json:"summary"`
}

type categoryView struct {
	Name  core.Category `json:"name"`
	Color string        `json:"color"`
}

func newSummaryView(ov core.MonthOverview, c core.Currency) summaryView {
	return summaryView{
		MonthOverview: ov,
		Formatted: formattedTotals{
			Total:    c.Format(ov.Total),
			Lifetime: c.Format(ov.Lifetime),
		},
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = NewJSONResponse().Data(map[string]string{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	if s.shuttingDown.Load() {
		status, code = "shutting_down", http.StatusServiceUnavailable
	}

	_ = NewJSONResponse().Status(code).Data(map[string]any{
		"status":     status,
		"expenses":   len(s.store.ListAll()),
		"currency":   s.store.Currency().Code,
		"cache_size": s.summaryCache.Size(),
		"metrics":    s.metrics.snapshot(),
	}).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilterState(r.URL.Query(), s.now())
	if err != nil {
		_ = BadRequestError(err.Error()).Write(w)
		return
	}

	gen := s.currentGeneration()
	all := s.store.ListAll()
	currency := s.store.Currency()
	ov := s.summarize(r.Context(), gen, all, f)

	_ = NewJSONResponse().Data(summaryResponse{
		Filter:   f,
		Currency: currency,
		Summary:  newSummaryView(ov, currency),
	}).Write(w)
}

func (s *Server) handleGetCurrency(w http.ResponseWriter, r *http.Request) {
	_ = NewJSONResponse().Data(s.store.Currency()).Write(w)
}

// handleSetCurrency selects the display currency. Unknown codes fall back
// to the default currency, which is returned.
func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		_ = BadRequestError("invalid request body").Write(w)
		return
	}

	code := p.Get("code")
	if code == "" {
		_ = BadRequestError("code is required").Write(w)
		return
	}

	c := s.store.SetCurrency(r.Context(), code)
	if c.Code != code {
		log.FromContext(r.Context()).InfoContext(r.Context(), "Unknown currency replaced by default",
			log.FieldCurrency, code, "selected", c.Code)
	}
	_ = NewJSONResponse().Data(c).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := core.Categories()
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView{Name: c, Color: c.Color()})
	}
	_ = NewJSONResponse().Data(out).Write(w)
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	_ = NewJSONResponse().Data(core.Currencies()).Write(w)
}
