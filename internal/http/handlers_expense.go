package http

import (
	"net/http"

	"wallet/internal/core"
	"wallet/internal/log"
)

type expenseListResponse struct {
	Filter   core.FilterState `json:"filter"`
	Currency core.Currency    `json:"currency"`
	Expenses []core.Expense   `json:"expenses"`
	Summary  summaryView      `json:"summary"`
}

// handleListExpenses returns the filtered expenses, newest date first,
// with the summary for the same filter.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilterState(r.URL.Query(), s.now())
	if err != nil {
		_ = BadRequestError(err.Error()).Write(w)
		return
	}

	gen := s.currentGeneration()
	all := s.store.ListAll()
	currency := s.store.Currency()

	_ = NewJSONResponse().Data(expenseListResponse{
		Filter:   f,
		Currency: currency,
		Expenses: core.Filter(all, f),
		Summary:  newSummaryView(s.summarize(r.Context(), gen, all, f), currency),
	}).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		logger.WarnContext(ctx, "Malformed expense body", log.FieldError, err.Error())
		_ = BadRequestError("invalid request body").Write(w)
		return
	}

	e, err := s.store.Add(ctx, p.ExpenseInput())
	if err != nil {
		_ = ValidationErrorResponse(err).Write(w)
		return
	}

	_ = NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+e.ID()).
		Data(e).
		Write(w)
}

// handleDeleteExpense answers 204 whether or not the id existed.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := sanitizeInput(r.PathValue("id"))
	if id == "" {
		_ = ValidationErrorResponse(&core.ValidationError{Field: "id", Err: core.ErrMissingID}).Write(w)
		return
	}

	s.store.Delete(r.Context(), id)
	_ = NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
