package http

import (
	"net/http"
	"sort"
	"strconv"

	"kharcha/internal/core"
	"kharcha/internal/export"
	"kharcha/internal/log"
)

type dashboardResponse struct {
	CurrentOdometer int64  `json:"current_odometer"`
	InitialOdometer int64  `json:"initial_odometer"`
	TotalDistance   int64  `json:"total_distance"`
	NeedsMoreData   bool   `json:"needs_more_data"`
	VehicleSpend    string `json:"vehicle_spend"`
	FuelVolume      string `json:"fuel_volume"`
	CostPerKm       string `json:"cost_per_km"`
	AverageMileage  string `json:"average_mileage"`
	MonthlySpend    string `json:"monthly_spend"`
	OwedByUser      string `json:"owed_by_user"`
	OwedToUser      string `json:"owed_to_user"`
	NetBalance      string `json:"net_balance"`

	TankCapacity    string `json:"tank_capacity"`
	ReserveCapacity string `json:"reserve_capacity"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	settings, err := s.svc.VehicleSettings(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		CurrentOdometer: stats.CurrentOdometer,
		InitialOdometer: stats.InitialOdometer,
		TotalDistance:   stats.TotalDistance,
		NeedsMoreData:   stats.NeedsMoreData,
		VehicleSpend:    stats.VehicleSpend.String(),
		FuelVolume:      stats.FuelVolume.String(),
		CostPerKm:       stats.CostPerKm.String(),
		AverageMileage:  stats.AverageMileage.String(),
		MonthlySpend:    stats.MonthlySpend.String(),
		OwedByUser:      stats.OwedByUser.String(),
		OwedToUser:      stats.OwedToUser.String(),
		NetBalance:      stats.NetBalance.String(),
		TankCapacity:    settings.TankCapacity.String(),
		ReserveCapacity: settings.ReserveCapacity.String(),
	})
}

type sourceBalance struct {
	Source  string `json:"source"`
	Balance string `json:"balance"`
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	balances, err := s.svc.SourceBalances(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := make([]sourceBalance, 0, len(balances))
	for source, balance := range balances {
		out = append(out, sourceBalance{Source: source, Balance: balance.String()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	writeJSON(w, http.StatusOK, out)
}

type historyItemView struct {
	Kind      string `json:"kind"`
	ID        string `json:"id"`
	Date      string `json:"date"`
	Timestamp int64  `json:"timestamp"`

	// Expense and income fields.
	Amount        string `json:"amount,omitempty"`
	Category      string `json:"category,omitempty"`
	Direction     string `json:"direction,omitempty"`
	FundingSource string `json:"funding_source,omitempty"`
	Note          string `json:"note,omitempty"`

	// Odometer fields.
	Odometer   int64  `json:"odometer,omitempty"`
	FuelStatus string `json:"fuel_status,omitempty"`

	// Loan fields.
	Counterparty string `json:"counterparty,omitempty"`
	Principal    string `json:"principal,omitempty"`
	Paid         string `json:"paid,omitempty"`
	Balance      string `json:"balance,omitempty"`
	Settled      bool   `json:"settled,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
}

type historyGroupView struct {
	Date  string            `json:"date"`
	Items []historyItemView `json:"items"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.pageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	groups, err := s.svc.History(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := make([]historyGroupView, 0, len(groups))
	for _, g := range groups {
		view := historyGroupView{Date: g.Label, Items: make([]historyItemView, 0, len(g.Items))}
		for _, item := range g.Items {
			view.Items = append(view.Items, historyItem(item))
		}
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, out)
}

func historyItem(item core.HistoryItem) historyItemView {
	v := historyItemView{
		Kind:      string(item.Kind),
		Date:      item.Date.ISO(),
		Timestamp: item.Timestamp,
	}
	switch {
	case item.Expense != nil:
		e := item.Expense
		v.ID = e.ID
		v.Amount = e.Amount.String()
		v.Category = e.Category
		v.Direction = string(e.Direction)
		v.FundingSource = e.FundingSource
		v.Note = e.Note
	case item.Reading != nil:
		rd := item.Reading
		v.ID = rd.ID
		v.Odometer = rd.Odometer
		v.FuelStatus = string(rd.FuelStatus)
	case item.Loan != nil:
		l := item.Loan
		v.ID = l.ID
		v.Direction = string(l.Direction)
		v.Counterparty = l.Counterparty
		v.Principal = l.Principal.String()
		v.Paid = l.TotalPaid().String()
		v.Balance = l.Balance().String()
		v.Settled = l.Settled()
		v.FundingSource = l.FundingSource
		v.Note = l.Note
		if !l.DueDate.IsZero() {
			v.DueDate = l.DueDate.ISO()
		}
	}
	return v
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	expenses, readings, loans, err := s.svc.Snapshot(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCSV(w, expenses, readings, loans); err != nil {
		s.logger.ErrorContext(r.Context(), "csv export failed", log.FieldError, err)
	}
}
