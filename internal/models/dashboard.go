package models

// ClassCollection summarises fee collection for one class.
type ClassCollection struct {
	Class    string  `json:"class"`
	Students int     `json:"students"`
	Total    float64 `json:"total"`
	Paid     float64 `json:"paid"`
	Due      float64 `json:"due"`
}

// DashboardStats is the session overview shown on the landing page. Every
// number is derived from the active stores at computation time.
type DashboardStats struct {
	Session         string            `json:"session"`
	Students        int               `json:"students"`
	TotalFees       float64           `json:"total_fees"`
	TotalCollected  float64           `json:"total_collected"`
	TotalDue        float64           `json:"total_due"`
	TodayCollection float64           `json:"today_collection"`
	PaidPercentage  float64           `json:"paid_percentage"`
	TotalExpenses   float64           `json:"total_expenses"`
	NetBalance      float64           `json:"net_balance"`
	ByClass         []ClassCollection `json:"by_class"`
}
