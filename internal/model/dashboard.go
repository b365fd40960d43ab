package model

import "github.com/google/uuid"

type DashboardStats struct {
	TotalItems              int64                  `json:"totalItems"`
	LowStockItems           int64                  `json:"lowStockItems"`
	MonthlyInbound          int64                  `json:"monthlyInbound"` // transaction count this month
	MonthlyOutbound         int64                  `json:"monthlyOutbound"`
	MonthlyInboundQuantity  int64                  `json:"monthlyInboundQuantity"`
	MonthlyOutboundQuantity int64                  `json:"monthlyOutboundQuantity"`
	CategoryDistribution    []CategoryDistribution `json:"categoryDistribution"`
}

type CategoryDistribution struct {
	CategoryID uuid.UUID `json:"categoryId"`
	Name       string    `json:"name"`
	Color      string    `json:"color"`
	Count      int64     `json:"count"`
}

// StockMovement is one day of inbound/outbound quantities for charts.
type StockMovement struct {
	Date     string `json:"date"`
	Inbound  int64  `json:"inbound"`
	Outbound int64  `json:"outbound"`
}

type ImportReport struct {
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// ExportOptions selects what goes into an Excel export.
type ExportOptions struct {
	CategoryID          *uuid.UUID
	LowStockOnly        bool
	IncludeTransactions bool
}
