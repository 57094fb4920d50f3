package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/danmwale/shopledger-backend/internal/apperr"
	"github.com/danmwale/shopledger-backend/internal/modules/inventory"
	"github.com/danmwale/shopledger-backend/internal/modules/invoice"
	"github.com/danmwale/shopledger-backend/internal/modules/user"
)

// DailySales aggregates the non-cancelled invoice totals for one day.
type DailySales struct {
	Date     string  `json:"date"`
	Total    float64 `json:"total"`
	Invoices int     `json:"invoices"`
}

// Service produces admin-facing exports and summaries.
type Service interface {
	ExportInventory(ctx context.Context, actor user.Actor, w io.Writer) error
	ExportInvoices(ctx context.Context, actor user.Actor, w io.Writer) error
	SalesSummary(ctx context.Context, actor user.Actor) ([]DailySales, error)
}

// InventoryLister is the slice of the inventory repository reports read from.
type InventoryLister interface {
	List(ctx context.Context) ([]*inventory.InventoryItem, error)
}

// InvoiceLister is the slice of the invoice repository reports read from.
type InvoiceLister interface {
	List(ctx context.Context) ([]*invoice.Invoice, error)
}

type service struct {
	items    InventoryLister
	invoices InvoiceLister
}

// NewService creates a new report service.
func NewService(items InventoryLister, invoices InvoiceLister) Service {
	return &service{items: items, invoices: invoices}
}

var inventoryColumns = []Column{
	{Key: "name", Title: "Name"},
	{Key: "category", Title: "Category"},
	{Key: "brand", Title: "Brand"},
	{Key: "status", Title: "Status"},
	{Key: "quantity", Title: "Quantity"},
	{Key: "reorder_point", Title: "Reorder Point"},
	{Key: "cost_price", Title: "Cost Price"},
	{Key: "selling_price", Title: "Selling Price"},
}

func (s *service) ExportInventory(ctx context.Context, actor user.Actor, w io.Writer) error {
	if !actor.IsAdmin() {
		return apperr.Permissionf("you are not authorized to export reports")
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return apperr.Store("failed to list inventory", err)
	}

	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, map[string]string{
			"name":          item.Name,
			"category":      item.Category,
			"brand":         item.Brand,
			"status":        string(item.Status),
			"quantity":      strconv.Itoa(item.Quantity),
			"reorder_point": strconv.Itoa(item.ReorderPoint),
			"cost_price":    formatAmount(item.CostPrice),
			"selling_price": formatAmount(item.SellingPrice),
		})
	}
	return WriteCSV(w, inventoryColumns, rows)
}

var invoiceColumns = []Column{
	{Key: "number", Title: "Invoice Number"},
	{Key: "customer", Title: "Customer"},
	{Key: "status", Title: "Status"},
	{Key: "total", Title: "Total"},
	{Key: "amount_paid", Title: "Amount Paid"},
	{Key: "created_by", Title: "Created By"},
	{Key: "created_at", Title: "Created At"},
}

func (s *service) ExportInvoices(ctx context.Context, actor user.Actor, w io.Writer) error {
	if !actor.IsAdmin() {
		return apperr.Permissionf("you are not authorized to export reports")
	}
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return apperr.Store("failed to list invoices", err)
	}

	rows := make([]map[string]string, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, map[string]string{
			"number":      inv.Number,
			"customer":    inv.CustomerName,
			"status":      string(inv.Status),
			"total":       formatAmount(inv.Total()),
			"amount_paid": formatAmount(inv.AmountPaid()),
			"created_by":  inv.CreatedByName,
			"created_at":  inv.CreatedAt.Format("2006-01-02"),
		})
	}
	return WriteCSV(w, invoiceColumns, rows)
}

func (s *service) SalesSummary(ctx context.Context, actor user.Actor) ([]DailySales, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permissionf("you are not authorized to view sales summaries")
	}
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, apperr.Store("failed to list invoices", err)
	}

	byDay := make(map[string]*DailySales)
	for _, inv := range invoices {
		if inv.Status == invoice.StatusCancelled {
			continue
		}
		day := inv.CreatedAt.Format("2006-01-02")
		entry, ok := byDay[day]
		if !ok {
			entry = &DailySales{Date: day}
			byDay[day] = entry
		}
		entry.Total += inv.Total()
		entry.Invoices++
	}

	summary := make([]DailySales, 0, len(byDay))
	for _, entry := range byDay {
		summary = append(summary, *entry)
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].Date < summary[j].Date })
	return summary, nil
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
