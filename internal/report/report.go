// Package report computes the dashboard's read-side projections. Everything
// here is a pure function over a state snapshot: no mutation, no stored
// state, recomputed on demand.
package report

import (
	"sort"
	"time"

	"retailflow/internal/domain"

	"github.com/google/uuid"
)

const topN = 5

// HealthyStockLevel is the quantity at which a product counts toward
// inventory health.
const HealthyStockLevel = 10

// SellerStat is one product's aggregated sales performance. Category and
// Stock are joined from the live product set, so a deleted product shows
// "N/A" and zero stock while keeping its snapshotted name.
type SellerStat struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	UnitsSold int       `json:"unitsSold"`
	Revenue   float64   `json:"revenue"`
	Stock     int       `json:"stock"`
}

// RankSellers aggregates units and revenue per product across the given
// sales, in first-occurrence order, then sorts descending by units sold.
// Best is the top five; worst is the bottom five with the worst first. Ties
// keep the aggregation's first-occurrence order.
func RankSellers(sales []domain.Sale, products []domain.Product) (best, worst []SellerStat) {
	index := make(map[uuid.UUID]int)
	stats := make([]SellerStat, 0)

	for _, sale := range sales {
		for _, item := range sale.Items {
			i, seen := index[item.ProductID]
			if !seen {
				i = len(stats)
				index[item.ProductID] = i
				stats = append(stats, SellerStat{ProductID: item.ProductID, Name: item.ProductName})
			}
			stats[i].UnitsSold += item.Quantity
			stats[i].Revenue += item.Total
		}
	}

	for i := range stats {
		stats[i].Category = "N/A"
		for _, p := range products {
			if p.ID == stats[i].ProductID {
				if p.Category != "" {
					stats[i].Category = p.Category
				}
				stats[i].Stock = p.Quantity
				break
			}
		}
	}

	sort.SliceStable(stats, func(a, b int) bool {
		return stats[a].UnitsSold > stats[b].UnitsSold
	})

	n := len(stats)
	best = stats[:min(topN, n)]

	tail := stats[max(0, n-topN):]
	worst = make([]SellerStat, len(tail))
	for i, s := range tail {
		worst[len(tail)-1-i] = s
	}
	return best, worst
}

// OwnerKPIs are the owner dashboard's headline numbers.
type OwnerKPIs struct {
	MonthlyRevenue  float64 `json:"monthlyRevenue"`
	ItemsSold       int     `json:"itemsSold"`
	LowStockCount   int     `json:"lowStockCount"`
	InventoryHealth int     `json:"inventoryHealth"`
}

// ComputeOwnerKPIs aggregates the current calendar month's revenue and
// units, the low-stock count, and inventory health: the rounded percentage
// of products at or above the healthy stock level.
func ComputeOwnerKPIs(now time.Time, sales []domain.Sale, products []domain.Product) OwnerKPIs {
	var k OwnerKPIs
	for _, sale := range sales {
		if isSameMonth(sale.DateTime, now) {
			k.MonthlyRevenue += sale.Total
			k.ItemsSold += sale.UnitsSold()
		}
	}

	healthy := 0
	for _, p := range products {
		if domain.IsLowStock(p) {
			k.LowStockCount++
		}
		if p.Quantity >= HealthyStockLevel {
			healthy++
		}
	}
	if len(products) > 0 {
		k.InventoryHealth = int(float64(healthy)/float64(len(products))*100 + 0.5)
	}
	return k
}

// EmployeeKPIs are the employee dashboard's headline numbers, computed over
// the session-visible sales.
type EmployeeKPIs struct {
	SoldToday     int `json:"soldToday"`
	SoldThisWeek  int `json:"soldThisWeek"`
	LowStockCount int `json:"lowStockCount"`
}

// ComputeEmployeeKPIs counts units sold today and this week (week starts
// Sunday at midnight local time) plus the low-stock count.
func ComputeEmployeeKPIs(now time.Time, sales []domain.Sale, products []domain.Product) EmployeeKPIs {
	var k EmployeeKPIs
	weekStart := startOfWeek(now)
	for _, sale := range sales {
		units := sale.UnitsSold()
		if isSameDay(sale.DateTime, now) {
			k.SoldToday += units
		}
		if !sale.DateTime.Before(weekStart) {
			k.SoldThisWeek += units
		}
	}
	for _, p := range products {
		if domain.IsLowStock(p) {
			k.LowStockCount++
		}
	}
	return k
}

// MonthlyRevenue buckets all-time sale totals by calendar month-of-year:
// January is index 0, and sales from different years land in the same
// bucket.
func MonthlyRevenue(sales []domain.Sale) [12]float64 {
	var buckets [12]float64
	for _, sale := range sales {
		buckets[sale.DateTime.Month()-1] += sale.Total
	}
	return buckets
}

// CategorySales buckets sale line totals by the referenced product's
// current category. Lines whose product no longer exists, or whose product
// has no category, fall into "Other"; editing a product's category
// reshuffles historical buckets.
func CategorySales(sales []domain.Sale, products []domain.Product) map[string]float64 {
	byCategory := make(map[string]float64)
	for _, sale := range sales {
		for _, item := range sale.Items {
			category := "Other"
			for _, p := range products {
				if p.ID == item.ProductID {
					if p.Category != "" {
						category = p.Category
					}
					break
				}
			}
			byCategory[category] += item.Total
		}
	}
	return byCategory
}

func isSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func isSameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func startOfWeek(now time.Time) time.Time {
	daysSinceSunday := int(now.Weekday())
	day := now.AddDate(0, 0, -daysSinceSunday)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}
