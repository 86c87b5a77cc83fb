// Package analytics computes read-side aggregates over the raw order list.
// Nothing here mutates state; the only stored analytics artifact is the
// DailyAnalytics snapshot produced by DailySnapshot for the end-day action.
package analytics

import (
	"sort"
	"time"

	"chiya-order-service/internal/models"
)

const dateLayout = "2006-01-02"

// DateKey returns the local calendar date an order (or "now") falls on.
func DateKey(t time.Time) string {
	return t.Local().Format(dateLayout)
}

type Summary struct {
	TotalRevenue      float64                    `json:"totalRevenue"`
	TodayRevenue      float64                    `json:"todayRevenue"`
	TotalOrders       int                        `json:"totalOrders"`
	TodayOrders       int                        `json:"todayOrders"`
	AverageOrderValue float64                    `json:"averageOrderValue"`
	OrdersByStatus    map[models.OrderStatus]int `json:"ordersByStatus"`
}

// Summarize aggregates revenue and order counts. Revenue counts completed
// orders only; "today" compares each order's creation date against now's
// local calendar date.
func Summarize(orders []models.Order, now time.Time) Summary {
	today := DateKey(now)
	out := Summary{
		OrdersByStatus: map[models.OrderStatus]int{
			models.StatusPending:   0,
			models.StatusPreparing: 0,
			models.StatusReady:     0,
			models.StatusCompleted: 0,
		},
	}

	for _, order := range orders {
		out.TotalOrders++
		out.OrdersByStatus[order.Status]++

		sameDay := DateKey(order.CreatedAt) == today
		if sameDay {
			out.TodayOrders++
		}
		if order.Status == models.StatusCompleted {
			out.TotalRevenue += order.Total
			if sameDay {
				out.TodayRevenue += order.Total
			}
		}
	}

	if out.TotalOrders > 0 {
		out.AverageOrderValue = out.TotalRevenue / float64(out.TotalOrders)
	}
	return out
}

type ItemSale struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	TotalSold int     `json:"totalSold"`
	Revenue   float64 `json:"revenue"`
}

// ItemSales scans every order's line items and reports, per catalog item,
// total quantity sold and revenue at the item's current catalog price.
// Sorted by quantity descending, then name for a stable order.
func ItemSales(menu []models.MenuItem, orders []models.Order) []ItemSale {
	sold := make(map[string]int)
	for _, order := range orders {
		for _, line := range order.Items {
			sold[line.ID] += line.Quantity
		}
	}

	out := make([]ItemSale, 0, len(menu))
	for _, item := range menu {
		quantity := sold[item.ID]
		out = append(out, ItemSale{
			ID:        item.ID,
			Name:      item.Name,
			Category:  item.Category,
			TotalSold: quantity,
			Revenue:   float64(quantity) * item.Price,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalSold != out[j].TotalSold {
			return out[i].TotalSold > out[j].TotalSold
		}
		return out[i].Name < out[j].Name
	})
	return out
}

type HourBucket struct {
	Hour   int `json:"hour"`
	Orders int `json:"orders"`
}

// PeakHours builds a 24-bucket hour-of-day histogram of order counts.
func PeakHours(orders []models.Order) []HourBucket {
	buckets := make([]HourBucket, 24)
	for i := range buckets {
		buckets[i].Hour = i
	}
	for _, order := range orders {
		buckets[order.CreatedAt.Local().Hour()].Orders++
	}
	return buckets
}

// DailySnapshot builds the end-day record for one local calendar date.
// Revenue and completed counts come from completed orders created that day;
// top items are ranked by quantity across all of the day's orders, using the
// prices embedded in the order lines (catalog edits do not rewrite history).
func DailySnapshot(orders []models.Order, day time.Time) models.DailyAnalytics {
	date := DateKey(day)
	snapshot := models.DailyAnalytics{Date: date, TopItems: []models.TopItem{}}

	type tally struct {
		name     string
		quantity int
		revenue  float64
	}
	counts := make(map[string]*tally)

	for _, order := range orders {
		if DateKey(order.CreatedAt) != date {
			continue
		}
		snapshot.Orders++
		if order.Status == models.StatusCompleted {
			snapshot.CompletedOrders++
			snapshot.Revenue += order.Total
		}
		for _, line := range order.Items {
			entry := counts[line.ID]
			if entry == nil {
				entry = &tally{name: line.Name}
				counts[line.ID] = entry
			}
			entry.quantity += line.Quantity
			entry.revenue += line.Price * float64(line.Quantity)
		}
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := counts[ids[i]], counts[ids[j]]
		if a.quantity != b.quantity {
			return a.quantity > b.quantity
		}
		return a.name < b.name
	})

	for _, id := range ids {
		if len(snapshot.TopItems) == 5 {
			break
		}
		entry := counts[id]
		snapshot.TopItems = append(snapshot.TopItems, models.TopItem{
			ID:       id,
			Name:     entry.name,
			Quantity: entry.quantity,
			Revenue:  entry.revenue,
		})
	}
	return snapshot
}
