package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/global-bites/models"
	"github.com/yeremiapane/global-bites/repositories"
	"github.com/yeremiapane/global-bites/utils"
)

const (
	uncategorized     = "Uncategorized"
	aiLogReportLimit  = 50
	recentOrdersLimit = 5
	insightsWindow    = 30 * 24 * time.Hour
)

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ResolveDateRange fills missing bounds: start defaults to the first day of end's month,
// end defaults to now.
func ResolveDateRange(start, end *time.Time, now time.Time) (DateRange, error) {
	r := DateRange{End: now.UTC()}
	if end != nil {
		r.End = end.UTC()
	}
	if start != nil {
		r.Start = start.UTC()
	} else {
		r.Start = time.Date(r.End.Year(), r.End.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	if r.Start.After(r.End) {
		return DateRange{}, utils.NewInvalidInput("start date must not be after end date")
	}
	return r, nil
}

type OrderSummary struct {
	TotalOrders  int             `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AvgTicket    decimal.Decimal `json:"avg_ticket"`
}

type DailyTrend struct {
	Date    string          `json:"date"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type NameValue struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type CategoryPerformance struct {
	Category  string          `json:"category"`
	Revenue   decimal.Decimal `json:"revenue"`
	UnitsSold int             `json:"units_sold"`
}

type OrderReport struct {
	Range               DateRange             `json:"range"`
	Summary             OrderSummary          `json:"summary"`
	DailyTrends         []DailyTrend          `json:"daily_trends"`
	StatusDistribution  []NameValue           `json:"status_distribution"`
	CategoryPerformance []CategoryPerformance `json:"category_performance"`
}

type DishSummary struct {
	TotalDishes    int64 `json:"total_dishes"`
	ActiveDishes   int64 `json:"active_dishes"`
	ArchivedDishes int64 `json:"archived_dishes"`
}

type DishReport struct {
	Summary              DishSummary `json:"summary"`
	CategoryDistribution []NameValue `json:"category_distribution"`
}

type AISummary struct {
	Generated    int64  `json:"generated"`
	Applied      int64  `json:"applied"`
	Discarded    int64  `json:"discarded"`
	ApprovalRate string `json:"approval_rate"`
}

type AIPerformanceReport struct {
	Range   DateRange            `json:"range"`
	Summary AISummary            `json:"summary"`
	Logs    []models.AIActionLog `json:"logs"`
}

type StrategicReport struct {
	Revenue    OrderSummary          `json:"revenue"`
	Categories []CategoryPerformance `json:"categories"`
	Dishes     DishSummary           `json:"dishes"`
	AI         AISummary             `json:"ai"`
}

type StrategicInsights struct {
	Reports  StrategicReport   `json:"reports"`
	Insights StrategicAnalysis `json:"insights"`
}

type DashboardStats struct {
	TotalOrders        int64           `json:"total_orders"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalDishes        int64           `json:"total_dishes"`
	ActiveDishes       int64           `json:"active_dishes"`
	StatusDistribution []NameValue     `json:"status_distribution"`
	RecentOrders       []models.Order  `json:"recent_orders"`
}

type AnalyticsService struct {
	orders repositories.OrderRepository
	dishes repositories.DishRepository
	logs   repositories.AILogRepository
	ai     *AIService
	now    func() time.Time
}

func NewAnalyticsService(orders repositories.OrderRepository, dishes repositories.DishRepository, logs repositories.AILogRepository, ai *AIService) *AnalyticsService {
	return &AnalyticsService{orders: orders, dishes: dishes, logs: logs, ai: ai, now: time.Now}
}

func (s *AnalyticsService) OrderReport(ctx context.Context, r DateRange) (*OrderReport, error) {
	orders, err := s.orders.ListBetween(ctx, r.Start, r.End)
	if err != nil {
		return nil, err
	}
	return buildOrderReport(r, orders), nil
}

func buildOrderReport(r DateRange, orders []models.Order) *OrderReport {
	report := &OrderReport{
		Range:               r,
		DailyTrends:         []DailyTrend{},
		StatusDistribution:  []NameValue{},
		CategoryPerformance: []CategoryPerformance{},
	}

	days := map[string]*DailyTrend{}
	statuses := map[models.OrderStatus]int64{}
	categories := map[string]*CategoryPerformance{}
	revenue := decimal.Zero

	for _, order := range orders {
		revenue = revenue.Add(order.TotalPrice)
		statuses[order.Status]++

		day := order.CreatedAt.UTC().Format("2006-01-02")
		trend, ok := days[day]
		if !ok {
			trend = &DailyTrend{Date: day, Revenue: decimal.Zero}
			days[day] = trend
		}
		trend.Count++
		trend.Revenue = trend.Revenue.Add(order.TotalPrice)

		for _, item := range order.Items {
			category := uncategorized
			if item.Dish != nil && item.Dish.Category != "" {
				category = item.Dish.Category
			}
			perf, ok := categories[category]
			if !ok {
				perf = &CategoryPerformance{Category: category, Revenue: decimal.Zero}
				categories[category] = perf
			}
			perf.Revenue = perf.Revenue.Add(item.LineTotal())
			perf.UnitsSold += item.Quantity
		}
	}

	report.Summary = OrderSummary{
		TotalOrders:  len(orders),
		TotalRevenue: revenue,
		AvgTicket:    decimal.Zero,
	}
	if len(orders) > 0 {
		report.Summary.AvgTicket = revenue.Div(decimal.NewFromInt(int64(len(orders)))).Round(2)
	}

	for _, trend := range days {
		report.DailyTrends = append(report.DailyTrends, *trend)
	}
	sort.Slice(report.DailyTrends, func(i, j int) bool {
		return report.DailyTrends[i].Date < report.DailyTrends[j].Date
	})

	for _, status := range models.OrderStatuses {
		if n := statuses[status]; n > 0 {
			report.StatusDistribution = append(report.StatusDistribution, NameValue{Name: string(status), Value: n})
		}
	}

	for _, perf := range categories {
		report.CategoryPerformance = append(report.CategoryPerformance, *perf)
	}
	sort.Slice(report.CategoryPerformance, func(i, j int) bool {
		a, b := report.CategoryPerformance[i], report.CategoryPerformance[j]
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		return a.Category < b.Category
	})
	return report
}

func (s *AnalyticsService) DishReport(ctx context.Context) (*DishReport, error) {
	active, archived, err := s.dishes.CountByActive(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.dishes.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	report := &DishReport{
		Summary: DishSummary{
			TotalDishes:    active + archived,
			ActiveDishes:   active,
			ArchivedDishes: archived,
		},
		CategoryDistribution: make([]NameValue, 0, len(counts)),
	}
	for _, c := range counts {
		report.CategoryDistribution = append(report.CategoryDistribution, NameValue{Name: c.Category, Value: c.Count})
	}
	return report, nil
}

func approvalRate(applied, generated int64) string {
	if generated == 0 {
		return "0.0%"
	}
	rate := float64(applied) / float64(generated) * 100
	return fmt.Sprintf("%.1f%%", rate)
}

func (s *AnalyticsService) AIPerformance(ctx context.Context, r DateRange) (*AIPerformanceReport, error) {
	counts, err := s.logs.CountByAction(ctx, r.Start, r.End)
	if err != nil {
		return nil, err
	}
	logs, err := s.logs.ListBetween(ctx, r.Start, r.End, aiLogReportLimit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.AIActionLog{}
	}

	var summary AISummary
	for _, c := range counts {
		switch c.Action {
		case models.AIActionGenerated:
			summary.Generated = c.Count
		case models.AIActionApplied:
			summary.Applied = c.Count
		case models.AIActionDiscarded:
			summary.Discarded = c.Count
		}
	}
	summary.ApprovalRate = approvalRate(summary.Applied, summary.Generated)

	return &AIPerformanceReport{Range: r, Summary: summary, Logs: logs}, nil
}

// StrategicInsights combines the last 30 days of reports and asks the AI to interpret them.
func (s *AnalyticsService) StrategicInsights(ctx context.Context) (*StrategicInsights, error) {
	now := s.now().UTC()
	r := DateRange{Start: now.Add(-insightsWindow), End: now}

	orders, err := s.OrderReport(ctx, r)
	if err != nil {
		return nil, err
	}
	dishes, err := s.DishReport(ctx)
	if err != nil {
		return nil, err
	}
	ai, err := s.AIPerformance(ctx, r)
	if err != nil {
		return nil, err
	}

	report := StrategicReport{
		Revenue:    orders.Summary,
		Categories: orders.CategoryPerformance,
		Dishes:     dishes.Summary,
		AI:         ai.Summary,
	}
	return &StrategicInsights{
		Reports:  report,
		Insights: s.ai.AnalyzeStrategicData(ctx, report),
	}, nil
}

func (s *AnalyticsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	totalOrders, revenue, err := s.orders.Totals(ctx)
	if err != nil {
		return nil, err
	}
	active, archived, err := s.dishes.CountByActive(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.orders.Recent(ctx, recentOrdersLimit)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []models.Order{}
	}

	counts := map[models.OrderStatus]int64{}
	for _, row := range byStatus {
		counts[row.Status] = row.Count
	}
	distribution := make([]NameValue, 0, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		distribution = append(distribution, NameValue{Name: string(status), Value: counts[status]})
	}

	return &DashboardStats{
		TotalOrders:        totalOrders,
		TotalRevenue:       revenue,
		TotalDishes:        active + archived,
		ActiveDishes:       active,
		StatusDistribution: distribution,
		RecentOrders:       recent,
	}, nil
}
