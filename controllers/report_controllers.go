package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	chart "github.com/wcharczuk/go-chart/v2"
	"gorm.io/gorm"

	"github.com/dinehub/restaurant-backend/models"
	"github.com/dinehub/restaurant-backend/utils"
)

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

// reportRange parses ?start=YYYY-MM-DD&end=YYYY-MM-DD, defaulting to the
// last 7 days.
func reportRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
	start := end.AddDate(0, 0, -7)

	if s := c.Query("start"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, errors.New("invalid start date, expected YYYY-MM-DD")
		}
		start = parsed
	}
	if e := c.Query("end"); e != "" {
		parsed, err := time.Parse("2006-01-02", e)
		if err != nil {
			return start, end, errors.New("invalid end date, expected YYYY-MM-DD")
		}
		end = parsed.Add(24 * time.Hour)
	}
	return start, end, nil
}

// SalesPDF streams a bill summary for the period as a PDF.
func (rc *ReportController) SalesPDF(c *gin.Context) {
	start, end, err := reportRange(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var bills []models.Bill
	if err := rc.DB.Where("payment_status = ? AND paid_at >= ? AND paid_at < ?",
		models.PaymentStatusPaid, start, end).
		Order("paid_at").Find(&bills).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Sales Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s",
		start.Format("2006-01-02"), end.AddDate(0, 0, -1).Format("2006-01-02")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(25, 8, "Bill", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Paid At", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 8, "Method", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Subtotal", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "Tax", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "Discount", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	var revenue float64
	for _, bill := range bills {
		paidAt := ""
		if bill.PaidAt != nil {
			paidAt = bill.PaidAt.Format("01-02 15:04")
		}
		pdf.CellFormat(25, 7, bill.Reference, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, paidAt, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, bill.PaymentMethod, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, utils.FormatCurrency(bill.Subtotal), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, utils.FormatCurrency(bill.Tax), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, utils.FormatCurrency(bill.Discount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, utils.FormatCurrency(bill.Total), "1", 1, "R", false, 0, "")
		revenue += bill.Total
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Bills: %d    Revenue: %s", len(bills), utils.FormatCurrency(revenue)))

	c.Header("Content-Disposition", `attachment; filename="sales-report.pdf"`)
	c.Header("Content-Type", "application/pdf")
	if err := pdf.Output(c.Writer); err != nil {
		utils.ErrorLogger.Printf("sales pdf render failed: %v", err)
	}
}

// SalesChartPNG renders the top selling menu items for the period.
func (rc *ReportController) SalesChartPNG(c *gin.Context) {
	start, end, err := reportRange(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var items []models.OrderItem
	if err := rc.DB.Preload("MenuItem").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.created_at < ? AND orders.status <> ?",
			start, end, models.OrderStatusCancelled).
		Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	sold := map[string]int{}
	for _, item := range items {
		sold[item.MenuItem.Name] += item.Quantity
	}
	if len(sold) == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("no sales in the selected period"))
		return
	}

	type namedCount struct {
		name  string
		count int
	}
	ranked := make([]namedCount, 0, len(sold))
	for name, count := range sold {
		ranked = append(ranked, namedCount{name, count})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].count > ranked[j].count })
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}

	bars := make([]chart.Value, 0, len(ranked))
	for _, entry := range ranked {
		bars = append(bars, chart.Value{Label: entry.name, Value: float64(entry.count)})
	}

	graph := chart.BarChart{
		Title:    "Top Selling Items",
		Width:    900,
		Height:   500,
		BarWidth: 60,
		Bars:     bars,
	}

	c.Header("Content-Type", "image/png")
	if err := graph.Render(chart.PNG, c.Writer); err != nil {
		utils.ErrorLogger.Printf("sales chart render failed: %v", err)
	}
}

// GetDashboardStats is the restaurant-wide admin overview.
func (rc *ReportController) GetDashboardStats(c *gin.Context) {
	todayStart := startOfToday()

	var ordersToday, openOrders int64
	rc.DB.Model(&models.Order{}).Where("created_at >= ?", todayStart).Count(&ordersToday)
	rc.DB.Model(&models.Order{}).
		Where("status IN ?", []string{
			models.OrderStatusPending, models.OrderStatusConfirmed,
			models.OrderStatusPreparing, models.OrderStatusReady,
		}).Count(&openOrders)

	var revenueToday float64
	var paidToday []models.Bill
	rc.DB.Where("payment_status = ? AND paid_at >= ?", models.PaymentStatusPaid, todayStart).
		Find(&paidToday)
	for _, bill := range paidToday {
		revenueToday += bill.Total
	}

	var availableTables, occupiedTables int64
	rc.DB.Model(&models.Table{}).Where("status = ?", "available").Count(&availableTables)
	rc.DB.Model(&models.Table{}).Where("status = ?", "occupied").Count(&occupiedTables)

	var reservationsToday int64
	rc.DB.Model(&models.Reservation{}).
		Where("reservation_date >= ? AND reservation_date < ? AND status IN ?",
			todayStart, todayStart.Add(24*time.Hour),
			[]string{models.ReservationStatusPending, models.ReservationStatusConfirmed, models.ReservationStatusSeated}).
		Count(&reservationsToday)

	var lowStock int64
	rc.DB.Model(&models.InventoryItem{}).
		Where("is_active = ? AND current_quantity <= min_quantity", true).
		Count(&lowStock)

	utils.RespondJSON(c, http.StatusOK, "Dashboard statistics", gin.H{
		"orders_today":       ordersToday,
		"open_orders":        openOrders,
		"revenue_today":      round2(revenueToday),
		"available_tables":   availableTables,
		"occupied_tables":    occupiedTables,
		"reservations_today": reservationsToday,
		"low_stock_items":    lowStock,
	})
}
