package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/global-bites/services"
	"github.com/yeremiapane/global-bites/utils"
)

type AnalyticsController struct {
	Analytics *services.AnalyticsService
	now       func() time.Time
}

func NewAnalyticsController(analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Analytics: analytics, now: time.Now}
}

// dateRange reads ?start= and ?end=.
func (ac *AnalyticsController) dateRange(c *gin.Context) (services.DateRange, error) {
	start, err := dateQuery(c, "start", false)
	if err != nil {
		return services.DateRange{}, err
	}
	end, err := dateQuery(c, "end", true)
	if err != nil {
		return services.DateRange{}, err
	}
	return services.ResolveDateRange(start, end, ac.now())
}

func (ac *AnalyticsController) Dashboard(c *gin.Context) {
	stats, err := ac.Analytics.Dashboard(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}

func (ac *AnalyticsController) OrderReport(c *gin.Context) {
	r, err := ac.dateRange(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	report, err := ac.Analytics.OrderReport(c.Request.Context(), r)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order report", report)
}

// ExportOrderReport -> the order report as a PDF download
func (ac *AnalyticsController) ExportOrderReport(c *gin.Context) {
	r, err := ac.dateRange(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	report, err := ac.Analytics.OrderReport(c.Request.Context(), r)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteOrderReportPDF(&buf, report); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	filename := fmt.Sprintf("orders-%s-%s.pdf", r.Start.Format("20060102"), r.End.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (ac *AnalyticsController) DishReport(c *gin.Context) {
	report, err := ac.Analytics.DishReport(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dish report", report)
}

func (ac *AnalyticsController) AIPerformance(c *gin.Context) {
	r, err := ac.dateRange(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	report, err := ac.Analytics.AIPerformance(c.Request.Context(), r)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "AI performance report", report)
}

func (ac *AnalyticsController) StrategicInsights(c *gin.Context) {
	insights, err := ac.Analytics.StrategicInsights(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Strategic insights", insights)
}
