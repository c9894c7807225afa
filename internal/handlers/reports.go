package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pos-backend/internal/service"
)

func TodayReport(svc *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reports/today"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		report, err := svc.Today(ctx)
		if err != nil {
			respondServiceError(c, route, "Error generating today's report", err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func DateRangeReport(svc *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reports/date-range"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		report, err := svc.DateRange(ctx, c.Query("start_date"), c.Query("end_date"))
		if err != nil {
			respondServiceError(c, route, "Error generating date range report", err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func MonthlyReport(svc *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reports/monthly/:year/:month"
		defer handlePanic(c, route)

		year, err := strconv.Atoi(c.Param("year"))
		if err != nil {
			respondWithError(c, http.StatusUnprocessableEntity, route, "year must be an integer")
			return
		}
		month, err := strconv.Atoi(c.Param("month"))
		if err != nil {
			respondWithError(c, http.StatusUnprocessableEntity, route, "month must be an integer")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		report, err := svc.Monthly(ctx, year, month)
		if err != nil {
			respondServiceError(c, route, "Error generating monthly report", err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func StaffPerformanceReport(svc *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reports/staff-performance"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		report, err := svc.StaffPerformance(ctx)
		if err != nil {
			respondServiceError(c, route, "Error generating staff performance report", err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func EstimatesReport(svc *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reports/estimates-only"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		report, err := svc.EstimatesOnly(ctx)
		if err != nil {
			respondServiceError(c, route, "Error generating estimates report", err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func OrdersReport(svc *service.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reports/orders-only"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		report, err := svc.OrdersOnly(ctx)
		if err != nil {
			respondServiceError(c, route, "Error generating orders report", err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
