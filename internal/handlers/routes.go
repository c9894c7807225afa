package handlers

import (
	"github.com/gin-gonic/gin"

	"pos-backend/internal/messaging"
	"pos-backend/internal/service"
	"pos-backend/internal/storage"
)

// API groups the collaborators the /api routes are built from.
type API struct {
	Estimates *service.EstimateService
	Orders    *service.OrderService
	Reports   *service.ReportService
	Messenger messaging.Messenger
	Documents storage.DocumentStore
	Clients   ClientCounter
}

// RegisterRoutes mounts every /api endpoint on group.
func RegisterRoutes(api *gin.RouterGroup, deps API) {
	converted, pending := true, false

	api.GET("/", APIHome())
	api.GET("/websocket/status", WebsocketStatus(deps.Clients))

	estimates := api.Group("/estimates")
	{
		estimates.POST("/create", CreateEstimate(deps.Estimates))
		estimates.GET("/all", ListEstimates(deps.Estimates, nil))
		estimates.GET("/converted", ListEstimates(deps.Estimates, &converted))
		estimates.GET("/pending", ListEstimates(deps.Estimates, &pending))
		estimates.GET("/number/:estimate_number", GetEstimateByNumber(deps.Estimates))
		estimates.GET("/id/:id", GetEstimateByObjectID(deps.Estimates))
		estimates.GET("/:estimate_id", GetEstimate(deps.Estimates))
		estimates.DELETE("/:estimate_id", DeleteEstimate(deps.Estimates))
		estimates.PUT("/:estimate_id/status", UpdateEstimateStatus(deps.Estimates))
		estimates.POST("/:estimate_id/convert-to-order", ConvertEstimate(deps.Estimates))
	}

	orders := api.Group("/orders")
	{
		orders.POST("/create-sale", CreateSale(deps.Orders))
		orders.GET("/all", ListAllSales(deps.Orders))
		orders.GET("/separate", ListSeparateSales(deps.Orders))
		orders.GET("/orders-only", ListOrdersOnly(deps.Orders))
		orders.GET("/number/:sale_number", GetOrderByNumber(deps.Orders))
		orders.GET("/id/:id", GetOrderByObjectID(deps.Orders))
		orders.GET("/:order_id", GetOrder(deps.Orders))
		orders.PUT("/:order_id/status", UpdateOrderStatus(deps.Orders))
		orders.DELETE("/:order_id", DeleteOrder(deps.Orders))
	}

	reports := api.Group("/reports")
	{
		reports.GET("/today", TodayReport(deps.Reports))
		reports.GET("/date-range", DateRangeReport(deps.Reports))
		reports.GET("/monthly/:year/:month", MonthlyReport(deps.Reports))
		reports.GET("/staff-performance", StaffPerformanceReport(deps.Reports))
		reports.GET("/estimates-only", EstimatesReport(deps.Reports))
		reports.GET("/orders-only", OrdersReport(deps.Reports))
	}

	whatsapp := api.Group("/whatsapp")
	{
		whatsapp.POST("/send", SendMessage(deps.Messenger))
		whatsapp.POST("/send-estimate-pdf", SendEstimatePDF(deps.Messenger, deps.Documents))
		whatsapp.POST("/sms/send", SendMessage(deps.Messenger))
	}
}
