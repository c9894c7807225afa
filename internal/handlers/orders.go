package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pos-backend/internal/models"
	"pos-backend/internal/service"
)

/* =========================
   CREATE SALE
========================= */

func CreateSale(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders/create-sale"
		defer handlePanic(c, route)

		var req models.OrderCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}
		defaultStaff(c, &req.Bill)

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := svc.Create(ctx, req)
		if err != nil {
			respondServiceError(c, route, "Error creating sale", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Sale completed successfully!",
			"data": gin.H{
				"order_id":      order.OrderID,
				"sale_number":   order.SaleNumber,
				"customer_name": order.CustomerName,
				"total":         order.Total,
				"payment_mode":  order.PaymentMode,
				"created_at":    order.CreatedAt,
			},
			"order_id":    order.OrderID,
			"sale_number": order.SaleNumber,
		})
	}
}

/* =========================
   LISTINGS
========================= */

// ListAllSales merges estimates and orders, newest first.
func ListAllSales(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/all"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		entries, err := svc.Combined(ctx)
		if err != nil {
			respondServiceError(c, route, "Error fetching orders", err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func ListSeparateSales(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/separate"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		view, err := svc.Separate(ctx)
		if err != nil {
			respondServiceError(c, route, "Error fetching orders", err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func ListOrdersOnly(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/orders-only"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		view, err := svc.OrdersOnly(ctx)
		if err != nil {
			respondServiceError(c, route, "Error fetching orders", err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

/* =========================
   READ
========================= */

func GetOrder(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:order_id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := svc.Get(ctx, c.Param("order_id"))
		if err != nil {
			respondServiceError(c, route, "Error fetching order", err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func GetOrderByNumber(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/number/:sale_number"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := svc.GetByNumber(ctx, c.Param("sale_number"))
		if err != nil {
			respondServiceError(c, route, "Error fetching order", err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func GetOrderByObjectID(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/id/:id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := svc.GetByObjectID(ctx, c.Param("id"))
		if err != nil {
			respondServiceError(c, route, "Error fetching order", err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

/* =========================
   STATUS / DELETE
========================= */

type orderStatusRequest struct {
	NewStatus string `json:"new_status"`
	Status    string `json:"status"`
}

// statusParam reads new_status (or the older status) from the query string,
// falling back to a JSON body.
func statusParam(c *gin.Context) (string, error) {
	for _, key := range []string{"new_status", "status"} {
		if value, ok := c.GetQuery(key); ok {
			return value, nil
		}
	}
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.NewStatus) != "" {
		return req.NewStatus, nil
	}
	return req.Status, nil
}

func UpdateOrderStatus(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:order_id/status"
		defer handlePanic(c, route)

		raw, err := statusParam(c)
		if err != nil {
			respondBindError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		status, err := svc.UpdateStatus(ctx, c.Param("order_id"), raw)
		if err != nil {
			respondServiceError(c, route, "Error updating order status", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Order status updated to %s", status),
			"status":  status,
		})
	}
}

func DeleteOrder(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/orders/:order_id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		result, err := svc.Delete(ctx, c.Param("order_id"))
		if err != nil {
			respondServiceError(c, route, "Error deleting order", err)
			return
		}

		body := gin.H{
			"success":  true,
			"message":  "Order deleted successfully",
			"order_id": result.OrderID,
		}
		if result.DeletedEstimateID != "" {
			body["message"] = "Order and linked estimate deleted successfully"
			body["deleted_estimate_id"] = result.DeletedEstimateID
		}
		c.JSON(http.StatusOK, body)
	}
}
