package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pos-backend/internal/models"
	"pos-backend/internal/service"
)

/* =========================
   CREATE
========================= */

func CreateEstimate(svc *service.EstimateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/estimates/create"
		defer handlePanic(c, route)

		var req models.EstimateCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, route, err)
			return
		}
		defaultStaff(c, &req.Bill)

		ctx, cancel := requestContext(c)
		defer cancel()

		estimate, err := svc.Create(ctx, req)
		if err != nil {
			respondServiceError(c, route, "Error creating estimate", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Estimate created successfully!",
			"data": gin.H{
				"estimate_id":     estimate.EstimateID,
				"estimate_number": estimate.EstimateNumber,
				"customer_name":   estimate.CustomerName,
				"total":           estimate.Total,
				"created_at":      estimate.CreatedAt,
			},
			"estimate_id":     estimate.EstimateID,
			"estimate_number": estimate.EstimateNumber,
		})
	}
}

/* =========================
   READ
========================= */

// ListEstimates serves /all, /converted and /pending. A nil converted lists
// every estimate.
func ListEstimates(svc *service.EstimateService, converted *bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := "GET " + c.FullPath()
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		estimates, err := svc.List(ctx, converted)
		if err != nil {
			respondServiceError(c, route, "Error fetching estimates", err)
			return
		}
		c.JSON(http.StatusOK, estimates)
	}
}

func GetEstimate(svc *service.EstimateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/estimates/:estimate_id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		estimate, err := svc.Get(ctx, c.Param("estimate_id"))
		if err != nil {
			respondServiceError(c, route, "Error fetching estimate", err)
			return
		}
		c.JSON(http.StatusOK, estimate)
	}
}

func GetEstimateByNumber(svc *service.EstimateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/estimates/number/:estimate_number"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		estimate, err := svc.GetByNumber(ctx, c.Param("estimate_number"))
		if err != nil {
			respondServiceError(c, route, "Error fetching estimate", err)
			return
		}
		c.JSON(http.StatusOK, estimate)
	}
}

func GetEstimateByObjectID(svc *service.EstimateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/estimates/id/:id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		estimate, err := svc.GetByObjectID(ctx, c.Param("id"))
		if err != nil {
			respondServiceError(c, route, "Error fetching estimate", err)
			return
		}
		c.JSON(http.StatusOK, estimate)
	}
}

/* =========================
   UPDATE / DELETE
========================= */

type estimateStatusRequest struct {
	Status string `json:"status"`
}

func UpdateEstimateStatus(svc *service.EstimateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/estimates/:estimate_id/status"
		defer handlePanic(c, route)

		status, ok := c.GetQuery("status")
		if !ok {
			var req estimateStatusRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				respondBindError(c, route, err)
				return
			}
			status = req.Status
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		updated, err := svc.SetStatus(ctx, c.Param("estimate_id"), status)
		if err != nil {
			respondServiceError(c, route, "Error updating estimate status", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Estimate status updated to %s", updated),
			"status":  updated,
		})
	}
}

func DeleteEstimate(svc *service.EstimateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/estimates/:estimate_id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		err := svc.Delete(ctx, c.Param("estimate_id"))
		if errors.Is(err, service.ErrEstimateConverted) {
			respondWithError(c, http.StatusBadRequest, route, "Cannot delete estimate that has been converted to order")
			return
		}
		if err != nil {
			respondServiceError(c, route, "Error deleting estimate", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Estimate deleted successfully"})
	}
}

/* =========================
   CONVERT
========================= */

func ConvertEstimate(svc *service.EstimateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/estimates/:estimate_id/convert-to-order"
		defer handlePanic(c, route)

		opts := service.ConvertOptions{PaymentMode: c.Query("payment_mode")}
		if saleBy, ok := c.GetQuery("sale_by"); ok {
			opts.SaleBy = &saleBy
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		result, err := svc.Convert(ctx, c.Param("estimate_id"), opts)
		if err != nil {
			respondServiceError(c, route, "Error converting estimate to order", err)
			return
		}

		order := result.Order
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Estimate converted to order successfully!",
			"data": gin.H{
				"order_id":        order.OrderID,
				"sale_number":     order.SaleNumber,
				"estimate_id":     result.Estimate.EstimateID,
				"estimate_number": result.Estimate.EstimateNumber,
				"customer_name":   order.CustomerName,
				"total":           order.Total,
				"payment_mode":    order.PaymentMode,
				"created_at":      order.CreatedAt,
			},
			"order_id":    order.OrderID,
			"sale_number": order.SaleNumber,
		})
	}
}
