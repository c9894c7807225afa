package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pos-backend/internal/messaging"
	"pos-backend/internal/storage"
)

// SendMessage forwards a text, or a message pointing at an already hosted
// PDF, to the gateway. It also serves the legacy /sms/send path.
func SendMessage(messenger messaging.Messenger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := "POST " + c.FullPath()
		defer handlePanic(c, route)

		var msg messaging.Message
		if err := c.ShouldBindJSON(&msg); err != nil {
			respondBindError(c, route, err)
			return
		}

		result := messenger.Send(c.Request.Context(), msg)
		if !result.Success {
			respondWithError(c, http.StatusBadRequest, route, result.Message)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

type pdfSendResponse struct {
	messaging.Result
	PDFURL string `json:"pdf_url"`
}

// SendEstimatePDF stores an uploaded estimate PDF and sends its link over
// WhatsApp.
func SendEstimatePDF(messenger messaging.Messenger, docs storage.DocumentStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/whatsapp/send-estimate-pdf"
		defer handlePanic(c, route)

		input, err := parseEstimatePDFRequest(c)
		if err != nil {
			respondBindError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		url, err := saveEstimatePDF(ctx, docs, input.File)
		cancel()
		if errors.Is(err, errNotPDF) {
			c.JSON(http.StatusBadRequest, messaging.Result{Success: false, Message: msgOnlyPDF})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Error storing PDF: "+err.Error())
			return
		}

		result := messenger.Send(c.Request.Context(), messaging.Message{
			PhoneNumber: input.PhoneNumber,
			Message:     input.Message,
			PDFURL:      url,
			Caption:     input.Caption,
		})
		if !result.Success {
			c.JSON(http.StatusBadRequest, result)
			return
		}
		c.JSON(http.StatusOK, pdfSendResponse{Result: result, PDFURL: url})
	}
}
