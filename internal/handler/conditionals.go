package handler

import (
	"net/http"

	"modapos/internal/dto"
	"modapos/internal/service"

	"github.com/gin-gonic/gin"
)

type ConditionalsHandler struct {
	svc      service.ConditionalService
	receipts service.ReceiptService
}

func NewConditionalsHandler(svc service.ConditionalService, receipts service.ReceiptService) *ConditionalsHandler {
	return &ConditionalsHandler{svc: svc, receipts: receipts}
}

func (h *ConditionalsHandler) List(c *gin.Context) {
	var filter dto.ConditionalFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ConditionalsHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Process sells or returns items of a conditional.
func (h *ConditionalsHandler) Process(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.ProcessConditionalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Process(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ConditionalsHandler) Receipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.receipts.ForConditional(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
