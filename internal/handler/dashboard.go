package handler

import (
	"net/http"

	"modapos/internal/dto"
	"modapos/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Get(c *gin.Context) {
	var q dto.DashboardQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
