package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	crmcasedomain "github.com/seb-lewis/startupcrm/internal/crmcase/domain"
	"github.com/seb-lewis/startupcrm/pkg/db/pagination"
)

func (s *Server) CreateCase(c *gin.Context) {
	var req crmcasedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.caseService.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCase(c *gin.Context) {
	resp, err := s.caseService.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCases(c *gin.Context) {
	var query struct {
		AccountID string `form:"account_id"`
		Status    string `form:"status"`
		Priority  string `form:"priority"`
		SortBy    string `form:"sort_by"`
		OrderBy   string `form:"order_by"`
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, pageInfo, err := s.caseService.List(c.Request.Context(), crmcasedomain.ListQuery{
		AccountID:  query.AccountID,
		Status:     query.Status,
		Priority:   query.Priority,
		SortBy:     query.SortBy,
		OrderBy:    query.OrderBy,
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": pageInfo})
}

func (s *Server) UpdateCase(c *gin.Context) {
	var req crmcasedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.caseService.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CloseCase(c *gin.Context) {
	resp, err := s.caseService.Close(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
