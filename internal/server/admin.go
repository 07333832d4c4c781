package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	admindomain "github.com/seb-lewis/startupcrm/internal/admin/domain"
	"github.com/seb-lewis/startupcrm/pkg/db/pagination"
)

func (s *Server) AdminListUsers(c *gin.Context) {
	var query struct {
		Query string `form:"q"`
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, pageInfo, err := s.adminService.ListUsers(c.Request.Context(), admindomain.ListUsersRequest{
		Query:      query.Query,
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": pageInfo})
}

func (s *Server) AdminActivateUser(c *gin.Context) {
	resp, err := s.adminService.SetUserActive(c.Request.Context(), strings.TrimSpace(c.Param("id")), true)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AdminDeactivateUser(c *gin.Context) {
	resp, err := s.adminService.SetUserActive(c.Request.Context(), strings.TrimSpace(c.Param("id")), false)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AdminListOrganizations(c *gin.Context) {
	var query struct {
		Query string `form:"q"`
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, pageInfo, err := s.adminService.ListOrganizations(c.Request.Context(), admindomain.ListOrganizationsRequest{
		Query:      query.Query,
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": pageInfo})
}
