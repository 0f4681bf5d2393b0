package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog-backend/internal/domains/course/model"
	"catalog-backend/internal/domains/course/repository"
	"catalog-backend/internal/domains/course/service"
	"catalog-backend/internal/shared/response"
)

type CatalogHandler struct {
	catalog service.CatalogService
}

func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// RegisterRoutes mounts the public catalog read API.
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	courses := rg.Group("/courses")
	{
		courses.GET("", h.ListCourses)
		courses.GET("/:key", h.GetCourse)
		courses.GET("/:key/runs", h.GetCourseRuns)
	}
	rg.GET("/search/courses", h.SearchCourses)
}

func (h *CatalogHandler) ListCourses(c *gin.Context) {
	var req ListCoursesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	courses, total, err := h.catalog.ListCourses(c.Request.Context(), repository.ListFilter{
		Partner: req.Partner,
		Type:    req.Type,
		Source:  req.Source,
		Page:    req.Page,
		Limit:   req.Limit,
		SortBy:  req.SortBy,
		SortDir: req.SortDir,
	})
	if err != nil {
		response.InternalServerError(c, "Failed to list courses")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, courses, &response.Meta{
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
	})
}

func (h *CatalogHandler) GetCourse(c *gin.Context) {
	partner := c.Query("partner")
	if partner == "" {
		response.BadRequest(c, "partner query parameter is required")
		return
	}

	course, err := h.catalog.GetCourse(c.Request.Context(), partner, c.Param("key"))
	if err != nil {
		if errors.Is(err, model.ErrCourseNotFound) {
			response.NotFound(c, "Course not found")
			return
		}
		response.InternalServerError(c, "Failed to get course")
		return
	}
	response.Success(c, http.StatusOK, course)
}

func (h *CatalogHandler) GetCourseRuns(c *gin.Context) {
	partner := c.Query("partner")
	if partner == "" {
		response.BadRequest(c, "partner query parameter is required")
		return
	}

	runs, err := h.catalog.GetCourseRuns(c.Request.Context(), partner, c.Param("key"))
	if err != nil {
		if errors.Is(err, model.ErrCourseNotFound) {
			response.NotFound(c, "Course not found")
			return
		}
		response.InternalServerError(c, "Failed to get course runs")
		return
	}
	response.Success(c, http.StatusOK, runs)
}

func (h *CatalogHandler) SearchCourses(c *gin.Context) {
	var req SearchCoursesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	courses, err := h.catalog.SearchCourses(c.Request.Context(), req.Partner, req.Query, req.Limit)
	if err != nil {
		response.InternalServerError(c, "Search failed")
		return
	}
	response.Success(c, http.StatusOK, courses)
}
