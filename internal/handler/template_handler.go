package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/liftlog/internal/db"
	"github.com/liftlog/internal/service"
)

type templatePayload struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
}

// ListTemplates 返回模板列表
func (a *API) ListTemplates(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	templates, err := a.templates.List(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取模板列表失败")
		return
	}

	items := make([]gin.H, 0, len(templates))
	for _, template := range templates {
		item, err := templateToPayload(template)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "模板数据已损坏")
			return
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"templates": items})
}

// GetTemplate 返回单个模板详情
func (a *API) GetTemplate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的模板ID")
		return
	}

	template, err := a.templates.Get(id, userID)
	if err != nil {
		handleTemplateError(c, err)
		return
	}

	a.respondTemplate(c, *template)
}

// CreateTemplate 创建模板
func (a *API) CreateTemplate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	var payload templatePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	template, err := a.templates.Create(userID, service.TemplateInput{
		Name:        payload.Name,
		Description: payload.Description,
		Data:        payload.Data,
	})
	if err != nil {
		handleTemplateError(c, err)
		return
	}

	a.respondTemplate(c, *template)
}

// UpdateTemplate 整体更新模板
func (a *API) UpdateTemplate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的模板ID")
		return
	}

	var payload templatePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	template, err := a.templates.Update(id, userID, service.TemplateInput{
		Name:        payload.Name,
		Description: payload.Description,
		Data:        payload.Data,
	})
	if err != nil {
		handleTemplateError(c, err)
		return
	}

	a.respondTemplate(c, *template)
}

// DeleteTemplate 删除模板
func (a *API) DeleteTemplate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的模板ID")
		return
	}

	if err := a.templates.Delete(id, userID); err != nil {
		respondError(c, http.StatusInternalServerError, "删除模板失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (a *API) respondTemplate(c *gin.Context, template db.Template) {
	payload, err := templateToPayload(template)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "模板数据已损坏")
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": payload})
}

func templateToPayload(template db.Template) (gin.H, error) {
	doc, err := service.DecodeDocument(template.Data)
	if err != nil {
		return nil, err
	}

	return gin.H{
		"id":          template.ID,
		"name":        template.Name,
		"description": template.Description,
		"data":        doc,
		"created_at":  template.CreatedAt.Format(time.RFC3339),
	}, nil
}

func handleTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		respondError(c, http.StatusNotFound, "模板不存在")
	case errors.Is(err, service.ErrInvalidDocument):
		respondError(c, http.StatusBadRequest, "模板内容不是合法的JSON")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
