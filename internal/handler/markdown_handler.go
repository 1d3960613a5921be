package handler

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// PreviewMarkdown 将计划/模板说明的 Markdown 渲染为净化后的 HTML
func (a *API) PreviewMarkdown(c *gin.Context) {
	var payload struct {
		Content string `json:"content"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(payload.Content), &buf); err != nil {
		respondError(c, http.StatusInternalServerError, "渲染失败")
		return
	}

	safe := sanitizer.SanitizeBytes(buf.Bytes())
	c.JSON(http.StatusOK, gin.H{"html": strings.TrimSpace(string(safe))})
}
