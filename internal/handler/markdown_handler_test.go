package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestPreviewMarkdownSanitizesOutput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := &API{}

	payload := map[string]string{"content": "**今日重点** <script>alert(1)</script>"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/markdown/preview", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	api.PreviewMarkdown(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !strings.Contains(resp.HTML, "<strong>今日重点</strong>") {
		t.Fatalf("expected rendered markdown, got %q", resp.HTML)
	}
	if strings.Contains(resp.HTML, "<script>") {
		t.Fatalf("expected script tag to be stripped, got %q", resp.HTML)
	}
}
