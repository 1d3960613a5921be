package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/liftlog/internal/csv"
	"github.com/liftlog/internal/service"
)

// slotKeyFromRequest 从路由参数组装训练格位键
func slotKeyFromRequest(c *gin.Context, userID uint) (service.SlotKey, bool) {
	planID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return service.SlotKey{}, false
	}

	key := service.SlotKey{
		UserID: userID,
		PlanID: planID,
		WeekID: c.Param("weekId"),
		DayID:  c.Param("dayId"),
	}

	if err := key.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "训练格位不完整")
		return service.SlotKey{}, false
	}

	return key, true
}

// SaveWorkoutSession 保存格位上的训练记录（幂等覆盖）
func (a *API) SaveWorkoutSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	key, ok := slotKeyFromRequest(c, userID)
	if !ok {
		return
	}

	var payload struct {
		Data json.RawMessage `json:"data"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if err := a.sessions.Save(key, payload.Data); err != nil {
		handleWorkoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// GetWorkoutSession 返回格位上最近保存的训练记录，未保存时 data 为 null
func (a *API) GetWorkoutSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	key, ok := slotKeyFromRequest(c, userID)
	if !ok {
		return
	}

	doc, err := a.sessions.GetLast(key)
	if err != nil {
		handleWorkoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": doc})
}

// SetCompletion 设置或清除格位的完成标记
func (a *API) SetCompletion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	key, ok := slotKeyFromRequest(c, userID)
	if !ok {
		return
	}

	var payload struct {
		Completed bool `json:"completed"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if err := a.completions.SetCompleted(key, payload.Completed); err != nil {
		handleWorkoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"completed": payload.Completed})
}

// GetCompletionStatus 返回格位是否已完成
func (a *API) GetCompletionStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	key, ok := slotKeyFromRequest(c, userID)
	if !ok {
		return
	}

	completed, err := a.completions.GetStatus(key)
	if err != nil {
		handleWorkoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"completed": completed})
}

// GetLastCompletion 返回计划下最近完成的格位
func (a *API) GetLastCompletion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	planID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	last, err := a.completions.GetLast(userID, planID)
	if err != nil {
		handleWorkoutError(c, err)
		return
	}

	if last == nil {
		c.JSON(http.StatusOK, gin.H{"last": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"last": serializeCompletedSlot(*last)})
}

// ListCompletions 返回计划下全部完成格位，按完成时间从旧到新
func (a *API) ListCompletions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	planID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	slots, err := a.completions.GetAll(userID, planID)
	if err != nil {
		handleWorkoutError(c, err)
		return
	}

	items := make([]gin.H, 0, len(slots))
	for _, slot := range slots {
		items = append(items, serializeCompletedSlot(slot))
	}

	c.JSON(http.StatusOK, gin.H{"completions": items})
}

// ExportCompletions 将计划的完成时间线导出为 CSV 文件
func (a *API) ExportCompletions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	planID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	slots, err := a.completions.GetAll(userID, planID)
	if err != nil {
		handleWorkoutError(c, err)
		return
	}

	rows := make([][]string, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, []string{slot.WeekID, slot.DayID, slot.CompletedAt.Format(time.RFC3339)})
	}

	text := csv.Encode([]string{"week", "day", "completed_at"}, rows)

	filename := fmt.Sprintf("plan-%s-completions.csv", strconv.FormatUint(uint64(planID), 10))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(text))
}

// SetPreferences 整体覆盖写入最后浏览位置
func (a *API) SetPreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	var payload struct {
		LastPlanID uint   `json:"last_plan_id"`
		LastWeekID string `json:"last_week_id"`
		LastDayID  string `json:"last_day_id"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	err := a.prefs.Set(userID, service.PreferenceInput{
		LastPlanID: payload.LastPlanID,
		LastWeekID: payload.LastWeekID,
		LastDayID:  payload.LastDayID,
	})
	if err != nil {
		handleWorkoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// GetPreferences 返回最后浏览位置，未记录时 preferences 为 null
func (a *API) GetPreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	pref, err := a.prefs.Get(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取浏览位置失败")
		return
	}

	if pref == nil {
		c.JSON(http.StatusOK, gin.H{"preferences": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": gin.H{
		"last_plan_id": pref.LastPlanID,
		"last_week_id": pref.LastWeekID,
		"last_day_id":  pref.LastDayID,
	}})
}

func serializeCompletedSlot(slot service.CompletedSlot) gin.H {
	return gin.H{
		"week_id":      slot.WeekID,
		"day_id":       slot.DayID,
		"completed_at": slot.CompletedAt.Format(time.RFC3339),
	}
}

func handleWorkoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSlotIncomplete):
		respondError(c, http.StatusBadRequest, "训练格位不完整")
	case errors.Is(err, service.ErrInvalidDocument):
		respondError(c, http.StatusBadRequest, "训练内容不是合法的JSON")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
