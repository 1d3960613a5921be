package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/liftlog/internal/db"
	"github.com/liftlog/internal/service"
)

type planPayload struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// ListPlans 返回计划列表，按归档标记严格二分
func (a *API) ListPlans(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	archived, err := strconv.ParseBool(c.DefaultQuery("archived", "false"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的归档筛选参数")
		return
	}

	plans, err := a.plans.List(userID, archived)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取计划列表失败")
		return
	}

	items := make([]gin.H, 0, len(plans))
	for _, plan := range plans {
		item, err := planToPayload(plan)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "计划数据已损坏")
			return
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"plans": items})
}

// GetPlan 返回单个计划详情
func (a *API) GetPlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	plan, err := a.plans.Get(id, userID)
	if err != nil {
		handlePlanError(c, err)
		return
	}

	a.respondPlan(c, *plan)
}

// CreatePlan 创建计划
func (a *API) CreatePlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	var payload planPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	plan, err := a.plans.Create(userID, service.PlanInput{Name: payload.Name, Data: payload.Data})
	if err != nil {
		handlePlanError(c, err)
		return
	}

	a.respondPlan(c, *plan)
}

// UpdatePlan 整体更新计划名称与内容
func (a *API) UpdatePlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	var payload planPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	plan, err := a.plans.Update(id, userID, service.PlanInput{Name: payload.Name, Data: payload.Data})
	if err != nil {
		handlePlanError(c, err)
		return
	}

	a.respondPlan(c, *plan)
}

// DeletePlan 删除计划，未命中也返回成功
func (a *API) DeletePlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	if err := a.plans.Delete(id, userID); err != nil {
		respondError(c, http.StatusInternalServerError, "删除计划失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ArchivePlan 归档计划，重复归档同样返回成功
func (a *API) ArchivePlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	plan, err := a.plans.Archive(id, userID)
	if err != nil {
		handlePlanError(c, err)
		return
	}

	a.respondPlan(c, *plan)
}

// RolloverPlan 归档当前计划并滚动出下一版
func (a *API) RolloverPlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的计划ID")
		return
	}

	plan, err := a.plans.Rollover(id, userID)
	if err != nil {
		handlePlanError(c, err)
		return
	}

	a.respondPlan(c, *plan)
}

func (a *API) respondPlan(c *gin.Context, plan db.Plan) {
	payload, err := planToPayload(plan)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "计划数据已损坏")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": payload})
}

func planToPayload(plan db.Plan) (gin.H, error) {
	doc, err := service.DecodeDocument(plan.Data)
	if err != nil {
		return nil, err
	}

	item := gin.H{
		"id":         plan.ID,
		"name":       plan.Name,
		"data":       doc,
		"archived":   plan.Archived,
		"created_at": plan.CreatedAt.Format(time.RFC3339),
	}

	if plan.PredecessorPlanID != nil {
		item["predecessor_plan_id"] = *plan.PredecessorPlanID
	}

	return item, nil
}

func handlePlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		respondError(c, http.StatusNotFound, "计划不存在")
	case errors.Is(err, service.ErrInvalidDocument):
		respondError(c, http.StatusBadRequest, "计划内容不是合法的JSON")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
