package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrSlotIncomplete 在格位四元组缺少任一分量时返回
var ErrSlotIncomplete = errors.New("slot key is incomplete")

// ErrInvalidDocument 在调用方提交的文档不是合法 JSON 时返回
var ErrInvalidDocument = errors.New("document is not valid json")

// SlotKey 唯一定位一个训练格位：某用户某计划下的某周某天
// WeekID/DayID 是调用方定义的不透明标识，本层不校验其是否存在于计划文档中
type SlotKey struct {
	UserID uint
	PlanID uint
	WeekID string
	DayID  string
}

// Validate 校验格位分量齐全
func (k SlotKey) Validate() error {
	if k.UserID == 0 || k.PlanID == 0 {
		return ErrSlotIncomplete
	}
	if strings.TrimSpace(k.WeekID) == "" || strings.TrimSpace(k.DayID) == "" {
		return ErrSlotIncomplete
	}
	return nil
}

// DecodeDocument 将存储的序列化文档还原为结构化值。
// 空文本视为无文档；损坏的文本直接报错，绝不返回残缺结构。
func DecodeDocument(text string) (any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("decode stored document: %w", err)
	}
	return doc, nil
}

// encodeDocument 将调用方传入的原始 JSON 规范为存储文本。
// 非法 JSON 在写入前即被拒绝。
func encodeDocument(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	if !json.Valid(raw) {
		return "", ErrInvalidDocument
	}
	return string(raw), nil
}
