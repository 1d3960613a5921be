// Package csv 提供完成记录导入导出所用的表格文本编解码。
// 编码输出以 \n 结尾并仅在必要时加引号；解码是编码的精确逆运算，
// 并额外兼容 \r\n 与裸 \r 形式的换行。
package csv

import (
	"errors"
	"strings"
)

// ErrUnterminatedQuote 在引号字段未闭合时返回
var ErrUnterminatedQuote = errors.New("csv: unterminated quoted field")

// Encode 将表头与数据行编码为 CSV 文本。
// 含逗号、引号或换行的字段整体加引号，内嵌引号成对转义，
// 输出始终以换行收尾
func Encode(headers []string, rows [][]string) string {
	var b strings.Builder

	writeRecord(&b, headers)
	for _, row := range rows {
		writeRecord(&b, row)
	}

	return b.String()
}

func writeRecord(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeField(field))
	}
	b.WriteByte('\n')
}

func escapeField(field string) string {
	if !strings.ContainsAny(field, ",\"\n\r") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Decode 将 CSV 文本还原为表头与数据行。
// 引号外的 \n、\r\n 与裸 \r 都视为记录结束；引号内的内容逐字保留
func Decode(text string) (headers []string, rows [][]string, err error) {
	if text == "" {
		return nil, nil, errors.New("csv: empty input")
	}

	var (
		records  [][]string
		fields   []string
		field    strings.Builder
		inQuotes bool
		pending  bool
	)

	flushField := func() {
		fields = append(fields, field.String())
		field.Reset()
		pending = false
	}
	flushRecord := func() {
		flushField()
		records = append(records, fields)
		fields = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if inQuotes {
			// 引号内除成对引号外逐字保留，\r 不报错也不结束字段，
			// 保证解码是编码的精确逆运算
			switch ch {
			case '"':
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
			default:
				field.WriteRune(ch)
			}
			pending = true
			continue
		}

		switch ch {
		case '"':
			if field.Len() == 0 && !pending {
				inQuotes = true
				pending = true
			} else {
				field.WriteRune('"')
			}
		case ',':
			flushField()
		case '\n':
			flushRecord()
		case '\r':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			flushRecord()
		default:
			field.WriteRune(ch)
			pending = true
		}
	}

	if inQuotes {
		return nil, nil, ErrUnterminatedQuote
	}

	// 末尾缺少换行时补齐最后一条记录
	if pending || len(fields) > 0 {
		flushRecord()
	}

	if len(records) == 0 {
		return nil, nil, errors.New("csv: empty input")
	}

	return records[0], records[1:], nil
}
