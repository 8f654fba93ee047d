package schema

import (
	"database/sql/driver"
	"encoding/json"
)

// JSONMap 以 JSON 文本存储的松散键值对（事件关联上下文等）
type JSONMap map[string]any

// Value 实现 driver.Valuer 接口
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONMap)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*j = make(JSONMap)
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// GetString 读取字符串字段，缺失或类型不符时返回空串
func GetString(meta JSONMap, key string) string {
	if meta == nil {
		return ""
	}
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}

// GetInt64 读取整数字段（JSON 反序列化后可能是 float64）
func GetInt64(meta JSONMap, key string) int64 {
	if meta == nil {
		return 0
	}
	switch v := meta[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
