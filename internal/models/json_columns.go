package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON 多语言文本列，键为 locale
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	bytes, err := scanJSONBytes(value)
	if err != nil || bytes == nil {
		*j = make(JSON)
		return err
	}
	return json.Unmarshal(bytes, j)
}

// StringArray 以 JSON 数组落库的字符串列表
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	bytes, err := scanJSONBytes(value)
	if err != nil || bytes == nil {
		*s = StringArray{}
		return err
	}
	return json.Unmarshal(bytes, s)
}

// sqlite 驱动可能以 string 返回 json 列
func scanJSONBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type %T", value)
	}
}
