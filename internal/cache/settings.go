package cache

import (
	"context"
	"time"
)

const settingTTL = 5 * time.Minute

func settingKey(key string) string {
	return "setting:" + key
}

// GetSetting 读取设置缓存
func GetSetting(ctx context.Context, key string) (map[string]interface{}, bool, error) {
	var value map[string]interface{}
	hit, err := GetJSON(ctx, settingKey(key), &value)
	if err != nil || !hit {
		return nil, hit, err
	}
	return value, true, nil
}

// SetSetting 写入设置缓存
func SetSetting(ctx context.Context, key string, value map[string]interface{}) error {
	return SetJSON(ctx, settingKey(key), value, settingTTL)
}

// DelSetting 删除设置缓存
func DelSetting(ctx context.Context, key string) error {
	return Del(ctx, settingKey(key))
}
