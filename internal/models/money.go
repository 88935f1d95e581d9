package models

import (
	"database/sql/driver"
	"strings"

	"github.com/shopspring/decimal"
)

// moneyScale 金额统一保留两位小数
const moneyScale = 2

// Money 金额。JSON 输出为两位小数字符串，输入接受字符串或数字。
type Money struct {
	decimal.Decimal
}

// MoneyOf 四舍五入到分
func MoneyOf(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(moneyScale)}
}

// ParseMoney 解析文本金额
func ParseMoney(raw string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Money{}, err
	}
	return MoneyOf(d), nil
}

// MustMoney 解析失败时 panic，只用于字面量
func MustMoney(raw string) Money {
	m, err := ParseMoney(raw)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Ptr() *Money {
	return &m
}

func (m Money) String() string {
	return m.Decimal.StringFixed(moneyScale)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON 数字按十进制文本解析，不经过 float64
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*m = MoneyOf(d)
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(moneyScale).Value()
}

func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(moneyScale)
	return nil
}
