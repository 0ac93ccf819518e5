package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// moneyScale 金额保留的小数位，佣金按比例计算后会出现第三位小数
const moneyScale = 4

// Money 统一金额类型，JSON 输出为数字
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(moneyScale)}
}

// MarshalJSON 输出 JSON 数字（去除尾随 0）
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.Round(moneyScale).String()), nil
}

// UnmarshalJSON 解析金额（字符串或数字）
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = s
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	m.Decimal = d.Round(moneyScale)
	return nil
}

// Value 用于数据库写入
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(moneyScale).String(), nil
}

// Scan 用于数据库读取
func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(moneyScale)
	return nil
}

// String 返回规范化后的金额字符串
func (m Money) String() string {
	return m.Decimal.Round(moneyScale).String()
}

// NullMoney 可为空的金额，区分“未设置”与 0
type NullMoney struct {
	Money
	Valid bool
}

// NewNullMoney 创建有效金额
func NewNullMoney(amount decimal.Decimal) NullMoney {
	return NullMoney{Money: NewMoneyFromDecimal(amount), Valid: true}
}

// OrZero 未设置时返回 0
func (n NullMoney) OrZero() decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}

// MarshalJSON 未设置时输出 null
func (n NullMoney) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Money.MarshalJSON()
}

// UnmarshalJSON 解析可空金额
func (n *NullMoney) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		n.Money = Money{Decimal: decimal.Zero}
		n.Valid = false
		return nil
	}
	if err := n.Money.UnmarshalJSON(b); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Value 用于数据库写入
func (n NullMoney) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Money.Value()
}

// Scan 用于数据库读取
func (n *NullMoney) Scan(value interface{}) error {
	if value == nil {
		n.Money = Money{Decimal: decimal.Zero}
		n.Valid = false
		return nil
	}
	if err := n.Money.Scan(value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}
