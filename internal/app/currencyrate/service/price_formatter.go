package service

import (
	"fmt"
	"strings"
)

// DefaultPriceFormatter - простое форматирование "знак + сумма".
// Хост может подставить свой локализованный форматтер через интерфейс PriceFormatter
type DefaultPriceFormatter struct{}

func NewDefaultPriceFormatter() *DefaultPriceFormatter {
	return &DefaultPriceFormatter{}
}

func (f *DefaultPriceFormatter) Format(price float64, isoCode, sign string) string {
	if strings.TrimSpace(sign) == "" {
		return fmt.Sprintf("%.2f %s", price, isoCode)
	}
	return fmt.Sprintf("%s%.2f", sign, price)
}
