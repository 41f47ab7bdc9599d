package router

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decimalOf(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
