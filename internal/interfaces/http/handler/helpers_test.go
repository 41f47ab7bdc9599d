package handler

import "github.com/gin-gonic/gin"

func ginParam(key, value string) gin.Param {
	return gin.Param{Key: key, Value: value}
}
