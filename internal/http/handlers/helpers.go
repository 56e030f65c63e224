package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard-backend/internal/pkg/ctxutil"
)

func requestData(c *gin.Context) *ctxutil.RequestData {
	return ctxutil.GetRequestData(c.Request.Context())
}
