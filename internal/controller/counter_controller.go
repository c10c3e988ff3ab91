package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wechat_ai_relay/internal/service"
	"wechat_ai_relay/internal/util"
)

type CounterController struct {
	CounterService *service.CounterService
}

func NewCounterController(counterService *service.CounterService) *CounterController {
	return &CounterController{CounterService: counterService}
}

// counterReply 计数接口固定返回 {code:0, data:<总数>}
type counterReply struct {
	Code int   `json:"code"`
	Data int64 `json:"data"`
}

// GetCount 查询当前计数
func (c *CounterController) GetCount(ctx *gin.Context) {
	count, err := c.CounterService.Count()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, counterReply{Code: 0, Data: count})
}

// UpdateCount 更新计数，action 为 inc 或 clear，其余动作只回显当前值
func (c *CounterController) UpdateCount(ctx *gin.Context) {
	var req struct {
		Action string `json:"action"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	switch req.Action {
	case "inc":
		if err := c.CounterService.Increment(); err != nil {
			util.LogInternalError(ctx, err)
			return
		}
	case "clear":
		if err := c.CounterService.Clear(); err != nil {
			util.LogInternalError(ctx, err)
			return
		}
	}

	count, err := c.CounterService.Count()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, counterReply{Code: 0, Data: count})
}
