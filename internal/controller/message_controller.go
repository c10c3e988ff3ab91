package controller

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"wechat_ai_relay/internal/service"
	"wechat_ai_relay/internal/util"
)

type MessageController struct {
	MessageService *service.MessageService
}

func NewMessageController(messageService *service.MessageService) *MessageController {
	return &MessageController{MessageService: messageService}
}

// WechatMessage 微信云托管消息推送的请求体
type WechatMessage struct {
	ToUserName   string `json:"ToUserName"`
	FromUserName string `json:"FromUserName"`
	Content      string `json:"Content"`
	CreateTime   int64  `json:"CreateTime"`
}

// WechatReply 应答体，收发双方对调
type WechatReply struct {
	ToUserName   string `json:"ToUserName"`
	FromUserName string `json:"FromUserName"`
	CreateTime   int64  `json:"CreateTime"`
	MsgType      string `json:"MsgType"`
	Content      string `json:"Content"`
}

// Post 消息推送入口：指令短路，其余交给限时应答
func (c *MessageController) Post(ctx *gin.Context) {
	var msg WechatMessage
	if err := ctx.ShouldBindJSON(&msg); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if msg.FromUserName == "" {
		ctx.JSON(http.StatusOK, WechatReply{
			ToUserName:   msg.FromUserName,
			FromUserName: msg.ToUserName,
			CreateTime:   msg.CreateTime,
			MsgType:      "text",
			Content:      service.NoUserMessage,
		})
		return
	}

	if strings.TrimSpace(msg.Content) == service.GetIDKey {
		ctx.JSON(http.StatusOK, WechatReply{
			ToUserName:   msg.FromUserName,
			FromUserName: msg.ToUserName,
			CreateTime:   msg.CreateTime,
			MsgType:      "text",
			Content:      msg.FromUserName,
		})
		return
	}

	if strings.HasPrefix(msg.Content, service.ClearKey) {
		target, deleted, err := c.MessageService.ResetConversations(msg.Content)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, WechatReply{
			ToUserName:   target,
			FromUserName: msg.ToUserName,
			CreateTime:   msg.CreateTime,
			MsgType:      "text",
			Content:      fmt.Sprintf("已重置用户共 %d 条消息", deleted),
		})
		return
	}

	reply := c.MessageService.Reply(msg.FromUserName, msg.Content)

	ctx.JSON(http.StatusOK, WechatReply{
		ToUserName:   msg.FromUserName,
		FromUserName: msg.ToUserName,
		CreateTime:   time.Now().UnixMilli(),
		MsgType:      "text",
		Content:      reply,
	})
}

// OpenID 小程序侧取微信 Open ID：云托管网关注入的头信息原样回显
func (c *MessageController) OpenID(ctx *gin.Context) {
	if ctx.GetHeader("X-WX-SOURCE") != "" {
		ctx.String(http.StatusOK, ctx.GetHeader("X-WX-OPENID"))
		return
	}
	ctx.Status(http.StatusNotFound)
}
