// conn.go
// WebSocket 连接生命周期管理
// 1. Upgrade 建立连接并注册到 Hub
// 2. 读协程解析前端指令帧并分发到 Hub，业务错误只回发给本连接
// 3. 写协程消费下行缓冲推送给前端
package chat

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"relay_chat_server/internal/dto/request"
	"relay_chat_server/pkg/constants"
	"relay_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Command 前端上行指令帧
type Command struct {
	Action         string `json:"action"`
	RoomId         string `json:"roomId"`
	MessageId      int64  `json:"messageId,string"`
	Content        string `json:"content"`
	Type           int8   `json:"type"`
	AttachmentUrl  string `json:"attachmentUrl"`
	AttachmentName string `json:"attachmentName"`
	Emoji          string `json:"emoji"`
}

// 指令名称
const (
	ActionJoinRoom       = "joinRoom"
	ActionLeaveRoom      = "leaveRoom"
	ActionSendMessage    = "sendMessage"
	ActionEditMessage    = "editMessage"
	ActionDeleteMessage  = "deleteMessage"
	ActionStartTyping    = "startTyping"
	ActionStopTyping     = "stopTyping"
	ActionAddReaction    = "addReaction"
	ActionRemoveReaction = "removeReaction"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// connIdSeq 连接 ID 自增序列
var connIdSeq int64

// UserConn 一条已建立的 WebSocket 连接
type UserConn struct {
	connId   int64
	userUuid string
	conn     *websocket.Conn
	hub      *Hub
	// sendBack 下行缓冲，写协程消费
	sendBack  chan []byte
	closeOnce sync.Once
}

// Deliver 实现 Sink：非阻塞投递，缓冲满时丢帧
func (c *UserConn) Deliver(frame []byte) bool {
	select {
	case c.sendBack <- frame:
		return true
	default:
		return false
	}
}

// NewClientInit 处理 WebSocket 握手，JWT 中间件已完成身份认证
func NewClientInit(c *gin.Context, hub *Hub, userUuid string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("WebSocket 升级失败", zap.Error(err))
		return
	}

	client := &UserConn{
		connId:   atomic.AddInt64(&connIdSeq, 1),
		userUuid: userUuid,
		conn:     conn,
		hub:      hub,
		sendBack: make(chan []byte, constants.CHANNEL_SIZE),
	}

	if err := hub.Connect(client.connId, userUuid, client); err != nil {
		zap.L().Error("连接注册失败", zap.String("userUuid", userUuid), zap.Error(err))
		_ = conn.Close()
		return
	}

	go client.readLoop()
	go client.writeLoop()
	zap.L().Info("ws连接成功", zap.Int64("connId", client.connId), zap.String("userUuid", userUuid))
}

// readLoop 读取前端指令帧并分发
// 读失败（前端断开、协议错误）即注销连接并退出
func (c *UserConn) readLoop() {
	defer c.close()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("ws读取异常", zap.Int64("connId", c.connId), zap.Error(err))
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.sendError(errorx.New(errorx.CodeBadRequest, "指令格式错误"))
			continue
		}
		if err := c.dispatch(cmd); err != nil {
			c.sendError(err)
		}
	}
}

// writeLoop 消费下行缓冲推送给前端
// 写失败即关闭连接，由读协程的 ReadMessage 错误触发注销
func (c *UserConn) writeLoop() {
	for frame := range c.sendBack {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			zap.L().Warn("ws写入失败", zap.Int64("connId", c.connId), zap.Error(err))
			_ = c.conn.Close()
			return
		}
	}
}

// dispatch 指令分发，所有业务规则在 Hub 内执行
func (c *UserConn) dispatch(cmd Command) error {
	switch cmd.Action {
	case ActionJoinRoom:
		return c.hub.JoinRoom(c.connId, c.userUuid, cmd.RoomId)
	case ActionLeaveRoom:
		return c.hub.LeaveRoom(c.connId, c.userUuid, cmd.RoomId)
	case ActionSendMessage:
		_, err := c.hub.SendMessage(c.userUuid, request.SendMessageRequest{
			RoomId:         cmd.RoomId,
			Content:        cmd.Content,
			Type:           cmd.Type,
			AttachmentUrl:  cmd.AttachmentUrl,
			AttachmentName: cmd.AttachmentName,
		})
		return err
	case ActionEditMessage:
		_, err := c.hub.EditMessage(c.userUuid, cmd.MessageId, cmd.Content)
		return err
	case ActionDeleteMessage:
		return c.hub.DeleteMessage(c.userUuid, cmd.MessageId)
	case ActionStartTyping:
		return c.hub.StartTyping(c.connId, c.userUuid, cmd.RoomId)
	case ActionStopTyping:
		return c.hub.StopTyping(c.connId, c.userUuid, cmd.RoomId)
	case ActionAddReaction:
		return c.hub.AddReaction(c.userUuid, cmd.MessageId, cmd.Emoji)
	case ActionRemoveReaction:
		return c.hub.RemoveReaction(c.userUuid, cmd.MessageId, cmd.Emoji)
	default:
		return errorx.Newf(errorx.CodeBadRequest, "未知指令 %s", cmd.Action)
	}
}

// sendError 错误帧只发给出错的这条连接，不打扰房间内其他人
func (c *UserConn) sendError(err error) {
	frame := Event{Event: EventError, Data: ErrorEvent{
		Code: errorx.GetCode(err),
		Msg:  err.Error(),
	}}.Encode()
	if frame == nil {
		return
	}
	c.Deliver(frame)
}

// close 注销连接并释放资源，幂等
func (c *UserConn) close() {
	c.closeOnce.Do(func() {
		c.hub.Disconnect(c.connId)
		_ = c.conn.Close()
		close(c.sendBack)
		zap.L().Info("ws连接断开", zap.Int64("connId", c.connId), zap.String("userUuid", c.userUuid))
	})
}
