package chat

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"relay_chat_server/internal/dao/mysql/repository"
	"relay_chat_server/internal/dto/request"
	"relay_chat_server/internal/model"
	"relay_chat_server/pkg/errorx"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRepos 基于临时 SQLite 文件创建 Repository 层
func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&model.User{},
		&model.Room{},
		&model.RoomMember{},
		&model.Message{},
		&model.MessageReaction{},
	)
	if err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return repository.NewRepositories(db)
}

// fakeSink 捕获投递的事件帧
type fakeSink struct {
	frames [][]byte
	full   bool
}

func (s *fakeSink) Deliver(frame []byte) bool {
	if s.full {
		return false
	}
	s.frames = append(s.frames, frame)
	return true
}

// events 解析所有捕获的事件名
func (s *fakeSink) events(t *testing.T) []string {
	t.Helper()
	var names []string
	for _, frame := range s.frames {
		var e struct {
			Event string `json:"event"`
		}
		if err := json.Unmarshal(frame, &e); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		names = append(names, e.Event)
	}
	return names
}

func (s *fakeSink) count(t *testing.T, event string) int {
	n := 0
	for _, name := range s.events(t) {
		if name == event {
			n++
		}
	}
	return n
}

// seedUser 创建一个测试用户
func seedUser(t *testing.T, repos *repository.Repositories, uuid, username string) {
	t.Helper()
	err := repos.User.Create(&model.User{
		Uuid:        uuid,
		Username:    username,
		Email:       username + "@test.local",
		RawPassword: "password123",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", uuid, err)
	}
}

// seedRoom 创建房间和管理员成员
func seedRoom(t *testing.T, repos *repository.Repositories, roomUuid, adminUuid string) {
	t.Helper()
	if err := repos.Room.Create(&model.Room{Uuid: roomUuid, Name: "room " + roomUuid, CreatorUuid: adminUuid}); err != nil {
		t.Fatalf("seed room: %v", err)
	}
	seedMember(t, repos, roomUuid, adminUuid, model.RoleAdmin)
}

func seedMember(t *testing.T, repos *repository.Repositories, roomUuid, userUuid string, role int8) {
	t.Helper()
	err := repos.RoomMember.Create(&model.RoomMember{
		RoomUuid: roomUuid,
		UserUuid: userUuid,
		Role:     role,
		JoinedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
}

// newTestHub 组装 Hub 和两个已入房的连接
func newTestHub(t *testing.T) (*Hub, *repository.Repositories) {
	t.Helper()
	repos := newTestRepos(t)
	return NewHub(repos, nil, nil), repos
}

func TestSendMessagePersistsAndBroadcasts(t *testing.T) {
	hub, repos := newTestHub(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")
	seedRoom(t, repos, "R1", "U1")
	seedMember(t, repos, "R1", "U2", model.RoleMember)

	aliceSink, bobSink := &fakeSink{}, &fakeSink{}
	if err := hub.Connect(1, "U1", aliceSink); err != nil {
		t.Fatalf("connect alice: %v", err)
	}
	if err := hub.Connect(2, "U2", bobSink); err != nil {
		t.Fatalf("connect bob: %v", err)
	}
	if err := hub.JoinRoom(1, "U1", "R1"); err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if err := hub.JoinRoom(2, "U2", "R1"); err != nil {
		t.Fatalf("join bob: %v", err)
	}

	resp, err := hub.SendMessage("U1", request.SendMessageRequest{RoomId: "R1", Content: "hello"})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if resp.MessageId == 0 {
		t.Error("message id not assigned")
	}
	if resp.SenderName != "alice" {
		t.Errorf("sender name = %q, want alice", resp.SenderName)
	}

	// 先落库：消息必须能查回来
	saved, err := repos.Message.FindByUuid(resp.MessageId)
	if err != nil {
		t.Fatalf("message not persisted: %v", err)
	}
	if saved.Content != "hello" {
		t.Errorf("content = %q, want hello", saved.Content)
	}

	// 消息事件发送者自己也要收到
	if got := aliceSink.count(t, EventReceiveMessage); got != 1 {
		t.Errorf("alice ReceiveMessage = %d, want 1", got)
	}
	if got := bobSink.count(t, EventReceiveMessage); got != 1 {
		t.Errorf("bob ReceiveMessage = %d, want 1", got)
	}
}

func TestSendMessageNonMemberRejected(t *testing.T) {
	hub, repos := newTestHub(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")
	seedRoom(t, repos, "R1", "U1")

	_, err := hub.SendMessage("U2", request.SendMessageRequest{RoomId: "R1", Content: "intrusion"})
	if errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("err = %v, want CodeForbidden", err)
	}

	// 被拒的消息不能落库
	total, err := repos.Message.CountByRoom("R1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 0 {
		t.Errorf("room has %d messages, want 0", total)
	}
}

func TestSendMessageMissingRoomForbidden(t *testing.T) {
	// 成员检查先于房间存在性检查：房间不存在同样得到 Forbidden
	hub, repos := newTestHub(t)
	seedUser(t, repos, "U1", "alice")

	_, err := hub.SendMessage("U1", request.SendMessageRequest{RoomId: "Rmissing", Content: "hi"})
	if errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("err = %v, want CodeForbidden", err)
	}
}

func TestEditMessageAuthorOnly(t *testing.T) {
	hub, repos := newTestHub(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")
	seedRoom(t, repos, "R1", "U1")
	seedMember(t, repos, "R1", "U2", model.RoleMember)

	resp, err := hub.SendMessage("U1", request.SendMessageRequest{RoomId: "R1", Content: "original"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	// 非作者编辑 -> Forbidden
	if _, err := hub.EditMessage("U2", resp.MessageId, "hacked"); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("non-author edit err = %v, want CodeForbidden", err)
	}

	// 作者编辑成功并写入编辑时间
	edited, err := hub.EditMessage("U1", resp.MessageId, "fixed")
	if err != nil {
		t.Fatalf("author edit: %v", err)
	}
	if edited.Content != "fixed" {
		t.Errorf("content = %q, want fixed", edited.Content)
	}
	if edited.EditedAt == nil {
		t.Error("EditedAt not set after edit")
	}

	// 不存在的消息 -> NotFound
	if _, err := hub.EditMessage("U1", 999999, "x"); errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("missing message err = %v, want CodeNotFound", err)
	}
}

func TestDeleteMessageAuthorOnlyWithCascade(t *testing.T) {
	hub, repos := newTestHub(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")
	seedRoom(t, repos, "R1", "U1")
	seedMember(t, repos, "R1", "U2", model.RoleMember)

	resp, err := hub.SendMessage("U1", request.SendMessageRequest{RoomId: "R1", Content: "to delete"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := hub.AddReaction("U2", resp.MessageId, "👍"); err != nil {
		t.Fatalf("add reaction: %v", err)
	}

	if err := hub.DeleteMessage("U2", resp.MessageId); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("non-author delete err = %v, want CodeForbidden", err)
	}
	if err := hub.DeleteMessage("U1", resp.MessageId); err != nil {
		t.Fatalf("author delete: %v", err)
	}

	if _, err := repos.Message.FindByUuid(resp.MessageId); !errorx.IsNotFound(err) {
		t.Errorf("message still present after delete, err = %v", err)
	}
	reactions, err := repos.Reaction.FindByMessageUuids([]int64{resp.MessageId})
	if err != nil {
		t.Fatalf("find reactions: %v", err)
	}
	if len(reactions) != 0 {
		t.Errorf("reactions not cascaded, got %d", len(reactions))
	}
}

func TestTypingExcludesSender(t *testing.T) {
	hub, repos := newTestHub(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")
	seedRoom(t, repos, "R1", "U1")
	seedMember(t, repos, "R1", "U2", model.RoleMember)

	aliceSink, bobSink := &fakeSink{}, &fakeSink{}
	_ = hub.Connect(1, "U1", aliceSink)
	_ = hub.Connect(2, "U2", bobSink)
	_ = hub.JoinRoom(1, "U1", "R1")
	_ = hub.JoinRoom(2, "U2", "R1")

	if err := hub.StartTyping(1, "U1", "R1"); err != nil {
		t.Fatalf("start typing: %v", err)
	}
	if err := hub.StopTyping(1, "U1", "R1"); err != nil {
		t.Fatalf("stop typing: %v", err)
	}

	if got := aliceSink.count(t, EventUserTypingStart); got != 0 {
		t.Errorf("sender received own typing event %d times", got)
	}
	if got := bobSink.count(t, EventUserTypingStart); got != 1 {
		t.Errorf("bob UserStartedTyping = %d, want 1", got)
	}
	if got := bobSink.count(t, EventUserTypingStop); got != 1 {
		t.Errorf("bob UserStoppedTyping = %d, want 1", got)
	}
}

func TestTypingRequiresSubscription(t *testing.T) {
	hub, repos := newTestHub(t)
	seedUser(t, repos, "U1", "alice")
	seedRoom(t, repos, "R1", "U1")

	sink := &fakeSink{}
	_ = hub.Connect(1, "U1", sink)

	// 未订阅房间的连接不能广播输入状态
	if err := hub.StartTyping(1, "U1", "R1"); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("typing without subscription err = %v, want CodeForbidden", err)
	}

	_ = hub.JoinRoom(1, "U1", "R1")
	if err := hub.StartTyping(1, "U1", "R1"); err != nil {
		t.Fatalf("typing after join: %v", err)
	}
}

func TestJoinRoomEventExcludesJoiner(t *testing.T) {
	hub, repos := newTestHub(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")
	seedRoom(t, repos, "R1", "U1")
	seedMember(t, repos, "R1", "U2", model.RoleMember)

	aliceSink, bobSink := &fakeSink{}, &fakeSink{}
	_ = hub.Connect(1, "U1", aliceSink)
	_ = hub.Connect(2, "U2", bobSink)
	_ = hub.JoinRoom(1, "U1", "R1")
	if err := hub.JoinRoom(2, "U2", "R1"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if got := aliceSink.count(t, EventUserJoinedRoom); got != 1 {
		t.Errorf("alice UserJoinedRoom = %d, want 1", got)
	}
	if got := bobSink.count(t, EventUserJoinedRoom); got != 0 {
		t.Errorf("joiner received own join event %d times", got)
	}

	// 退出同理，离开者自己不收
	if err := hub.LeaveRoom(2, "U2", "R1"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if got := aliceSink.count(t, EventUserLeftRoom); got != 1 {
		t.Errorf("alice UserLeftRoom = %d, want 1", got)
	}
	if got := bobSink.count(t, EventUserLeftRoom); got != 0 {
		t.Errorf("leaver received own leave event %d times", got)
	}
}

func TestJoinRoomNonMemberForbidden(t *testing.T) {
	hub, repos := newTestHub(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")
	seedRoom(t, repos, "R1", "U1")

	sink := &fakeSink{}
	_ = hub.Connect(2, "U2", sink)
	if err := hub.JoinRoom(2, "U2", "R1"); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("err = %v, want CodeForbidden", err)
	}
}

func TestPresenceFlipsOnFirstAndLastConn(t *testing.T) {
	hub, repos := newTestHub(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")

	observer := &fakeSink{}
	_ = hub.Connect(1, "U2", observer)
	// 广播不排除发起者，observer 会收到 U2 自己的上线事件
	base := observer.count(t, EventUserStatus)

	// 同一用户两条连接，只有第一条触发状态广播
	_ = hub.Connect(2, "U1", &fakeSink{})
	_ = hub.Connect(3, "U1", &fakeSink{})
	if got := observer.count(t, EventUserStatus); got != base+1 {
		t.Fatalf("UserStatusChanged after connects = %d, want %d", got, base+1)
	}
	// 上线事件同样携带 lastSeenAt
	var online struct {
		Data UserStatusEvent `json:"data"`
	}
	if err := json.Unmarshal(observer.frames[len(observer.frames)-1], &online); err != nil {
		t.Fatalf("unmarshal status frame: %v", err)
	}
	if online.Data.UserId != "U1" || !online.Data.IsOnline || online.Data.LastSeenAt == nil {
		t.Errorf("online event = %+v, want U1 online with lastSeenAt set", online.Data)
	}
	user, err := repos.User.FindByUuid("U1")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if !user.IsOnline {
		t.Error("user not marked online")
	}

	// 第一条断开不触发，最后一条断开翻转离线
	hub.Disconnect(2)
	if got := observer.count(t, EventUserStatus); got != base+1 {
		t.Fatalf("UserStatusChanged after first disconnect = %d, want %d", got, base+1)
	}
	hub.Disconnect(3)
	if got := observer.count(t, EventUserStatus); got != base+2 {
		t.Fatalf("UserStatusChanged after last disconnect = %d, want %d", got, base+2)
	}
	user, err = repos.User.FindByUuid("U1")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if user.IsOnline {
		t.Error("user still marked online")
	}
	if !user.LastSeenAt.Valid {
		t.Error("LastSeenAt not set on disconnect")
	}
}

func TestReactionUniquePerUserEmoji(t *testing.T) {
	hub, repos := newTestHub(t)
	seedUser(t, repos, "U1", "alice")
	seedRoom(t, repos, "R1", "U1")

	resp, err := hub.SendMessage("U1", request.SendMessageRequest{RoomId: "R1", Content: "msg"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := hub.AddReaction("U1", resp.MessageId, "🎉"); err != nil {
		t.Fatalf("first reaction: %v", err)
	}
	if err := hub.AddReaction("U1", resp.MessageId, "🎉"); errorx.GetCode(err) != errorx.CodeBadRequest {
		t.Fatalf("duplicate reaction err = %v, want CodeBadRequest", err)
	}
	// 不同表情可以再回应
	if err := hub.AddReaction("U1", resp.MessageId, "👍"); err != nil {
		t.Fatalf("second emoji: %v", err)
	}

	if err := hub.RemoveReaction("U1", resp.MessageId, "🎉"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := hub.RemoveReaction("U1", resp.MessageId, "🎉"); !errorx.IsNotFound(err) {
		t.Fatalf("remove missing err = %v, want CodeNotFound", err)
	}

	// 撤销后再次回应同一表情要能成功，不能撞唯一索引
	if err := hub.AddReaction("U1", resp.MessageId, "🎉"); err != nil {
		t.Fatalf("re-add after removal: %v", err)
	}
	reaction, err := repos.Reaction.Find(resp.MessageId, "U1", "🎉")
	if err != nil {
		t.Fatalf("find re-added reaction: %v", err)
	}
	if reaction == nil {
		t.Fatal("re-added reaction missing")
	}
}

func TestMemberRemovedKicksSubscriptions(t *testing.T) {
	hub, repos := newTestHub(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")
	seedRoom(t, repos, "R1", "U1")
	seedMember(t, repos, "R1", "U2", model.RoleMember)

	aliceSink, bobSink := &fakeSink{}, &fakeSink{}
	_ = hub.Connect(1, "U1", aliceSink)
	_ = hub.Connect(2, "U2", bobSink)
	_ = hub.JoinRoom(1, "U1", "R1")
	_ = hub.JoinRoom(2, "U2", "R1")

	hub.MemberRemoved("R1", "U2")

	if hub.Registry().InRoom(2, "R1") {
		t.Error("removed member still subscribed")
	}
	// 离开事件发给全房间（含被移除者，通知其前端刷新）
	if got := aliceSink.count(t, EventUserLeftRoom); got != 1 {
		t.Errorf("alice UserLeftRoom = %d, want 1", got)
	}

	// 被移除后房间内的新消息不再送达
	_, err := hub.SendMessage("U1", request.SendMessageRequest{RoomId: "R1", Content: "after kick"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := bobSink.count(t, EventReceiveMessage); got != 0 {
		t.Errorf("kicked member received %d messages", got)
	}
}

func TestRoomDeletedDropsAllSubscriptions(t *testing.T) {
	hub, repos := newTestHub(t)
	seedUser(t, repos, "U1", "alice")
	seedRoom(t, repos, "R1", "U1")

	sink := &fakeSink{}
	_ = hub.Connect(1, "U1", sink)
	_ = hub.JoinRoom(1, "U1", "R1")

	hub.RoomDeleted("R1")

	if got := sink.count(t, EventRoomDeleted); got != 1 {
		t.Errorf("RoomDeleted = %d, want 1", got)
	}
	if hub.Registry().InRoom(1, "R1") {
		t.Error("subscription survived room deletion")
	}
}
