package room

import (
	"path/filepath"
	"testing"
	"time"

	"relay_chat_server/internal/dao/mysql/repository"
	"relay_chat_server/internal/dto/request"
	"relay_chat_server/internal/model"
	"relay_chat_server/pkg/errorx"
	"relay_chat_server/pkg/util/snowflake"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *repository.Repositories) {
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
	repos := repository.NewRepositories(db)
	return NewRoomService(repos, nil), repos
}

func seedUser(t *testing.T, repos *repository.Repositories, uuid, username string) {
	t.Helper()
	err := repos.User.Create(&model.User{
		Uuid:        uuid,
		Username:    username,
		Email:       username + "@test.local",
		RawPassword: "password123",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestCreateRoomCreatorBecomesAdmin(t *testing.T) {
	svc, repos := newTestService(t)
	seedUser(t, repos, "U1", "alice")

	resp, err := svc.CreateRoom("U1", request.CreateRoomRequest{Name: "general"})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if resp.RoomId == "" || resp.RoomId[0] != 'R' {
		t.Errorf("room id = %q, want R prefix", resp.RoomId)
	}
	if resp.MemberCount != 1 {
		t.Errorf("member count = %d, want 1", resp.MemberCount)
	}

	isAdmin, err := repos.RoomMember.IsAdmin(resp.RoomId, "U1")
	if err != nil {
		t.Fatalf("is admin: %v", err)
	}
	if !isAdmin {
		t.Error("creator is not admin")
	}
}

func TestGetRoomInfoMembershipBeforeExistence(t *testing.T) {
	svc, repos := newTestService(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")

	resp, err := svc.CreateRoom("U1", request.CreateRoomRequest{Name: "private", IsPrivate: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 非成员访问存在的房间和根本不存在的房间得到同一个错误码
	if _, err := svc.GetRoomInfo("U2", resp.RoomId); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Errorf("existing room err = %v, want CodeForbidden", err)
	}
	if _, err := svc.GetRoomInfo("U2", "Rmissing"); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Errorf("missing room err = %v, want CodeForbidden", err)
	}
}

func TestAddMemberDuplicateRejected(t *testing.T) {
	svc, repos := newTestService(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")

	resp, err := svc.CreateRoom("U1", request.CreateRoomRequest{Name: "general"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	req := request.RoomMemberRequest{RoomId: resp.RoomId, UserId: "U2"}

	if err := svc.AddMember("U1", req); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := svc.AddMember("U1", req); errorx.GetCode(err) != errorx.CodeBadRequest {
		t.Fatalf("duplicate add err = %v, want CodeBadRequest", err)
	}

	// 普通成员无权添加
	seedUser(t, repos, "U3", "carol")
	if err := svc.AddMember("U2", request.RoomMemberRequest{RoomId: resp.RoomId, UserId: "U3"}); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("member add err = %v, want CodeForbidden", err)
	}

	// 目标用户不存在
	if err := svc.AddMember("U1", request.RoomMemberRequest{RoomId: resp.RoomId, UserId: "Ughost"}); !errorx.IsNotFound(err) {
		t.Fatalf("ghost user err = %v, want CodeNotFound", err)
	}
}

func TestLastAdminCannotLeave(t *testing.T) {
	svc, repos := newTestService(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")

	resp, err := svc.CreateRoom("U1", request.CreateRoomRequest{Name: "general"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.AddMember("U1", request.RoomMemberRequest{RoomId: resp.RoomId, UserId: "U2"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// 唯一管理员退出 -> BadRequest
	if err := svc.LeaveRoom("U1", resp.RoomId); errorx.GetCode(err) != errorx.CodeBadRequest {
		t.Fatalf("last admin leave err = %v, want CodeBadRequest", err)
	}
	// 唯一管理员也不能被移除（即使操作者是自己）
	if err := svc.RemoveMember("U1", request.RoomMemberRequest{RoomId: resp.RoomId, UserId: "U1"}); errorx.GetCode(err) != errorx.CodeBadRequest {
		t.Fatalf("last admin remove err = %v, want CodeBadRequest", err)
	}

	// 第二个管理员出现后可以退出
	if err := repos.RoomMember.Delete(resp.RoomId, "U2"); err != nil {
		t.Fatalf("cleanup member: %v", err)
	}
	if err := repos.RoomMember.Create(&model.RoomMember{
		RoomUuid: resp.RoomId,
		UserUuid: "U2",
		Role:     model.RoleAdmin,
		JoinedAt: time.Now(),
	}); err != nil {
		t.Fatalf("seed second admin: %v", err)
	}
	if err := svc.LeaveRoom("U1", resp.RoomId); err != nil {
		t.Fatalf("leave with second admin present: %v", err)
	}
}

func TestRemoveRegularMember(t *testing.T) {
	svc, repos := newTestService(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")

	resp, err := svc.CreateRoom("U1", request.CreateRoomRequest{Name: "general"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	req := request.RoomMemberRequest{RoomId: resp.RoomId, UserId: "U2"}
	if err := svc.AddMember("U1", req); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.RemoveMember("U1", req); err != nil {
		t.Fatalf("remove: %v", err)
	}
	isMember, err := repos.RoomMember.IsMember(resp.RoomId, "U2")
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if isMember {
		t.Error("member still present after removal")
	}

	// 再移除一次 -> NotFound
	if err := svc.RemoveMember("U1", req); !errorx.IsNotFound(err) {
		t.Fatalf("remove missing err = %v, want CodeNotFound", err)
	}
}

func TestMemberCanRemoveSelf(t *testing.T) {
	svc, repos := newTestService(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")
	seedUser(t, repos, "U3", "carol")

	resp, err := svc.CreateRoom("U1", request.CreateRoomRequest{Name: "general"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, uid := range []string{"U2", "U3"} {
		if err := svc.AddMember("U1", request.RoomMemberRequest{RoomId: resp.RoomId, UserId: uid}); err != nil {
			t.Fatalf("add %s: %v", uid, err)
		}
	}

	// 普通成员移除他人 -> Forbidden
	if err := svc.RemoveMember("U2", request.RoomMemberRequest{RoomId: resp.RoomId, UserId: "U3"}); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("member remove other err = %v, want CodeForbidden", err)
	}

	// 普通成员移除自己始终允许
	if err := svc.RemoveMember("U2", request.RoomMemberRequest{RoomId: resp.RoomId, UserId: "U2"}); err != nil {
		t.Fatalf("self removal: %v", err)
	}
	isMember, err := repos.RoomMember.IsMember(resp.RoomId, "U2")
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if isMember {
		t.Error("member still present after self removal")
	}
}

func TestRejoinAfterRemoval(t *testing.T) {
	svc, repos := newTestService(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")

	resp, err := svc.CreateRoom("U1", request.CreateRoomRequest{Name: "open"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.JoinRoom("U2", resp.RoomId); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := svc.RemoveMember("U1", request.RoomMemberRequest{RoomId: resp.RoomId, UserId: "U2"}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// 移除后重新加入不能因为残留记录撞唯一索引
	if err := svc.JoinRoom("U2", resp.RoomId); err != nil {
		t.Fatalf("rejoin after removal: %v", err)
	}

	// 管理员重新拉回也一样
	if err := svc.LeaveRoom("U2", resp.RoomId); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := svc.AddMember("U1", request.RoomMemberRequest{RoomId: resp.RoomId, UserId: "U2"}); err != nil {
		t.Fatalf("re-add after leave: %v", err)
	}
}

func TestAddMemberAsAdmin(t *testing.T) {
	svc, repos := newTestService(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")

	resp, err := svc.CreateRoom("U1", request.CreateRoomRequest{Name: "general"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.AddMember("U1", request.RoomMemberRequest{RoomId: resp.RoomId, UserId: "U2", AsAdmin: true}); err != nil {
		t.Fatalf("add admin: %v", err)
	}

	isAdmin, err := repos.RoomMember.IsAdmin(resp.RoomId, "U2")
	if err != nil {
		t.Fatalf("is admin: %v", err)
	}
	if !isAdmin {
		t.Fatal("asAdmin member was not created with admin role")
	}

	// 有了第二个管理员，创建者就能退出了
	if err := svc.LeaveRoom("U1", resp.RoomId); err != nil {
		t.Fatalf("leave with second admin: %v", err)
	}
}

func TestJoinRoomPublicOnly(t *testing.T) {
	svc, repos := newTestService(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")

	public, err := svc.CreateRoom("U1", request.CreateRoomRequest{Name: "open"})
	if err != nil {
		t.Fatalf("create public: %v", err)
	}
	private, err := svc.CreateRoom("U1", request.CreateRoomRequest{Name: "secret", IsPrivate: true})
	if err != nil {
		t.Fatalf("create private: %v", err)
	}

	if err := svc.JoinRoom("U2", public.RoomId); err != nil {
		t.Fatalf("join public: %v", err)
	}
	if err := svc.JoinRoom("U2", public.RoomId); errorx.GetCode(err) != errorx.CodeBadRequest {
		t.Fatalf("rejoin err = %v, want CodeBadRequest", err)
	}
	if err := svc.JoinRoom("U2", private.RoomId); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("join private err = %v, want CodeForbidden", err)
	}
	if err := svc.JoinRoom("U2", "Rmissing"); !errorx.IsNotFound(err) {
		t.Fatalf("join missing err = %v, want CodeNotFound", err)
	}
}

func TestDeleteRoomCascades(t *testing.T) {
	svc, repos := newTestService(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")

	resp, err := svc.CreateRoom("U1", request.CreateRoomRequest{Name: "doomed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.AddMember("U1", request.RoomMemberRequest{RoomId: resp.RoomId, UserId: "U2"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	messageId := snowflake.GenerateID()
	if err := repos.Message.Create(&model.Message{
		Uuid:       messageId,
		RoomUuid:   resp.RoomId,
		SenderUuid: "U1",
		Content:    "bye",
	}); err != nil {
		t.Fatalf("seed message: %v", err)
	}
	if err := repos.Reaction.Create(&model.MessageReaction{
		MessageUuid: messageId,
		UserUuid:    "U2",
		Emoji:       "👍",
	}); err != nil {
		t.Fatalf("seed reaction: %v", err)
	}

	// 普通成员无权解散
	if err := svc.DeleteRoom("U2", resp.RoomId); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("member delete err = %v, want CodeForbidden", err)
	}
	if err := svc.DeleteRoom("U1", resp.RoomId); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := repos.Room.FindByUuid(resp.RoomId); !errorx.IsNotFound(err) {
		t.Errorf("room survives deletion, err = %v", err)
	}
	count, err := repos.RoomMember.CountMembers(resp.RoomId)
	if err != nil {
		t.Fatalf("count members: %v", err)
	}
	if count != 0 {
		t.Errorf("members not cascaded, got %d", count)
	}
	total, err := repos.Message.CountByRoom(resp.RoomId)
	if err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if total != 0 {
		t.Errorf("messages not cascaded, got %d", total)
	}
	reactions, err := repos.Reaction.FindByMessageUuids([]int64{messageId})
	if err != nil {
		t.Fatalf("find reactions: %v", err)
	}
	if len(reactions) != 0 {
		t.Errorf("reactions not cascaded, got %d", len(reactions))
	}
}

func TestGetRoomMembersMemberOnly(t *testing.T) {
	svc, repos := newTestService(t)
	seedUser(t, repos, "U1", "alice")
	seedUser(t, repos, "U2", "bob")

	resp, err := svc.CreateRoom("U1", request.CreateRoomRequest{Name: "general"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.GetRoomMembers("U2", resp.RoomId); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("non-member err = %v, want CodeForbidden", err)
	}

	members, err := svc.GetRoomMembers("U1", resp.RoomId)
	if err != nil {
		t.Fatalf("get members: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("members = %d, want 1", len(members))
	}
	if members[0].UserId != "U1" || members[0].Role != model.RoleAdmin {
		t.Errorf("member = %+v, want U1 admin", members[0])
	}
	if members[0].Username != "alice" {
		t.Errorf("username = %q, want alice", members[0].Username)
	}
}
