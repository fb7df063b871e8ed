package auth

import (
	"path/filepath"
	"testing"

	"relay_chat_server/internal/dao/mysql/repository"
	"relay_chat_server/internal/dto/request"
	"relay_chat_server/internal/model"
	"relay_chat_server/pkg/errorx"
	"relay_chat_server/pkg/util/jwt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	jwt.Init("test-secret-key-for-unit-tests", 15, 168)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewAuthService(repository.NewRepositories(db), nil)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	reg, err := svc.Register(request.RegisterRequest{
		Username: "alice",
		Email:    "alice@test.local",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.AccessToken == "" || reg.RefreshToken == "" {
		t.Error("register did not issue tokens")
	}
	if reg.User.UserId == "" || reg.User.UserId[0] != 'U' {
		t.Errorf("user id = %q, want U prefix", reg.User.UserId)
	}

	// Access Token 可被解析且指向该用户
	claims, err := jwt.ParseToken(reg.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != reg.User.UserId || claims.Subject != "access_token" {
		t.Errorf("claims = %+v", claims)
	}

	login, err := svc.Login(request.LoginRequest{Email: "alice@test.local", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.UserId != reg.User.UserId {
		t.Errorf("login user = %q, want %q", login.User.UserId, reg.User.UserId)
	}
}

func TestLoginWrongCredentialsSameError(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Register(request.RegisterRequest{
		Username: "alice",
		Email:    "alice@test.local",
		Password: "secret123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// 密码错误和邮箱不存在返回同一个错误，不泄露账号是否存在
	_, errWrongPass := svc.Login(request.LoginRequest{Email: "alice@test.local", Password: "wrong"})
	_, errNoUser := svc.Login(request.LoginRequest{Email: "ghost@test.local", Password: "secret123"})

	if errorx.GetCode(errWrongPass) != errorx.CodeUnauthorized {
		t.Errorf("wrong password err = %v, want CodeUnauthorized", errWrongPass)
	}
	if errorx.GetCode(errNoUser) != errorx.CodeUnauthorized {
		t.Errorf("missing user err = %v, want CodeUnauthorized", errNoUser)
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Errorf("error messages differ: %q vs %q", errWrongPass, errNoUser)
	}
}

func TestRegisterDuplicateRejected(t *testing.T) {
	svc := newTestService(t)
	base := request.RegisterRequest{Username: "alice", Email: "alice@test.local", Password: "secret123"}
	if _, err := svc.Register(base); err != nil {
		t.Fatalf("register: %v", err)
	}

	dupName := base
	dupName.Email = "other@test.local"
	if _, err := svc.Register(dupName); errorx.GetCode(err) != errorx.CodeBadRequest {
		t.Errorf("duplicate username err = %v, want CodeBadRequest", err)
	}

	dupEmail := base
	dupEmail.Username = "alice2"
	if _, err := svc.Register(dupEmail); errorx.GetCode(err) != errorx.CodeBadRequest {
		t.Errorf("duplicate email err = %v, want CodeBadRequest", err)
	}
}

func TestPasswordStoredHashed(t *testing.T) {
	svc := newTestService(t)
	reg, err := svc.Register(request.RegisterRequest{
		Username: "alice",
		Email:    "alice@test.local",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := svc.repos.User.FindByUuid(reg.User.UserId)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if user.Password == "secret123" || user.Password == "" {
		t.Error("password stored in plaintext or empty")
	}
	if user.RawPassword != "" {
		t.Error("raw password not cleared after save")
	}
	if !user.CheckPassword("secret123") {
		t.Error("stored hash does not verify original password")
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newTestService(t)
	reg, err := svc.Register(request.RegisterRequest{
		Username: "alice",
		Email:    "alice@test.local",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Access Token 不能用来刷新
	if _, err := svc.Refresh(request.RefreshTokenRequest{RefreshToken: reg.AccessToken}); errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Errorf("refresh with access token err = %v, want CodeUnauthorized", err)
	}
	// 伪造字符串同样被拒
	if _, err := svc.Refresh(request.RefreshTokenRequest{RefreshToken: "not-a-token"}); errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Errorf("refresh with garbage err = %v, want CodeUnauthorized", err)
	}

	// 真正的 Refresh Token 可以刷新（无缓存时跳过会话校验）
	resp, err := svc.Refresh(request.RefreshTokenRequest{RefreshToken: reg.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("refresh did not issue a new access token")
	}
}
