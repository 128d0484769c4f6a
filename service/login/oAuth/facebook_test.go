package oAuth

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	commonConfig "github.com/Xushengqwer/go-common/config"
	"github.com/Xushengqwer/go-common/core"
	commonEnums "github.com/Xushengqwer/go-common/models/enums"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Xushengqwer/auth_hub/config"
	"github.com/Xushengqwer/auth_hub/dependencies"
	"github.com/Xushengqwer/auth_hub/errs"
	"github.com/Xushengqwer/auth_hub/models/dto"
	"github.com/Xushengqwer/auth_hub/models/entities"
	"github.com/Xushengqwer/auth_hub/models/enums"
	"github.com/Xushengqwer/auth_hub/repository/mysql"
	redisRepo "github.com/Xushengqwer/auth_hub/repository/redis"
	"github.com/Xushengqwer/auth_hub/service/identity"
	"github.com/Xushengqwer/auth_hub/service/token"
)

// fakeFacebookClient 以令牌为键返回预设的 Facebook 用户，未知令牌视为无效。
type fakeFacebookClient struct {
	users map[string]string // accessToken -> facebookID
}

func (f *fakeFacebookClient) ValidateAccessToken(_ context.Context, accessToken string) (string, string, error) {
	facebookID, ok := f.users[accessToken]
	if !ok {
		return "", "", fmt.Errorf("graph api: invalid token")
	}
	return facebookID, "Test User", nil
}

func newTestLogger(t *testing.T) *core.ZapLogger {
	t.Helper()
	logger, err := core.NewZapLogger(commonConfig.ZapConfig{Level: "error"})
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return logger
}

func newTestFacebookAuthService(t *testing.T, fb *fakeFacebookClient) (FacebookAuthService, identity.UserIdentityService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "facebook_test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entities.User{}, &entities.UserCredential{}, &entities.RefreshToken{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := newTestLogger(t)
	userRepo := mysql.NewUserRepository(db)
	identityService := identity.NewUserIdentityService(
		mysql.NewCredentialRepository(db),
		userRepo,
		redisRepo.NewCodeRepo(client),
		db,
		logger,
	)
	jwtUtil := dependencies.NewJWTUtility(&config.JWTConfig{SecretKey: "test-secret", Issuer: "auth-hub-test"})
	tokenService := token.NewAuthTokenService(db, mysql.NewRefreshTokenRepository(db), userRepo, jwtUtil, &config.AuthPolicyConfig{}, logger)

	return NewFacebookAuthService(fb, identityService, userRepo, tokenService, logger), identityService, db
}

func TestFacebookLoginOrRegister(t *testing.T) {
	fb := &fakeFacebookClient{users: map[string]string{"fb-token-1": "fb-uid-100"}}
	svc, _, db := newTestFacebookAuthService(t, fb)
	ctx := context.Background()

	// 首次登录自动注册普通客户角色的新用户
	userInfo, pair, err := svc.LoginOrRegister(ctx, dto.FacebookLoginData{
		AccessToken: "fb-token-1",
		Device:      dto.DeviceInfo{DeviceID: "device-1"},
	}, commonEnums.PlatformApp)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("empty token pair: %+v", pair)
	}

	var user entities.User
	if err := db.Where("user_id = ?", userInfo.UserID).First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.UserRole != enums.RoleCustomer {
		t.Fatalf("facebook registration should create a customer, got %v", user.UserRole)
	}

	// 再次登录解析到同一个用户
	again, _, err := svc.LoginOrRegister(ctx, dto.FacebookLoginData{
		AccessToken: "fb-token-1",
		Device:      dto.DeviceInfo{DeviceID: "device-1"},
	}, commonEnums.PlatformApp)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if again.UserID != userInfo.UserID {
		t.Fatalf("expected same user, got %s and %s", userInfo.UserID, again.UserID)
	}
}

func TestFacebookLoginInvalidToken(t *testing.T) {
	fb := &fakeFacebookClient{users: map[string]string{}}
	svc, _, _ := newTestFacebookAuthService(t, fb)

	if _, _, err := svc.LoginOrRegister(context.Background(), dto.FacebookLoginData{
		AccessToken: "bad-token",
	}, commonEnums.PlatformApp); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for invalid token, got %v", err)
	}
}

func TestFacebookBind(t *testing.T) {
	fb := &fakeFacebookClient{users: map[string]string{"fb-token-1": "fb-uid-100"}}
	svc, identityService, _ := newTestFacebookAuthService(t, fb)
	ctx := context.Background()

	alice, err := identityService.CreateUserWithCredential(ctx, enums.RoleCustomer, enums.AccountPassword, "alice", "hash")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := identityService.CreateUserWithCredential(ctx, enums.RoleCustomer, enums.AccountPassword, "bob", "hash")
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	credentialVO, err := svc.Bind(ctx, alice.UserID, dto.FacebookBindData{AccessToken: "fb-token-1"})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if credentialVO.CredentialType != enums.Facebook || credentialVO.Identifier != "fb-uid-100" {
		t.Fatalf("unexpected credential: %+v", credentialVO)
	}

	// 同一 Facebook 身份不能绑到第二个账号
	if _, err := svc.Bind(ctx, bob.UserID, dto.FacebookBindData{AccessToken: "fb-token-1"}); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// 无效令牌拒绝绑定
	if _, err := svc.Bind(ctx, alice.UserID, dto.FacebookBindData{AccessToken: "bad-token"}); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
