package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

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
	"github.com/Xushengqwer/auth_hub/service/ratelimit"
	"github.com/Xushengqwer/auth_hub/service/token"
)

func newTestLogger(t *testing.T) *core.ZapLogger {
	t.Helper()
	logger, err := core.NewZapLogger(commonConfig.ZapConfig{Level: "error"})
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return logger
}

// newTestAccountService 用 sqlite 和 miniredis 搭起完整的账号登录链路。
func newTestAccountService(t *testing.T) (AccountService, token.AuthTokenService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "account_test.db")), &gorm.Config{})
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
	credentialRepo := mysql.NewCredentialRepository(db)
	refreshTokenRepo := mysql.NewRefreshTokenRepository(db)
	codeRepo := redisRepo.NewCodeRepo(client)

	identityService := identity.NewUserIdentityService(credentialRepo, userRepo, codeRepo, db, logger)
	jwtUtil := dependencies.NewJWTUtility(&config.JWTConfig{SecretKey: "test-secret", Issuer: "auth-hub-test"})
	tokenService := token.NewAuthTokenService(db, refreshTokenRepo, userRepo, jwtUtil, &config.AuthPolicyConfig{RevokeAllOnReplay: true}, logger)
	rateLimitService := ratelimit.NewRateLimitService(redisRepo.NewRateLimitRepo(client), &config.RateLimitConfig{
		LoginWindow:         15 * time.Minute,
		LoginMaxAttempts:    3,
		SendCodeWindow:      time.Minute,
		SendCodeMaxAttempts: 1,
	}, logger)

	return NewAccountService(identityService, userRepo, tokenService, rateLimitService, logger), tokenService, db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokenService, _ := newTestAccountService(t)
	ctx := context.Background()

	userInfo, err := svc.Register(ctx, dto.AccountRegisterData{
		Account:         "alice2024",
		Password:        "S3cret!pass",
		ConfirmPassword: "S3cret!pass",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if userInfo.UserID == "" {
		t.Fatalf("expected user ID after register")
	}

	loggedIn, pair, err := svc.Login(ctx, dto.AccountLoginData{
		Account:  "alice2024",
		Password: "S3cret!pass",
		Device:   dto.DeviceInfo{DeviceID: "device-1", IPAddress: "203.0.113.10"},
	}, commonEnums.PlatformApp)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.UserID != userInfo.UserID {
		t.Fatalf("expected %s, got %s", userInfo.UserID, loggedIn.UserID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("empty token pair: %+v", pair)
	}

	// 登录签发的访问令牌可以通过校验
	claims, err := tokenService.VerifyAccessToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access token: %v", err)
	}
	if claims.Role != enums.RoleCustomer {
		t.Fatalf("account registration should create a customer, got %v", claims.Role)
	}
}

func TestLoginThenRefreshInvalidatesOldToken(t *testing.T) {
	svc, tokenService, _ := newTestAccountService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, dto.AccountRegisterData{
		Account:         "alice2024",
		Password:        "S3cret!pass",
		ConfirmPassword: "S3cret!pass",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, pair, err := svc.Login(ctx, dto.AccountLoginData{
		Account:  "alice2024",
		Password: "S3cret!pass",
		Device:   dto.DeviceInfo{DeviceID: "device-1"},
	}, commonEnums.PlatformApp)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// 注册、登录、刷新的完整链路，轮换后旧刷新令牌立即失效
	rotated, err := tokenService.RefreshToken(ctx, pair.RefreshToken, commonEnums.PlatformApp, dto.DeviceInfo{DeviceID: "device-1"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatalf("rotation must issue a new refresh token")
	}
	if _, err := tokenService.RefreshToken(ctx, pair.RefreshToken, commonEnums.PlatformApp, dto.DeviceInfo{DeviceID: "device-1"}); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for rotated-out token, got %v", err)
	}
}

func TestRegisterPasswordMismatch(t *testing.T) {
	svc, _, _ := newTestAccountService(t)

	_, err := svc.Register(context.Background(), dto.AccountRegisterData{
		Account:         "alice2024",
		Password:        "S3cret!pass",
		ConfirmPassword: "different",
	})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterDuplicateAccount(t *testing.T) {
	svc, _, _ := newTestAccountService(t)
	ctx := context.Background()

	data := dto.AccountRegisterData{Account: "alice2024", Password: "S3cret!pass", ConfirmPassword: "S3cret!pass"}
	if _, err := svc.Register(ctx, data); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, data); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginWrongPasswordAndUnknownAccount(t *testing.T) {
	svc, _, _ := newTestAccountService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, dto.AccountRegisterData{Account: "alice2024", Password: "S3cret!pass", ConfirmPassword: "S3cret!pass"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// 密码错误和账号不存在返回同一种错误，不暴露账号是否存在
	_, _, errWrongPass := svc.Login(ctx, dto.AccountLoginData{Account: "alice2024", Password: "wrong"}, commonEnums.PlatformApp)
	if !errors.Is(errWrongPass, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for wrong password, got %v", errWrongPass)
	}
	_, _, errUnknown := svc.Login(ctx, dto.AccountLoginData{Account: "nobody", Password: "whatever"}, commonEnums.PlatformApp)
	if !errors.Is(errUnknown, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unknown account, got %v", errUnknown)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	svc, _, db := newTestAccountService(t)
	ctx := context.Background()

	userInfo, err := svc.Register(ctx, dto.AccountRegisterData{Account: "alice2024", Password: "S3cret!pass", ConfirmPassword: "S3cret!pass"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := db.Model(&entities.User{}).Where("user_id = ?", userInfo.UserID).Update("status", enums.StatusInactive).Error; err != nil {
		t.Fatalf("deactivate user: %v", err)
	}

	_, _, err = svc.Login(ctx, dto.AccountLoginData{Account: "alice2024", Password: "S3cret!pass"}, commonEnums.PlatformApp)
	if !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("expected forbidden for inactive user, got %v", err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	svc, _, _ := newTestAccountService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, dto.AccountRegisterData{Account: "alice2024", Password: "S3cret!pass", ConfirmPassword: "S3cret!pass"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// 阈值为 3，连续失败耗尽配额
	for i := 0; i < 3; i++ {
		_, _, err := svc.Login(ctx, dto.AccountLoginData{Account: "alice2024", Password: "wrong"}, commonEnums.PlatformApp)
		if !errors.Is(err, errs.ErrUnauthorized) {
			t.Fatalf("attempt %d: expected unauthorized, got %v", i+1, err)
		}
	}
	_, _, err := svc.Login(ctx, dto.AccountLoginData{Account: "alice2024", Password: "S3cret!pass"}, commonEnums.PlatformApp)
	if !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("expected rate limited after exhausted attempts, got %v", err)
	}
}

func TestLoginSuccessClearsAttempts(t *testing.T) {
	svc, _, _ := newTestAccountService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, dto.AccountRegisterData{Account: "alice2024", Password: "S3cret!pass", ConfirmPassword: "S3cret!pass"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// 两次失败后成功登录，计数被清空
	for i := 0; i < 2; i++ {
		if _, _, err := svc.Login(ctx, dto.AccountLoginData{Account: "alice2024", Password: "wrong"}, commonEnums.PlatformApp); !errors.Is(err, errs.ErrUnauthorized) {
			t.Fatalf("attempt %d: expected unauthorized, got %v", i+1, err)
		}
	}
	if _, _, err := svc.Login(ctx, dto.AccountLoginData{Account: "alice2024", Password: "S3cret!pass"}, commonEnums.PlatformApp); err != nil {
		t.Fatalf("successful login within quota: %v", err)
	}

	// 清空后重新拥有完整配额
	for i := 0; i < 3; i++ {
		if _, _, err := svc.Login(ctx, dto.AccountLoginData{Account: "alice2024", Password: "wrong"}, commonEnums.PlatformApp); !errors.Is(err, errs.ErrUnauthorized) {
			t.Fatalf("attempt %d after clear: expected unauthorized, got %v", i+1, err)
		}
	}
}
