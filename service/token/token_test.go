package token

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	commonConfig "github.com/Xushengqwer/go-common/config"
	"github.com/Xushengqwer/go-common/core"
	commonEnums "github.com/Xushengqwer/go-common/models/enums"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Xushengqwer/auth_hub/config"
	"github.com/Xushengqwer/auth_hub/dependencies"
	"github.com/Xushengqwer/auth_hub/errs"
	"github.com/Xushengqwer/auth_hub/models/dto"
	"github.com/Xushengqwer/auth_hub/models/entities"
	"github.com/Xushengqwer/auth_hub/models/enums"
	"github.com/Xushengqwer/auth_hub/repository/mysql"
)

func newTestLogger(t *testing.T) *core.ZapLogger {
	t.Helper()
	logger, err := core.NewZapLogger(commonConfig.ZapConfig{Level: "error"})
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return logger
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "token_test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entities.User{}, &entities.RefreshToken{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestTokenService(t *testing.T, policy *config.AuthPolicyConfig) (AuthTokenService, *gorm.DB, mysql.RefreshTokenRepository) {
	t.Helper()
	db := newTestDB(t)
	refreshTokenRepo := mysql.NewRefreshTokenRepository(db)
	userRepo := mysql.NewUserRepository(db)
	jwtUtil := dependencies.NewJWTUtility(&config.JWTConfig{SecretKey: "test-secret", Issuer: "auth-hub-test"})
	svc := NewAuthTokenService(db, refreshTokenRepo, userRepo, jwtUtil, policy, newTestLogger(t))
	return svc, db, refreshTokenRepo
}

func createTestUser(t *testing.T, db *gorm.DB, status enums.UserStatus) *entities.User {
	t.Helper()
	user := &entities.User{
		UserID:   "11111111-1111-1111-1111-111111111111",
		UserRole: enums.RoleCustomer,
		Status:   status,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func testDevice() dto.DeviceInfo {
	return dto.DeviceInfo{
		DeviceID:   "device-1",
		DeviceName: "iPhone 15",
		UserAgent:  "test-agent",
		IPAddress:  "203.0.113.10",
	}
}

func TestGenerateTokenPairAndVerify(t *testing.T) {
	svc, db, _ := newTestTokenService(t, &config.AuthPolicyConfig{RevokeAllOnReplay: true})
	user := createTestUser(t, db, enums.StatusActive)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, user, commonEnums.PlatformApp, testDevice())
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("empty token pair: %+v", pair)
	}

	claims, err := svc.VerifyAccessToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access token: %v", err)
	}
	if claims.UserID != user.UserID {
		t.Fatalf("expected %s, got %s", user.UserID, claims.UserID)
	}

	// 刷新令牌已持久化且未吊销
	var record entities.RefreshToken
	if err := db.Where("token = ?", pair.RefreshToken).First(&record).Error; err != nil {
		t.Fatalf("load refresh token record: %v", err)
	}
	if record.Revoked || record.UserID != user.UserID {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestVerifyAccessTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestTokenService(t, &config.AuthPolicyConfig{})
	if _, err := svc.VerifyAccessToken(context.Background(), "garbage"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, db, _ := newTestTokenService(t, &config.AuthPolicyConfig{RevokeAllOnReplay: false})
	user := createTestUser(t, db, enums.StatusActive)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, user, commonEnums.PlatformApp, testDevice())
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}

	rotated, err := svc.RefreshToken(ctx, pair.RefreshToken, commonEnums.PlatformApp, testDevice())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatalf("rotation must issue a new refresh token")
	}

	// 旧令牌单次有效，轮换后立即失效
	if _, err := svc.RefreshToken(ctx, pair.RefreshToken, commonEnums.PlatformApp, testDevice()); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for rotated-out token, got %v", err)
	}

	// 新令牌可以继续轮换
	if _, err := svc.RefreshToken(ctx, rotated.RefreshToken, commonEnums.PlatformApp, testDevice()); err != nil {
		t.Fatalf("refresh with rotated token: %v", err)
	}
}

func TestRefreshTokenUnknownToken(t *testing.T) {
	svc, db, _ := newTestTokenService(t, &config.AuthPolicyConfig{})
	createTestUser(t, db, enums.StatusActive)

	if _, err := svc.RefreshToken(context.Background(), "no-such-token", commonEnums.PlatformApp, testDevice()); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestReplayRevokesAllSessions(t *testing.T) {
	svc, db, _ := newTestTokenService(t, &config.AuthPolicyConfig{RevokeAllOnReplay: true})
	user := createTestUser(t, db, enums.StatusActive)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, user, commonEnums.PlatformApp, testDevice())
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}
	rotated, err := svc.RefreshToken(ctx, pair.RefreshToken, commonEnums.PlatformApp, testDevice())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	// 重放已轮换的旧令牌，触发全量吊销
	if _, err := svc.RefreshToken(ctx, pair.RefreshToken, commonEnums.PlatformApp, testDevice()); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for replayed token, got %v", err)
	}

	// 重放检测后连同新令牌一起失效，所有会话都要重新登录
	if _, err := svc.RefreshToken(ctx, rotated.RefreshToken, commonEnums.PlatformApp, testDevice()); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected all sessions revoked after replay, got %v", err)
	}
}

func TestReplayWithoutRevokeAllPolicy(t *testing.T) {
	svc, db, _ := newTestTokenService(t, &config.AuthPolicyConfig{RevokeAllOnReplay: false})
	user := createTestUser(t, db, enums.StatusActive)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, user, commonEnums.PlatformApp, testDevice())
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}
	rotated, err := svc.RefreshToken(ctx, pair.RefreshToken, commonEnums.PlatformApp, testDevice())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if _, err := svc.RefreshToken(ctx, pair.RefreshToken, commonEnums.PlatformApp, testDevice()); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for replayed token, got %v", err)
	}

	// 策略关闭时，重放只拒绝当次请求，其他会话不受影响
	if _, err := svc.RefreshToken(ctx, rotated.RefreshToken, commonEnums.PlatformApp, testDevice()); err != nil {
		t.Fatalf("current session should survive replay with policy off: %v", err)
	}
}

func TestVerifyAccessTokenDeactivatedUser(t *testing.T) {
	svc, db, _ := newTestTokenService(t, &config.AuthPolicyConfig{})
	user := createTestUser(t, db, enums.StatusActive)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, user, commonEnums.PlatformApp, testDevice())
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}
	if _, err := svc.VerifyAccessToken(ctx, pair.AccessToken); err != nil {
		t.Fatalf("verify while active: %v", err)
	}

	// 签发后停用账号，访问令牌虽未过期也要立即被拒绝
	if err := db.Model(&entities.User{}).Where("user_id = ?", user.UserID).Update("status", enums.StatusInactive).Error; err != nil {
		t.Fatalf("deactivate user: %v", err)
	}
	if _, err := svc.VerifyAccessToken(ctx, pair.AccessToken); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("expected forbidden for deactivated user, got %v", err)
	}
}

func TestRefreshTokenInactiveUser(t *testing.T) {
	svc, db, _ := newTestTokenService(t, &config.AuthPolicyConfig{})
	user := createTestUser(t, db, enums.StatusActive)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, user, commonEnums.PlatformApp, testDevice())
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}

	// 停用用户后刷新被拒绝
	if err := db.Model(&entities.User{}).Where("user_id = ?", user.UserID).Update("status", enums.StatusInactive).Error; err != nil {
		t.Fatalf("deactivate user: %v", err)
	}
	if _, err := svc.RefreshToken(ctx, pair.RefreshToken, commonEnums.PlatformApp, testDevice()); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("expected forbidden for inactive user, got %v", err)
	}
}

func TestSingleDeviceSessionPolicy(t *testing.T) {
	svc, db, _ := newTestTokenService(t, &config.AuthPolicyConfig{SingleDeviceSession: true})
	user := createTestUser(t, db, enums.StatusActive)
	ctx := context.Background()

	first, err := svc.GenerateTokenPair(ctx, user, commonEnums.PlatformApp, testDevice())
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.GenerateTokenPair(ctx, user, commonEnums.PlatformWeb, testDevice())
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	// 新登录把旧会话挤下线
	if _, err := svc.RefreshToken(ctx, first.RefreshToken, commonEnums.PlatformApp, testDevice()); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected old session to be revoked, got %v", err)
	}
	if _, err := svc.RefreshToken(ctx, second.RefreshToken, commonEnums.PlatformWeb, testDevice()); err != nil {
		t.Fatalf("latest session should stay valid: %v", err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, db, _ := newTestTokenService(t, &config.AuthPolicyConfig{})
	user := createTestUser(t, db, enums.StatusActive)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, user, commonEnums.PlatformApp, testDevice())
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}

	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	// 令牌已吊销，再次登出和登出未知令牌都视为成功
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("second logout should be a no-op: %v", err)
	}
	if err := svc.Logout(ctx, "no-such-token"); err != nil {
		t.Fatalf("logout of unknown token should be a no-op: %v", err)
	}

	if _, err := svc.RefreshToken(ctx, pair.RefreshToken, commonEnums.PlatformApp, testDevice()); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}

func TestCleanupExpired(t *testing.T) {
	svc, db, _ := newTestTokenService(t, &config.AuthPolicyConfig{})
	user := createTestUser(t, db, enums.StatusActive)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, user, commonEnums.PlatformApp, testDevice())
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}

	// 插入一条已过期的记录，清理后只剩活跃会话
	expired := &entities.RefreshToken{
		Token:     "expired-token",
		UserID:    user.UserID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	if err := db.Create(expired).Error; err != nil {
		t.Fatalf("create expired record: %v", err)
	}

	deleted, err := svc.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("cleanup expired: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted record, got %d", deleted)
	}

	var remaining int64
	if err := db.Model(&entities.RefreshToken{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count remaining: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("expected 1 remaining record, got %d", remaining)
	}
	if _, err := svc.RefreshToken(ctx, pair.RefreshToken, commonEnums.PlatformApp, testDevice()); err != nil {
		t.Fatalf("active session must survive cleanup: %v", err)
	}
}

func TestRevokeAll(t *testing.T) {
	svc, db, repo := newTestTokenService(t, &config.AuthPolicyConfig{})
	user := createTestUser(t, db, enums.StatusActive)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.GenerateTokenPair(ctx, user, commonEnums.PlatformApp, testDevice()); err != nil {
			t.Fatalf("login %d: %v", i+1, err)
		}
	}

	revoked, err := svc.RevokeAll(ctx, user.UserID)
	if err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	if revoked != 3 {
		t.Fatalf("expected 3 revoked sessions, got %d", revoked)
	}

	active, err := repo.ListActiveByUserID(ctx, user.UserID)
	if err != nil {
		t.Fatalf("list active sessions: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active sessions, got %d", len(active))
	}
}
