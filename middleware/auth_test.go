package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	commonEnums "github.com/Xushengqwer/go-common/models/enums"
	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/auth_hub/dependencies"
	"github.com/Xushengqwer/auth_hub/errs"
	"github.com/Xushengqwer/auth_hub/models/dto"
	"github.com/Xushengqwer/auth_hub/models/entities"
	"github.com/Xushengqwer/auth_hub/models/enums"
	"github.com/Xushengqwer/auth_hub/models/vo"
)

// fakeTokenService 只为中间件测试实现令牌校验，其余方法不会被调用。
type fakeTokenService struct {
	claims *dependencies.CustomClaims
	err    error
}

func (f *fakeTokenService) GenerateTokenPair(context.Context, *entities.User, commonEnums.Platform, dto.DeviceInfo) (vo.TokenPair, error) {
	panic("not used in middleware tests")
}

func (f *fakeTokenService) RefreshToken(context.Context, string, commonEnums.Platform, dto.DeviceInfo) (vo.TokenPair, error) {
	panic("not used in middleware tests")
}

func (f *fakeTokenService) Logout(context.Context, string) error {
	panic("not used in middleware tests")
}

func (f *fakeTokenService) RevokeAll(context.Context, string) (int64, error) {
	panic("not used in middleware tests")
}

func (f *fakeTokenService) CleanupExpired(context.Context) (int64, error) {
	panic("not used in middleware tests")
}

func (f *fakeTokenService) VerifyAccessToken(context.Context, string) (*dependencies.CustomClaims, error) {
	return f.claims, f.err
}

func performAuthRequest(t *testing.T, svc *fakeTokenService, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	router := gin.New()
	router.GET("/protected", AuthMiddleware(svc), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeErrorCode(t *testing.T, recorder *httptest.ResponseRecorder) int {
	t.Helper()
	var body response.APIResponse[any]
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body.Code
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	recorder := performAuthRequest(t, &fakeTokenService{}, "")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	recorder := performAuthRequest(t, &fakeTokenService{err: errs.ErrUnauthorized}, "Bearer bad-token")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
	if code := decodeErrorCode(t, recorder); code != response.ErrCodeClientUnauthorized {
		t.Fatalf("expected error code %d, got %d", response.ErrCodeClientUnauthorized, code)
	}
}

func TestAuthMiddlewareDeactivatedUser(t *testing.T) {
	// 令牌签名有效但用户已被停用，校验返回禁止访问
	recorder := performAuthRequest(t, &fakeTokenService{err: errs.ErrForbidden}, "Bearer stale-token")
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}
	if code := decodeErrorCode(t, recorder); code != response.ErrCodeClientForbidden {
		t.Fatalf("expected error code %d, got %d", response.ErrCodeClientForbidden, code)
	}
}

func TestAuthMiddlewarePassesClaims(t *testing.T) {
	claims := &dependencies.CustomClaims{UserID: "user-1", Role: enums.RoleCustomer, Status: enums.StatusActive}

	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	router := gin.New()
	router.GET("/protected", AuthMiddleware(&fakeTokenService{claims: claims}), func(c *gin.Context) {
		got, ok := ClaimsFromContext(c)
		if !ok || got.UserID != "user-1" {
			t.Fatalf("expected claims in context, got %+v (ok=%v)", got, ok)
		}
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestRequireRolesForbiddenCode(t *testing.T) {
	claims := &dependencies.CustomClaims{UserID: "user-1", Role: enums.RoleCustomer, Status: enums.StatusActive}

	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	router := gin.New()
	router.GET("/admin", AuthMiddleware(&fakeTokenService{claims: claims}), RequireRoles(enums.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}
	if code := decodeErrorCode(t, recorder); code != response.ErrCodeClientForbidden {
		t.Fatalf("expected error code %d, got %d", response.ErrCodeClientForbidden, code)
	}
}
