package controller

import (
	"errors"
	"net/http"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/auth_hub/errs"
	"github.com/Xushengqwer/auth_hub/models/dto"
)

// respondServiceError 将服务层返回的错误映射为统一的 HTTP 响应。
// - 业务哨兵错误映射到对应的 4xx 状态码，错误消息直接使用哨兵自带的中文描述。
// - 其余错误（包括 commonerrors.ErrSystemError）一律按系统内部错误处理，
//   不向客户端透出内部细节。
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, err.Error())
	case errors.Is(err, errs.ErrForbidden):
		response.RespondError(c, http.StatusForbidden, response.ErrCodeClientForbidden, err.Error())
	case errors.Is(err, errs.ErrConflict):
		response.RespondError(c, http.StatusConflict, response.ErrCodeClientInvalidInput, err.Error())
	case errors.Is(err, errs.ErrRateLimited):
		response.RespondError(c, http.StatusTooManyRequests, response.ErrCodeClientRateLimitExceeded, err.Error())
	case errors.Is(err, errs.ErrLockBusy):
		response.RespondError(c, http.StatusConflict, response.ErrCodeClientInvalidInput, err.Error())
	case errors.Is(err, commonerrors.ErrRepoNotFound):
		response.RespondError(c, http.StatusNotFound, response.ErrCodeClientResourceNotFound, "资源不存在")
	case errors.Is(err, commonerrors.ErrServiceBusy):
		response.RespondError(c, http.StatusServiceUnavailable, response.ErrCodeServerInternal, commonerrors.ErrServiceBusy.Error())
	default:
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, commonerrors.ErrSystemError.Error())
	}
}

// fillDeviceInfo 用请求上下文补全客户端上报的设备信息。
// - IP 地址不信任客户端上报，由 Gin 从请求中提取。
// - UA 缺省时回填请求头中的 User-Agent。
func fillDeviceInfo(c *gin.Context, device *dto.DeviceInfo) {
	device.IPAddress = c.ClientIP()
	if device.UserAgent == "" {
		device.UserAgent = c.Request.UserAgent()
	}
}
