package handler

import (
	"context"
	"encoding/hex"

	"signing-oracle/internal/device"
	"signing-oracle/internal/handler/request"
	"signing-oracle/internal/handler/response"
	"signing-oracle/internal/oracle"
	"signing-oracle/internal/store"
	"signing-oracle/internal/tx"
	"signing-oracle/pkg/errno"
	"signing-oracle/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateAttempt 用录制的设备会话执行一次签名并验证结果
// @Summary 验证录制的签名会话
// @Description 按 mode 发起签名请求，等待回放会话给出结果并完成验证，结果会被保存
// @Tags Oracle
// @Accept json
// @Produce json
// @Param request body request.AttemptRequest true "Attempt Request"
// @Success 200 {object} response.Response
// @Router /api/v1/attempts [post]
func (h *OracleHandler) CreateAttempt(c *gin.Context) {
	var req request.AttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	a, err := h.begin(ctx, req, device.NewReplaySession(*req.Transcript))
	if err != nil {
		response.Error(c, err)
		return
	}

	rec := store.NewRecord(a, a.Await(ctx))
	if err := h.store.Save(ctx, rec); err != nil {
		// 保存失败不影响本次结果
		logger.Warn("save attempt failed", zap.String("attempt_id", rec.ID), zap.Error(err))
	}
	response.Success(c, rec)
}

func (h *OracleHandler) begin(ctx context.Context, req request.AttemptRequest, s *device.ReplaySession) (*oracle.Attempt, error) {
	r := oracle.Request{
		Mode:    oracle.Mode(req.Mode),
		Path:    req.Path,
		Message: []byte(req.Message),
		Hash:    req.Hash,
	}
	if r.Path == "" {
		r.Path = h.defaultPath
	}
	if req.ExpectedPubKey != "" {
		r.Expected, _ = hex.DecodeString(req.ExpectedPubKey) // kdahex 已校验
	}

	if r.Mode == oracle.ModeTransfer || r.Mode == oracle.ModeLegacyTransfer {
		if req.Params == nil {
			return nil, errno.ErrBind.WithMessage("params 不能为空")
		}
		v, err := tx.ParseVariant(req.Variant)
		if err != nil {
			return nil, errno.ErrBind.WithMessage(err.Error())
		}
		params := req.Params.ToParams(r.Path)
		r.Variant, r.Params = v, &params
	}
	return h.oracle.Begin(ctx, s, r)
}

// GetAttempt 查询已保存的尝试结果
// @Summary 查询尝试结果
// @Tags Oracle
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} response.Response
// @Router /api/v1/attempts/{id} [get]
func (h *OracleHandler) GetAttempt(c *gin.Context) {
	rec, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rec)
}
