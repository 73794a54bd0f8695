package handler

import (
	"encoding/hex"
	"strings"
	"time"

	"signing-oracle/internal/handler/request"
	"signing-oracle/internal/handler/response"
	"signing-oracle/internal/oracle"
	"signing-oracle/internal/store"
	"signing-oracle/internal/tx"
	"signing-oracle/pkg/config"
	"signing-oracle/pkg/crypto_util"
	"signing-oracle/pkg/errno"
	"signing-oracle/pkg/monitor"
	"signing-oracle/pkg/validator"

	"github.com/gin-gonic/gin"
)

type OracleHandler struct {
	oracle      *oracle.Oracle
	store       *store.AttemptStore
	defaultPath string
	timeout     time.Duration
}

func NewOracleHandler(o *oracle.Oracle, s *store.AttemptStore, cfg config.OracleConfig) *OracleHandler {
	return &OracleHandler{
		oracle:      o,
		store:       s,
		defaultPath: cfg.DefaultPath,
		timeout:     cfg.AwaitTimeout,
	}
}

// HashView 同一个哈希的两种文本形式
type HashView struct {
	Hex    string `json:"hash_hex"`
	B64URL string `json:"hash_b64url"`
}

func newHashView(h crypto_util.ContentHash) HashView {
	return HashView{Hex: crypto_util.HexHash(h), B64URL: crypto_util.EncodeHash(h)}
}

func bindError(c *gin.Context, err error) {
	response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
}

// Encode 构造转账的规范消息
// @Summary 构造规范消息
// @Tags Oracle
// @Accept json
// @Produce json
// @Param request body request.EncodeRequest true "Encode Request"
// @Success 200 {object} response.Response
// @Router /api/v1/encode [post]
func (h *OracleHandler) Encode(c *gin.Context) {
	var req request.EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	v, err := tx.ParseVariant(req.Variant)
	if err != nil {
		response.Error(c, errno.ErrBind.WithMessage(err.Error()))
		return
	}
	signer, _ := hex.DecodeString(req.SignerPubKey) // kdahex 已校验

	msg, err := tx.Encode(v, req.Params.ToParams(h.defaultPath), signer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"variant": v.String(),
		"message": msg.String(),
		"hash":    newHashView(msg.Hash()),
	})
}

// Hash 计算消息的 blake2b-256
// @Summary 计算消息哈希
// @Tags Oracle
// @Accept json
// @Produce json
// @Param request body request.HashRequest true "Hash Request"
// @Success 200 {object} response.Response
// @Router /api/v1/hash [post]
func (h *OracleHandler) Hash(c *gin.Context) {
	var req request.HashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	response.Success(c, gin.H{
		"length": len(req.Message),
		"hash":   newHashView(crypto_util.Blake2b256([]byte(req.Message))),
	})
}

// Verify 验证 Ed25519 签名
// @Summary 验证签名
// @Tags Oracle
// @Accept json
// @Produce json
// @Param request body request.VerifyRequest true "Verify Request"
// @Success 200 {object} response.Response
// @Router /api/v1/verify [post]
func (h *OracleHandler) Verify(c *gin.Context) {
	var req request.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(req.Signature, "0x"), "0X"))
	if err != nil {
		response.Error(c, errno.ErrDecoding.WithMessage("signature: "+err.Error()))
		return
	}
	pub, _ := hex.DecodeString(req.PublicKey)
	digest, err := crypto_util.ParseDigest(req.Hash)
	if err != nil {
		response.Error(c, err)
		return
	}

	valid, err := crypto_util.VerifySignature(sig, digest[:], pub)
	if err != nil {
		response.Error(c, err)
		return
	}
	// [Metric]
	monitor.Business.SignatureChecked(valid)

	response.Success(c, gin.H{
		"valid": valid,
		"hash":  newHashView(digest),
	})
}
