package api_keys

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"shipboard/api/v1/middleware"
	"shipboard/internal/httpx"
	"shipboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateRequest represents create API key request
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// RevokeRequest represents revoke API key request
type RevokeRequest struct {
	ID int `json:"id" binding:"required"`
}

// Handler handles API key management
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new API keys handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// List handles GET /api/v1/api-keys
func (h *Handler) List(c *gin.Context) {
	var keys []model.APIKey
	if err := h.db.Where("team_id = ?", middleware.TeamID(c)).
		Order("id DESC").Find(&keys).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch API keys", err))
		return
	}
	httpx.OK(c, keys)
}

// Create handles POST /api/v1/api-keys/create. The full token is
// returned exactly once; only its hash is stored.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	token := newToken()
	prefix := token[:10]
	sum := sha256.Sum256([]byte(token))

	key := model.APIKey{
		Name:      req.Name,
		TeamID:    middleware.TeamID(c),
		Prefix:    prefix,
		TokenHash: hex.EncodeToString(sum[:]),
		Status:    model.APIKeyStatusActive,
	}
	if err := h.db.Create(&key).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to create API key", err))
		return
	}

	httpx.OK(c, gin.H{
		"id":     key.ID,
		"name":   key.Name,
		"prefix": key.Prefix,
		"token":  token,
	})
}

// Revoke handles POST /api/v1/api-keys/revoke
func (h *Handler) Revoke(c *gin.Context) {
	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	var key model.APIKey
	if err := h.db.Where("team_id = ?", middleware.TeamID(c)).First(&key, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("API key not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch API key", err))
		return
	}

	if key.Status == model.APIKeyStatusRevoked {
		httpx.OK(c, key)
		return
	}

	if err := h.db.Model(&key).Update("status", model.APIKeyStatusRevoked).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to revoke API key", err))
		return
	}

	httpx.OK(c, key)
}

// newToken builds an opaque bearer token. The "sb_" prefix makes keys
// recognizable in logs and secret scanners.
func newToken() string {
	raw := strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
	return "sb_" + raw
}
