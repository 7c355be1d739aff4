package auth

import (
	"errors"
	"strings"
	"time"

	"shipboard/internal/auth"
	"shipboard/internal/config"
	"shipboard/internal/httpx"
	"shipboard/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents login response data
type LoginResponse struct {
	Token    string   `json:"token"`
	ExpireAt string   `json:"expireAt"`
	User     UserInfo `json:"user"`
}

// UserInfo represents user information in response
type UserInfo struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	TeamID   int    `json:"team_id"`
}

// SetupRequest represents first-run setup request body
type SetupRequest struct {
	TeamName string `json:"teamName" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginHandler handles user login
func LoginHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
			return
		}

		var user model.User
		if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// User not found or wrong password - return same error for security
				httpx.FailErr(c, httpx.ErrInvalidToken("invalid credentials"))
				return
			}
			httpx.FailErr(c, httpx.ErrDatabaseError("database error", err))
			return
		}

		if user.Status == model.UserStatusInactive {
			httpx.FailErr(c, httpx.ErrForbidden("user is inactive"))
			return
		}

		if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
			// Wrong password
			httpx.FailErr(c, httpx.ErrInvalidToken("invalid credentials"))
			return
		}

		expireAt := time.Now().Add(time.Duration(cfg.JWT.ExpireMinutes) * time.Minute)
		token, err := auth.GenerateToken(user.ID, user.Username, user.Role, user.TeamID, expireAt, cfg.JWT.Issuer)
		if err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to generate token", err))
			return
		}

		httpx.OK(c, LoginResponse{
			Token:    token,
			ExpireAt: expireAt.Format(time.RFC3339),
			User: UserInfo{
				ID:       user.ID,
				Username: user.Username,
				Role:     user.Role,
				TeamID:   user.TeamID,
			},
		})
	}
}

// SetupHandler creates the first team and its admin user. It only works
// while the users table is empty; afterwards it always returns 403.
func SetupHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
			return
		}

		var count int64
		if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("failed to check users", err))
			return
		}
		if count > 0 {
			httpx.FailErr(c, httpx.ErrForbidden("setup already completed"))
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to hash password", err))
			return
		}

		slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(req.TeamName), " ", "-"))

		err = db.Transaction(func(tx *gorm.DB) error {
			team := model.Team{Name: req.TeamName, Slug: slug}
			if err := tx.Create(&team).Error; err != nil {
				return err
			}
			user := model.User{
				Username:     req.Username,
				PasswordHash: hash,
				Role:         "admin",
				TeamID:       team.ID,
				Status:       model.UserStatusActive,
			}
			return tx.Create(&user).Error
		})
		if err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("failed to create team and admin", err))
			return
		}

		httpx.OK(c, gin.H{"created": true})
	}
}
