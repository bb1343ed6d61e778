package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/datphandbplus/financial-be-sub001/internal/account"
	"github.com/datphandbplus/financial-be-sub001/internal/core/role"
)

// Logger logs every request with structured fields.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", latency),
			zap.String("request_id", c.GetString("request_id")),
			zap.String("channel", c.GetString("channel_id")),
		}

		if userID, exists := c.Get("user_id"); exists {
			fields = append(fields, zap.String("user_id", userID.(string)))
		}

		if status >= 500 {
			logger.Error("Server error", fields...)
		} else if status >= 400 {
			logger.Warn("Client error", fields...)
		} else {
			logger.Info("Request", fields...)
		}
	}
}

// CORS allows cross-origin access for the web frontend.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestID tags every request for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Request.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// ChannelClaims is the locally issued service token shape.
type ChannelClaims struct {
	UserID  string `json:"uid"`
	Name    string `json:"name"`
	RoleKey string `json:"role_key"`
	Channel string `json:"channel"`
	IsOwner bool   `json:"is_owner"`
	jwt.RegisteredClaims
}

// Auth resolves the caller's identity. Locally issued JWTs are verified with
// the shared secret; anything else goes to the account service, which owns
// channel tokens end to end.
func Auth(secret string, accounts *account.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    40100,
				"message": "Authorization is required",
			})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &ChannelClaims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err == nil && token.Valid {
			if claims, ok := token.Claims.(*ChannelClaims); ok {
				setIdentity(c, claims.UserID, claims.Name, claims.RoleKey, claims.Channel, claims.IsOwner)
				c.Next()
				return
			}
		}

		if accounts != nil {
			identity, resolveErr := accounts.Resolve(c.Request.Context(), tokenString)
			if resolveErr == nil {
				setIdentity(c, identity.UserID, identity.Name, identity.RoleKey, identity.Channel, identity.IsOwner)
				c.Next()
				return
			}
		}

		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    40102,
			"message": "Invalid or expired token",
		})
		c.Abort()
	}
}

func setIdentity(c *gin.Context, userID, name, roleKey, channel string, isOwner bool) {
	c.Set("user_id", userID)
	c.Set("user_name", name)
	c.Set("role_key", roleKey)
	c.Set("channel_id", channel)
	c.Set("is_owner", isOwner)
}

// Actor rebuilds the resolved identity from the request context. Returns nil
// when the request never passed Auth.
func Actor(c *gin.Context) *role.Actor {
	userID := c.GetString("user_id")
	if userID == "" {
		return nil
	}
	return &role.Actor{
		ID:      userID,
		Name:    c.GetString("user_name"),
		RoleKey: c.GetString("role_key"),
		IsOwner: c.GetBool("is_owner"),
	}
}

// RequireCapability gates a route on a capability predicate. Owners and
// admins pass every gate.
func RequireCapability(check func(role.Capability) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor(c)
		if actor == nil {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    40300,
				"message": "No identity found",
			})
			c.Abort()
			return
		}
		cap := actor.Cap()
		if actor.IsOwner || cap.IsAdmin || check(cap) {
			c.Next()
			return
		}
		c.JSON(http.StatusForbidden, gin.H{
			"code":    40302,
			"message": "Permission denied",
		})
		c.Abort()
	}
}
