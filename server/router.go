package server

import (
	"net/http"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/gin-gonic/gin"
	"github.com/lockmail/go-lockmail-api"
)

func initRouter(s *Server) {
	s.r.Use(s.requireValidAppVersion())

	if core := s.r.Group("/core/v4", s.requireAuth()); core != nil {
		if users := core.Group("/users"); users != nil {
			users.GET("", s.handleGetUsers())
		}

		if addresses := core.Group("/addresses"); addresses != nil {
			addresses.GET("", s.handleGetAddresses())
			addresses.GET("/:addressID", s.handleGetAddress())
		}

		if keys := core.Group("/keys"); keys != nil {
			keys.GET("", s.handleGetKeys())
			keys.GET("/salts", s.handleGetKeySalts())
		}
	}

	// All mail routes need authentication.
	if mail := s.r.Group("/mail/v4", s.requireAuth()); mail != nil {
		if settings := mail.Group("/settings"); settings != nil {
			settings.GET("", s.handleGetMailSettings())
			settings.PUT("/sign", s.handlePutMailSettingsSign())
			settings.PUT("/mimetype", s.handlePutMailSettingsMIMEType())
			settings.PUT("/pgpscheme", s.handlePutMailSettingsPGPScheme())
		}

		if messages := mail.Group("/messages"); messages != nil {
			messages.GET("", s.handleGetMailMessages())
			messages.POST("", s.handlePostMailMessages())
			messages.GET("/ids", s.handleGetMailMessageIDs())
			messages.GET("/:messageID", s.handleGetMailMessage())
			messages.PUT("/:messageID", s.handlePutMailMessage())
			messages.POST("/:messageID", s.handlePostMailMessage())
			messages.PUT("/read", s.handlePutMailMessagesRead())
			messages.PUT("/unread", s.handlePutMailMessagesUnread())
			messages.PUT("/delete", s.handleDeleteMailMessages())
		}

		if attachments := mail.Group("/attachments"); attachments != nil {
			attachments.POST("", s.handlePostMailAttachments())
			attachments.GET("/:attachID", s.handleGetMailAttachment())
		}
	}

	// All contacts routes need authentication.
	if contacts := s.r.Group("/contacts/v4", s.requireAuth()); contacts != nil {
		contacts.GET("/emails", s.handleGetContactsEmails())
		contacts.GET("/:contactID", s.handleGetContact())
	}

	if auth := s.r.Group("/auth/v4", s.requireAuth()); auth != nil {
		auth.GET("/modulus", s.handleGetAuthModulus())
	}

	// Test routes don't need authentication.
	if tests := s.r.Group("/tests"); tests != nil {
		tests.GET("/ping", s.handleGetPing())
	}
}

func (s *Server) requireValidAppVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		appVersion := c.Request.Header.Get("x-lm-appversion")

		if appVersion == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, lockmail.APIError{
				Code:    lockmail.AppVersionMissingCode,
				Message: "Missing x-lm-appversion header",
			})
		} else if ok := s.validateAppVersion(appVersion); !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, lockmail.APIError{
				Code:    lockmail.AppVersionBadCode,
				Message: "This version of the app is no longer supported, please update to continue using the app",
			})
		}
	}
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authUID := c.Request.Header.Get("x-lm-uid")
		if authUID == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		auth := c.Request.Header.Get("Authorization")
		if auth == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		userID, err := s.b.VerifyAuth(authUID, strings.Split(auth, " ")[1])
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set("UserID", userID)
		c.Set("AuthUID", authUID)
	}
}

func (s *Server) validateAppVersion(appVersion string) bool {
	if s.minAppVersion == nil {
		return true
	}

	split := strings.Split(appVersion, "_")

	if len(split) != 2 {
		return false
	}

	version, err := semver.NewVersion(split[1])
	if err != nil {
		return false
	}

	if version.LessThan(s.minAppVersion) {
		return false
	}

	return true
}
