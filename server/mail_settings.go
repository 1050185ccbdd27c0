package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lockmail/go-lockmail-api"
)

func (s *Server) handleGetMailSettings() gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := s.b.GetMailSettings(c.GetString("UserID"))
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"MailSettings": settings,
		})
	}
}

func (s *Server) handlePutMailSettingsSign() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req lockmail.SetSignExternalMessagesReq

		if err := c.BindJSON(&req); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		settings, err := s.b.SetSignExternalMessages(c.GetString("UserID"), req.Sign)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"MailSettings": settings,
		})
	}
}

func (s *Server) handlePutMailSettingsMIMEType() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req lockmail.SetDraftMIMETypeReq

		if err := c.BindJSON(&req); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		settings, err := s.b.SetDraftMIMEType(c.GetString("UserID"), req.MIMEType)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"MailSettings": settings,
		})
	}
}

func (s *Server) handlePutMailSettingsPGPScheme() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req lockmail.SetDefaultPGPSchemeReq

		if err := c.BindJSON(&req); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		settings, err := s.b.SetDefaultPGPScheme(c.GetString("UserID"), req.PGPScheme)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"MailSettings": settings,
		})
	}
}
