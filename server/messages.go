package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lockmail/go-lockmail-api"
	"github.com/lockmail/go-lockmail-api/server/backend"
)

func (s *Server) handleGetMailMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := s.b.CountMessages(c.GetString("UserID"))
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"Total": count,
		})
	}
}

// handlePostMailMessages either creates a draft or, with the method override
// header set, serves a filtered metadata listing.
func (s *Server) handlePostMailMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Header.Get("X-HTTP-Method-Override") == "GET" {
			s.handleMessageMetadata(c)
			return
		}

		var req lockmail.CreateDraftReq

		if err := c.BindJSON(&req); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		message, err := s.b.CreateDraft(c.GetString("UserID"), req.Message)
		if err != nil {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"Message": message,
		})
	}
}

func (s *Server) handleMessageMetadata(c *gin.Context) {
	var req struct {
		lockmail.MessageFilter

		Page     int
		PageSize int
	}

	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	metadata, err := s.b.GetMessageMetadata(c.GetString("UserID"), req.Page, req.PageSize, req.MessageFilter)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"Messages": metadata,
	})
}

func (s *Server) handleGetMailMessageIDs() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.Query("Limit"))
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		messageIDs, err := s.b.GetMessageIDs(c.GetString("UserID"), c.Query("AfterID"), limit)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"IDs": messageIDs,
		})
	}
}

func (s *Server) handleGetMailMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		message, err := s.b.GetMessage(c.GetString("UserID"), c.Param("messageID"))
		if err != nil {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"Message": message,
		})
	}
}

func (s *Server) handlePutMailMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req lockmail.UpdateDraftReq

		if err := c.BindJSON(&req); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		message, err := s.b.UpdateDraft(c.GetString("UserID"), c.Param("messageID"), req.Message)
		if err != nil {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"Message": message,
		})
	}
}

func (s *Server) handlePostMailMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req lockmail.SendDraftReq

		if err := c.BindJSON(&req); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		message, err := s.b.SendDraft(c.GetString("UserID"), c.Param("messageID"), req)
		if errors.Is(err, backend.ErrInvalidRecipient) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, lockmail.APIError{
				Code:    lockmail.InvalidRecipientCode,
				Message: "Unable to deliver to one of the recipients",
			})
			return
		} else if errors.Is(err, backend.ErrAlreadySent) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, lockmail.APIError{
				Code:    lockmail.AlreadySentCode,
				Message: "Message was already sent",
			})
			return
		} else if err != nil {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"Sent": message,
		})
	}
}

func (s *Server) handlePutMailMessagesRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req lockmail.MessageActionReq

		if err := c.BindJSON(&req); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		if err := s.b.SetMessagesRead(c.GetString("UserID"), true, req.IDs...); err != nil {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}
	}
}

func (s *Server) handlePutMailMessagesUnread() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req lockmail.MessageActionReq

		if err := c.BindJSON(&req); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		if err := s.b.SetMessagesRead(c.GetString("UserID"), false, req.IDs...); err != nil {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}
	}
}

func (s *Server) handleDeleteMailMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req lockmail.MessageActionReq

		if err := c.BindJSON(&req); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		if err := s.b.DeleteMessages(c.GetString("UserID"), req.IDs...); err != nil {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}
	}
}
