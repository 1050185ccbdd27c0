package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleGetContact() gin.HandlerFunc {
	return func(c *gin.Context) {
		contact, err := s.b.GetContact(c.GetString("UserID"), c.Param("contactID"))
		if err != nil {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"Contact": contact,
		})
	}
}

func (s *Server) handleGetContactsEmails() gin.HandlerFunc {
	return func(c *gin.Context) {
		emails, err := s.b.GetContactEmails(c.GetString("UserID"), c.Query("Email"))
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ContactEmails": emails,
		})
	}
}
