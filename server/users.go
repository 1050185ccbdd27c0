package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleGetUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.b.GetUser(c.GetString("UserID"))
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"User": user,
		})
	}
}

func (s *Server) handleGetKeySalts() gin.HandlerFunc {
	return func(c *gin.Context) {
		salts, err := s.b.GetKeySalts(c.GetString("UserID"))
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"KeySalts": salts,
		})
	}
}

func (s *Server) handleGetPing() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Status(http.StatusOK)
	}
}
