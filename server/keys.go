package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleGetKeys() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("Email")
		if email == "" {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		keys, err := s.b.GetRecipientKeys(email)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"RecipientType": keys.RecipientType,
			"Keys":          keys.Keys,
		})
	}
}

func (s *Server) handleGetAuthModulus() gin.HandlerFunc {
	return func(c *gin.Context) {
		modulus := s.b.GetAuthModulus()

		c.JSON(http.StatusOK, gin.H{
			"ModulusID": modulus.ModulusID,
			"Modulus":   modulus.Modulus,
		})
	}
}
