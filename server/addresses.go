package server

import (
	"net/http"

	"github.com/bradenaw/juniper/xslices"
	"github.com/gin-gonic/gin"
	"github.com/lockmail/go-lockmail-api"
)

func (s *Server) handleGetAddresses() gin.HandlerFunc {
	return func(c *gin.Context) {
		addresses, err := s.b.GetAddresses(c.GetString("UserID"))
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"Addresses": addresses,
		})
	}
}

func (s *Server) handleGetAddress() gin.HandlerFunc {
	return func(c *gin.Context) {
		addresses, err := s.b.GetAddresses(c.GetString("UserID"))
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		idx := xslices.IndexFunc(addresses, func(address lockmail.Address) bool {
			return address.ID == c.Param("addressID")
		})

		if idx < 0 {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"Address": addresses[idx],
		})
	}
}
