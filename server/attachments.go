package server

import (
	"io"
	"net/http"

	"github.com/ProtonMail/gluon/rfc822"
	"github.com/gin-gonic/gin"
	"github.com/lockmail/go-lockmail-api"
)

func (s *Server) handlePostMailAttachments() gin.HandlerFunc {
	return func(c *gin.Context) {
		keyPackets, err := readFormFile(c, "KeyPackets")
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		dataPacket, err := readFormFile(c, "DataPacket")
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		signature, err := readFormFile(c, "Signature")
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		attachment, err := s.b.CreateAttachment(
			c.GetString("UserID"),
			c.PostForm("MessageID"),
			c.PostForm("Filename"),
			rfc822.MIMEType(c.PostForm("MIMEType")),
			lockmail.Disposition(c.PostForm("Disposition")),
			c.PostForm("ContentID"),
			keyPackets,
			dataPacket,
			string(signature),
		)
		if err != nil {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"Attachment": attachment,
		})
	}
}

func (s *Server) handleGetMailAttachment() gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := s.b.GetAttachmentData(c.Param("attachID"))
		if err != nil {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}

		c.Data(http.StatusOK, "application/octet-stream", data)
	}
}

func readFormFile(c *gin.Context, name string) ([]byte, error) {
	header, err := c.FormFile(name)
	if err != nil {
		return nil, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}

	defer file.Close()

	return io.ReadAll(file)
}
