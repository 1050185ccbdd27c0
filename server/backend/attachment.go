package backend

import (
	"encoding/base64"
	"fmt"

	"github.com/ProtonMail/gluon/rfc822"
	"github.com/google/uuid"
	"github.com/lockmail/go-lockmail-api"
)

type attachment struct {
	attachID  string
	attDataID string

	filename    string
	mimeType    rfc822.MIMEType
	disposition lockmail.Disposition
	contentID   string

	keyPackets []byte
	armSig     string
}

func (att *attachment) toAttachment() lockmail.Attachment {
	return lockmail.Attachment{
		ID: att.attachID,

		Name:        att.filename,
		MIMEType:    att.mimeType,
		Disposition: att.disposition,
		ContentID:   att.contentID,

		KeyPackets: base64.StdEncoding.EncodeToString(att.keyPackets),
		Signature:  att.armSig,
	}
}

func (b *Backend) CreateAttachment(
	userID string,
	messageID string,
	filename string,
	mimeType rfc822.MIMEType,
	disposition lockmail.Disposition,
	contentID string,
	keyPackets []byte,
	dataPacket []byte,
	armSig string,
) (lockmail.Attachment, error) {
	b.msgLock.Lock()
	defer b.msgLock.Unlock()

	msg, err := b.userMessage(userID, messageID)
	if err != nil {
		return lockmail.Attachment{}, err
	}

	b.attLock.Lock()
	defer b.attLock.Unlock()

	b.attDataLock.Lock()
	defer b.attDataLock.Unlock()

	attDataID := uuid.NewString()
	b.attData[attDataID] = dataPacket

	att := &attachment{
		attachID:  uuid.NewString(),
		attDataID: attDataID,

		filename:    filename,
		mimeType:    mimeType,
		disposition: disposition,
		contentID:   contentID,

		keyPackets: keyPackets,
		armSig:     armSig,
	}

	b.attachments[att.attachID] = att
	msg.attIDs = append(msg.attIDs, att.attachID)

	return att.toAttachment(), nil
}

// GetAttachmentData returns the raw key packet and data packet of the given
// attachment, concatenated the way a PGP message lays them out.
func (b *Backend) GetAttachmentData(attachID string) ([]byte, error) {
	b.attLock.Lock()
	defer b.attLock.Unlock()

	att, ok := b.attachments[attachID]
	if !ok {
		return nil, fmt.Errorf("attachment %s does not exist", attachID)
	}

	b.attDataLock.Lock()
	defer b.attDataLock.Unlock()

	return append(append([]byte{}, att.keyPackets...), b.attData[att.attDataID]...), nil
}
