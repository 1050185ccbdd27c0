package backend

import (
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/ProtonMail/gluon/rfc822"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/bradenaw/juniper/xslices"
	"github.com/google/uuid"
	"github.com/lockmail/go-lockmail-api"
)

var (
	// ErrInvalidRecipient is a send attempt naming a recipient the platform
	// cannot deliver to.
	ErrInvalidRecipient = fmt.Errorf("invalid recipient")

	// ErrAlreadySent is a send attempt for a message that was already sent.
	ErrAlreadySent = fmt.Errorf("message already sent")
)

type message struct {
	messageID  string
	userID     string
	addrID     string
	externalID string

	subject string
	sender  *mail.Address
	toList  []*mail.Address
	ccList  []*mail.Address
	bccList []*mail.Address

	armBody  string
	mimeType rfc822.MIMEType

	flags  lockmail.MessageFlag
	unread bool
	time   time.Time

	attIDs []string

	packages []*lockmail.MessagePackage

	expirationTime int64
}

func (b *Backend) CreateDraft(userID string, tmpl lockmail.DraftTemplate) (lockmail.Message, error) {
	b.msgLock.Lock()
	defer b.msgLock.Unlock()

	addrID, err := b.addrIDForSender(userID, tmpl.Sender)
	if err != nil {
		return lockmail.Message{}, err
	}

	msg := &message{
		messageID:  uuid.NewString(),
		userID:     userID,
		addrID:     addrID,
		externalID: tmpl.ExternalID,

		subject: tmpl.Subject,
		sender:  tmpl.Sender,
		toList:  tmpl.ToList,
		ccList:  tmpl.CCList,
		bccList: tmpl.BCCList,

		armBody:  tmpl.Body,
		mimeType: tmpl.MIMEType,

		unread: bool(tmpl.Unread),
		time:   time.Now(),
	}

	b.messages[msg.messageID] = msg

	if err := b.withAcc(userID, func(acc *account) error {
		acc.messageIDs = append(acc.messageIDs, msg.messageID)

		return nil
	}); err != nil {
		return lockmail.Message{}, err
	}

	return b.toMessage(msg), nil
}

func (b *Backend) UpdateDraft(userID, messageID string, tmpl lockmail.DraftTemplate) (lockmail.Message, error) {
	b.msgLock.Lock()
	defer b.msgLock.Unlock()

	msg, err := b.userMessage(userID, messageID)
	if err != nil {
		return lockmail.Message{}, err
	}

	if msg.flags.Has(lockmail.MessageFlagSent) {
		return lockmail.Message{}, ErrAlreadySent
	}

	msg.subject = tmpl.Subject
	msg.toList = tmpl.ToList
	msg.ccList = tmpl.CCList
	msg.bccList = tmpl.BCCList
	msg.armBody = tmpl.Body
	msg.mimeType = tmpl.MIMEType

	return b.toMessage(msg), nil
}

func (b *Backend) GetMessage(userID, messageID string) (lockmail.Message, error) {
	b.msgLock.Lock()
	defer b.msgLock.Unlock()

	msg, err := b.userMessage(userID, messageID)
	if err != nil {
		return lockmail.Message{}, err
	}

	return b.toMessage(msg), nil
}

func (b *Backend) GetMessageIDs(userID, afterID string, limit int) ([]string, error) {
	b.msgLock.Lock()
	defer b.msgLock.Unlock()

	var messageIDs []string

	if err := b.withAcc(userID, func(acc *account) error {
		messageIDs = acc.messageIDs

		return nil
	}); err != nil {
		return nil, err
	}

	if afterID != "" {
		idx := xslices.Index(messageIDs, afterID)
		if idx < 0 {
			return nil, fmt.Errorf("message %s does not exist", afterID)
		}

		messageIDs = messageIDs[idx+1:]
	}

	if len(messageIDs) > limit {
		messageIDs = messageIDs[:limit]
	}

	return messageIDs, nil
}

func (b *Backend) CountMessages(userID string) (int, error) {
	b.msgLock.Lock()
	defer b.msgLock.Unlock()

	var count int

	if err := b.withAcc(userID, func(acc *account) error {
		count = len(acc.messageIDs)

		return nil
	}); err != nil {
		return 0, err
	}

	return count, nil
}

func (b *Backend) GetMessageMetadata(userID string, page, pageSize int, filter lockmail.MessageFilter) ([]lockmail.MessageMetadata, error) {
	b.msgLock.Lock()
	defer b.msgLock.Unlock()

	var messageIDs []string

	if err := b.withAcc(userID, func(acc *account) error {
		messageIDs = acc.messageIDs

		return nil
	}); err != nil {
		return nil, err
	}

	if len(filter.ID) > 0 {
		messageIDs = xslices.Filter(messageIDs, func(messageID string) bool {
			return xslices.Index(filter.ID, messageID) >= 0
		})
	}

	metadata := make([]lockmail.MessageMetadata, 0, len(messageIDs))

	for _, messageID := range messageIDs {
		msg := b.messages[messageID]

		if filter.Subject != "" && !strings.Contains(msg.subject, filter.Subject) {
			continue
		}

		if filter.AddressID != "" && msg.addrID != filter.AddressID {
			continue
		}

		if filter.ExternalID != "" && msg.externalID != filter.ExternalID {
			continue
		}

		metadata = append(metadata, b.toMessage(msg).MessageMetadata)
	}

	if begin := page * pageSize; begin < len(metadata) {
		metadata = metadata[begin:]
	} else {
		metadata = nil
	}

	if len(metadata) > pageSize {
		metadata = metadata[:pageSize]
	}

	return metadata, nil
}

func (b *Backend) DeleteMessages(userID string, messageIDs ...string) error {
	b.msgLock.Lock()
	defer b.msgLock.Unlock()

	return b.withAcc(userID, func(acc *account) error {
		for _, messageID := range messageIDs {
			if _, ok := b.messages[messageID]; !ok {
				return fmt.Errorf("message %s does not exist", messageID)
			}

			delete(b.messages, messageID)

			acc.messageIDs = xslices.Filter(acc.messageIDs, func(otherID string) bool {
				return otherID != messageID
			})
		}

		return nil
	})
}

func (b *Backend) SetMessagesRead(userID string, read bool, messageIDs ...string) error {
	b.msgLock.Lock()
	defer b.msgLock.Unlock()

	for _, messageID := range messageIDs {
		msg, err := b.userMessage(userID, messageID)
		if err != nil {
			return err
		}

		msg.unread = !read
	}

	return nil
}

// SendDraft delivers the draft per the given packages. Each package
// recipient must resolve to a deliverable destination: internal recipients
// must be hosted here. Internal recipients receive a copy rebuilt from their
// key packet. Sending an already-sent message fails with ErrAlreadySent.
func (b *Backend) SendDraft(userID, messageID string, req lockmail.SendDraftReq) (lockmail.Message, error) {
	b.msgLock.Lock()
	defer b.msgLock.Unlock()

	msg, err := b.userMessage(userID, messageID)
	if err != nil {
		return lockmail.Message{}, err
	}

	if msg.flags.Has(lockmail.MessageFlagSent) {
		return lockmail.Message{}, ErrAlreadySent
	}

	type delivery struct {
		userID string
		addrID string
		body   string
	}

	var deliveries []delivery

	for _, pkg := range req.Packages {
		for email, recipient := range pkg.Addresses {
			if recipient.Type != lockmail.InternalScheme {
				continue
			}

			destUserID, destAddrID, err := b.findAddress(email)
			if err != nil {
				return lockmail.Message{}, ErrInvalidRecipient
			}

			armBody, err := packageBody(pkg, recipient)
			if err != nil {
				return lockmail.Message{}, err
			}

			deliveries = append(deliveries, delivery{
				userID: destUserID,
				addrID: destAddrID,
				body:   armBody,
			})
		}
	}

	for _, delivery := range deliveries {
		inbound := &message{
			messageID: uuid.NewString(),
			userID:    delivery.userID,
			addrID:    delivery.addrID,

			subject: msg.subject,
			sender:  msg.sender,
			toList:  msg.toList,
			ccList:  msg.ccList,
			bccList: msg.bccList,

			armBody:  delivery.body,
			mimeType: msg.mimeType,

			flags:  lockmail.MessageFlagReceived | lockmail.MessageFlagInternal | lockmail.MessageFlagE2E,
			unread: true,
			time:   time.Now(),
		}

		b.messages[inbound.messageID] = inbound

		if err := b.withAcc(delivery.userID, func(acc *account) error {
			acc.messageIDs = append(acc.messageIDs, inbound.messageID)

			return nil
		}); err != nil {
			return lockmail.Message{}, err
		}
	}

	msg.flags = msg.flags.Add(lockmail.MessageFlagSent)
	msg.unread = false
	msg.packages = req.Packages
	msg.expirationTime = req.ExpirationTime

	return b.toMessage(msg), nil
}

// GetMessagePackages returns the packages a message was sent with.
func (b *Backend) GetMessagePackages(messageID string) ([]*lockmail.MessagePackage, error) {
	b.msgLock.Lock()
	defer b.msgLock.Unlock()

	msg, ok := b.messages[messageID]
	if !ok {
		return nil, fmt.Errorf("message %s does not exist", messageID)
	}

	return msg.packages, nil
}

// packageBody rebuilds an armored PGP message for one recipient from the
// package's shared data packet and the recipient's key packet.
func packageBody(pkg *lockmail.MessagePackage, recipient *lockmail.MessageRecipient) (string, error) {
	dataPacket, err := base64.StdEncoding.DecodeString(pkg.Body)
	if err != nil {
		return "", err
	}

	keyPacket, err := base64.StdEncoding.DecodeString(recipient.BodyKeyPacket)
	if err != nil {
		return "", err
	}

	return crypto.NewPGPSplitMessage(keyPacket, dataPacket).GetArmored()
}

func (b *Backend) findAddress(email string) (string, string, error) {
	b.accLock.RLock()
	defer b.accLock.RUnlock()

	for _, acc := range b.accounts {
		for _, addr := range acc.addresses {
			if strings.EqualFold(addr.email, email) {
				return acc.userID, addr.addrID, nil
			}
		}
	}

	return "", "", fmt.Errorf("no such address %s", email)
}

func (b *Backend) addrIDForSender(userID string, sender *mail.Address) (string, error) {
	var addrID string

	if err := b.withAcc(userID, func(acc *account) error {
		if sender == nil {
			if len(acc.addresses) == 0 {
				return fmt.Errorf("user %s has no addresses", userID)
			}

			addrID = acc.addresses[0].addrID

			return nil
		}

		for _, addr := range acc.addresses {
			if strings.EqualFold(addr.email, sender.Address) {
				addrID = addr.addrID

				return nil
			}
		}

		return fmt.Errorf("no such sender address %s", sender.Address)
	}); err != nil {
		return "", err
	}

	return addrID, nil
}

func (b *Backend) userMessage(userID, messageID string) (*message, error) {
	msg, ok := b.messages[messageID]
	if !ok || msg.userID != userID {
		return nil, fmt.Errorf("message %s does not exist", messageID)
	}

	return msg, nil
}

func (b *Backend) toMessage(msg *message) lockmail.Message {
	b.attLock.Lock()
	defer b.attLock.Unlock()

	return lockmail.Message{
		MessageMetadata: lockmail.MessageMetadata{
			ID:         msg.messageID,
			AddressID:  msg.addrID,
			ExternalID: msg.externalID,

			Subject:  msg.subject,
			Sender:   msg.sender,
			ToList:   msg.toList,
			CCList:   msg.ccList,
			BCCList:  msg.bccList,

			Flags:          msg.flags,
			Time:           msg.time.Unix(),
			Unread:         lockmail.Bool(msg.unread),
			ExpirationTime: msg.expirationTime,
		},

		Body:     msg.armBody,
		MIMEType: msg.mimeType,

		Attachments: xslices.Map(msg.attIDs, func(attID string) lockmail.Attachment {
			return b.attachments[attID].toAttachment()
		}),
	}
}
