package backend

import (
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ProtonMail/gluon/rfc822"
	"github.com/ProtonMail/go-srp"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/bradenaw/juniper/xslices"
	"github.com/google/uuid"
	"github.com/lockmail/go-lockmail-api"
)

type Backend struct {
	accounts map[string]*account
	accLock  sync.RWMutex

	external map[string]string
	extLock  sync.RWMutex

	messages map[string]*message
	msgLock  sync.Mutex

	attachments map[string]*attachment
	attLock     sync.Mutex

	attData     map[string][]byte
	attDataLock sync.Mutex

	contacts map[string]*contact
	conLock  sync.Mutex

	authLife time.Duration
}

func New(authLife time.Duration) *Backend {
	return &Backend{
		accounts:    make(map[string]*account),
		external:    make(map[string]string),
		messages:    make(map[string]*message),
		attachments: make(map[string]*attachment),
		attData:     make(map[string][]byte),
		contacts:    make(map[string]*contact),

		authLife: authLife,
	}
}

func (b *Backend) SetAuthLife(authLife time.Duration) {
	b.authLife = authLife
}

type account struct {
	userID   string
	username string

	addresses []*address

	keys []key
	salt []byte

	mailSettings lockmail.MailSettings

	auth       map[string]auth
	contactIDs []string
	messageIDs []string
}

type address struct {
	addrID string
	email  string
	keys   []key
	order  int
}

type key struct {
	keyID  string
	armKey string
}

type auth struct {
	acc string
	ref string
	exp time.Time
}

func (b *Backend) CreateUser(username string, password []byte) (string, error) {
	b.accLock.Lock()
	defer b.accLock.Unlock()

	salt, err := crypto.RandomToken(16)
	if err != nil {
		return "", err
	}

	passphrase, err := hashPassword(password, salt)
	if err != nil {
		return "", err
	}

	armKey, err := GenerateKey(username, username, passphrase)
	if err != nil {
		return "", err
	}

	userID := uuid.NewString()

	b.accounts[userID] = &account{
		userID:   userID,
		username: username,

		keys: []key{{keyID: uuid.NewString(), armKey: armKey}},
		salt: salt,

		mailSettings: lockmail.MailSettings{
			DisplayName:   username,
			DraftMIMEType: rfc822.TextHTML,
			PGPScheme:     lockmail.PGPMIMEScheme,
		},

		auth: make(map[string]auth),
	}

	return userID, nil
}

// Lock order is msgLock, attLock, conLock, accLock.
func (b *Backend) RemoveUser(userID string) error {
	b.msgLock.Lock()
	defer b.msgLock.Unlock()

	b.attLock.Lock()
	defer b.attLock.Unlock()

	b.conLock.Lock()
	defer b.conLock.Unlock()

	b.accLock.Lock()
	defer b.accLock.Unlock()

	user, ok := b.accounts[userID]
	if !ok {
		return fmt.Errorf("user %s does not exist", userID)
	}

	for _, messageID := range user.messageIDs {
		for _, attID := range b.messages[messageID].attIDs {
			delete(b.attData, b.attachments[attID].attDataID)
			delete(b.attachments, attID)
		}

		delete(b.messages, messageID)
	}

	for _, contactID := range user.contactIDs {
		delete(b.contacts, contactID)
	}

	delete(b.accounts, userID)

	return nil
}

func (b *Backend) CreateAddress(userID, email string, password []byte) (string, error) {
	b.accLock.Lock()
	defer b.accLock.Unlock()

	user, ok := b.accounts[userID]
	if !ok {
		return "", fmt.Errorf("user %s does not exist", userID)
	}

	passphrase, err := hashPassword(password, user.salt)
	if err != nil {
		return "", err
	}

	armKey, err := GenerateKey(user.username, email, passphrase)
	if err != nil {
		return "", err
	}

	addr := &address{
		addrID: uuid.NewString(),
		email:  email,
		keys:   []key{{keyID: uuid.NewString(), armKey: armKey}},
		order:  len(user.addresses) + 1,
	}

	user.addresses = append(user.addresses, addr)

	return addr.addrID, nil
}

// RegisterExternalAddress records a public key for an address hosted
// elsewhere, as the key directory would discover it.
func (b *Backend) RegisterExternalAddress(email, armPubKey string) {
	b.extLock.Lock()
	defer b.extLock.Unlock()

	b.external[strings.ToLower(email)] = armPubKey
}

// CreateSession issues a bearer token for the given user.
func (b *Backend) CreateSession(userID string) (string, string, error) {
	b.accLock.Lock()
	defer b.accLock.Unlock()

	user, ok := b.accounts[userID]
	if !ok {
		return "", "", fmt.Errorf("user %s does not exist", userID)
	}

	authUID := uuid.NewString()

	user.auth[authUID] = auth{
		acc: uuid.NewString(),
		ref: uuid.NewString(),
		exp: time.Now().Add(b.authLife),
	}

	return authUID, user.auth[authUID].acc, nil
}

func (b *Backend) VerifyAuth(authUID, authAcc string) (string, error) {
	b.accLock.RLock()
	defer b.accLock.RUnlock()

	for _, user := range b.accounts {
		auth, ok := user.auth[authUID]
		if !ok {
			continue
		}

		if auth.acc != authAcc || time.Now().After(auth.exp) {
			return "", fmt.Errorf("invalid auth")
		}

		return user.userID, nil
	}

	return "", fmt.Errorf("invalid auth")
}

func (b *Backend) DeleteSession(userID, authUID string) error {
	return b.withAcc(userID, func(acc *account) error {
		delete(acc.auth, authUID)

		return nil
	})
}

func (b *Backend) GetUser(userID string) (lockmail.User, error) {
	var res lockmail.User

	if err := b.withAcc(userID, func(acc *account) error {
		res = lockmail.User{
			ID:          acc.userID,
			Name:        acc.username,
			DisplayName: acc.mailSettings.DisplayName,
			Keys: xslices.Map(acc.keys, func(k key) lockmail.Key {
				return lockmail.Key{
					ID:         k.keyID,
					PrivateKey: k.armKey,
					Active:     true,
					Primary:    true,
				}
			}),
		}

		if len(acc.addresses) > 0 {
			res.Email = acc.addresses[0].email
		}

		return nil
	}); err != nil {
		return lockmail.User{}, err
	}

	return res, nil
}

func (b *Backend) GetKeySalts(userID string) ([]lockmail.KeySalt, error) {
	var res []lockmail.KeySalt

	if err := b.withAcc(userID, func(acc *account) error {
		for _, k := range acc.keys {
			res = append(res, lockmail.KeySalt{
				ID:      k.keyID,
				KeySalt: base64.StdEncoding.EncodeToString(acc.salt),
			})
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return res, nil
}

func (b *Backend) GetAddresses(userID string) ([]lockmail.Address, error) {
	var res []lockmail.Address

	if err := b.withAcc(userID, func(acc *account) error {
		res = xslices.Map(acc.addresses, func(addr *address) lockmail.Address {
			return toAddress(addr)
		})

		return nil
	}); err != nil {
		return nil, err
	}

	return res, nil
}

func (b *Backend) GetAddress(userID, addrID string) (lockmail.Address, error) {
	var res lockmail.Address

	if err := b.withAcc(userID, func(acc *account) error {
		for _, addr := range acc.addresses {
			if addr.addrID == addrID {
				res = toAddress(addr)
				return nil
			}
		}

		return fmt.Errorf("address %s does not exist", addrID)
	}); err != nil {
		return lockmail.Address{}, err
	}

	return res, nil
}

func toAddress(addr *address) lockmail.Address {
	return lockmail.Address{
		ID:     addr.addrID,
		Email:  addr.email,
		Status: lockmail.AddressStatusEnabled,
		Order:  addr.order,
		Keys: xslices.Map(addr.keys, func(k key) lockmail.Key {
			return lockmail.Key{
				ID:         k.keyID,
				PrivateKey: k.armKey,
				Active:     true,
				Primary:    true,
			}
		}),
	}
}

func (b *Backend) withAcc(userID string, fn func(acc *account) error) error {
	b.accLock.Lock()
	defer b.accLock.Unlock()

	acc, ok := b.accounts[userID]
	if !ok {
		return fmt.Errorf("user %s does not exist", userID)
	}

	return fn(acc)
}

func hashPassword(password, salt []byte) ([]byte, error) {
	passphrase, err := srp.MailboxPassword(password, salt)
	if err != nil {
		return nil, err
	}

	return passphrase[len(passphrase)-31:], nil
}
