package backend

import (
	"fmt"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
	"github.com/lockmail/go-lockmail-api"
)

type contact struct {
	contactID string
	userID    string
	name      string
	cards     lockmail.Cards
	emails    []string
}

func (b *Backend) CreateContact(userID, name string, cards lockmail.Cards) (string, error) {
	b.conLock.Lock()
	defer b.conLock.Unlock()

	emails, err := cardEmails(cards)
	if err != nil {
		return "", err
	}

	con := &contact{
		contactID: uuid.NewString(),
		userID:    userID,
		name:      name,
		cards:     cards,
		emails:    emails,
	}

	b.contacts[con.contactID] = con

	if err := b.withAcc(userID, func(acc *account) error {
		acc.contactIDs = append(acc.contactIDs, con.contactID)

		return nil
	}); err != nil {
		return "", err
	}

	return con.contactID, nil
}

func (b *Backend) GetContact(userID, contactID string) (lockmail.Contact, error) {
	b.conLock.Lock()
	defer b.conLock.Unlock()

	con, ok := b.contacts[contactID]
	if !ok || con.userID != userID {
		return lockmail.Contact{}, fmt.Errorf("contact %s does not exist", contactID)
	}

	return toContact(con), nil
}

func (b *Backend) GetContactEmails(userID, email string) ([]lockmail.ContactEmail, error) {
	b.conLock.Lock()
	defer b.conLock.Unlock()

	var res []lockmail.ContactEmail

	for _, con := range b.contacts {
		if con.userID != userID {
			continue
		}

		for _, conEmail := range con.emails {
			if email != "" && !strings.EqualFold(conEmail, email) {
				continue
			}

			res = append(res, lockmail.ContactEmail{
				ID:        uuid.NewString(),
				Name:      con.name,
				Email:     conEmail,
				ContactID: con.contactID,
			})
		}
	}

	return res, nil
}

func toContact(con *contact) lockmail.Contact {
	return lockmail.Contact{
		ContactMetadata: lockmail.ContactMetadata{
			ID:   con.contactID,
			Name: con.name,
		},

		ContactCards: lockmail.ContactCards{
			Cards: con.cards,
		},
	}
}

func cardEmails(cards lockmail.Cards) ([]string, error) {
	var emails []string

	for _, card := range cards {
		dec, err := vcard.NewDecoder(strings.NewReader(card.Data)).Decode()
		if err != nil {
			return nil, err
		}

		for _, field := range dec[vcard.FieldEmail] {
			emails = append(emails, field.Value)
		}
	}

	return emails, nil
}
