package lockmail

import (
	"context"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/go-resty/resty/v2"
)

func (c *Client) GetContact(ctx context.Context, contactID string) (Contact, error) {
	var res struct {
		Contact Contact
	}

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&res).Get("/contacts/v4/" + contactID)
	}); err != nil {
		return Contact{}, err
	}

	return res.Contact, nil
}

func (c *Client) GetContactEmails(ctx context.Context, email string) ([]ContactEmail, error) {
	var res struct {
		ContactEmails []ContactEmail
	}

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&res).SetQueryParam("Email", email).Get("/contacts/v4/emails")
	}); err != nil {
		return nil, err
	}

	return res.ContactEmails, nil
}

// GetContactSettings returns the crypto policy pinned in the contact for the
// given email, or empty settings if the email has no contact. Signed cards
// are verified with the given keyring.
func (c *Client) GetContactSettings(ctx context.Context, kr *crypto.KeyRing, email string) (ContactSettings, error) {
	emails, err := c.GetContactEmails(ctx, email)
	if err != nil {
		return ContactSettings{}, err
	}

	if len(emails) == 0 {
		return ContactSettings{}, nil
	}

	contact, err := c.GetContact(ctx, emails[0].ContactID)
	if err != nil {
		return ContactSettings{}, err
	}

	return contact.GetSettings(kr, email, CardTypeSigned)
}
