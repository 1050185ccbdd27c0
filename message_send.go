package lockmail

import (
	"context"
	"errors"
	"fmt"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/go-resty/resty/v2"
)

func (c *Client) CreateDraft(ctx context.Context, addrKR *crypto.KeyRing, req CreateDraftReq) (Message, error) {
	var res struct {
		Message Message
	}

	enc, err := addrKR.Encrypt(crypto.NewPlainMessageFromString(req.Message.Body), addrKR)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encrypt draft body: %w", err)
	}

	arm, err := enc.GetArmored()
	if err != nil {
		return Message{}, err
	}

	req.Message.Body = arm

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).SetResult(&res).Post("/mail/v4/messages")
	}); err != nil {
		return Message{}, err
	}

	return res.Message, nil
}

func (c *Client) UpdateDraft(ctx context.Context, draftID string, addrKR *crypto.KeyRing, req UpdateDraftReq) (Message, error) {
	var res struct {
		Message Message
	}

	enc, err := addrKR.Encrypt(crypto.NewPlainMessageFromString(req.Message.Body), addrKR)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encrypt draft body: %w", err)
	}

	arm, err := enc.GetArmored()
	if err != nil {
		return Message{}, err
	}

	req.Message.Body = arm

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).SetResult(&res).Put("/mail/v4/messages/" + draftID)
	}); err != nil {
		return Message{}, err
	}

	return res.Message, nil
}

// SendDraft submits the packaged draft for delivery. At most one send may be
// in flight per draft; a concurrent attempt fails with ErrSendInFlight
// rather than racing toward a duplicate delivery. A rejection for a bad
// recipient comes back as a recoverable *SendRejectedError with the draft
// left intact; a duplicate-send response is treated as success.
func (c *Client) SendDraft(ctx context.Context, draftID string, req SendDraftReq) (Message, error) {
	c.sendingLock.Lock()

	if _, ok := c.sending[draftID]; ok {
		c.sendingLock.Unlock()
		return Message{}, ErrSendInFlight
	}

	c.sending[draftID] = struct{}{}
	c.sendingLock.Unlock()

	defer func() {
		c.sendingLock.Lock()
		delete(c.sending, draftID)
		c.sendingLock.Unlock()
	}()

	var res struct {
		Sent Message
	}

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).SetResult(&res).Post("/mail/v4/messages/" + draftID)
	}); err != nil {
		apiErr := new(APIError)

		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case AlreadySentCode:
				return c.GetMessage(ctx, draftID)

			case InvalidRecipientCode:
				return Message{}, &SendRejectedError{
					Code:        apiErr.Code,
					Message:     apiErr.Message,
					Recoverable: true,
				}
			}
		}

		return Message{}, err
	}

	return res.Sent, nil
}
