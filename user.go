package lockmail

import (
	"context"

	"github.com/go-resty/resty/v2"
)

func (c *Client) GetUser(ctx context.Context) (User, error) {
	var res struct {
		User User
	}

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&res).Get("/core/v4/users")
	}); err != nil {
		return User{}, err
	}

	return res.User, nil
}

func (c *Client) GetKeySalts(ctx context.Context) (KeySalts, error) {
	var res struct {
		KeySalts KeySalts
	}

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&res).Get("/core/v4/keys/salts")
	}); err != nil {
		return nil, err
	}

	return res.KeySalts, nil
}
