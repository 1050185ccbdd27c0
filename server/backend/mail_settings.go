package backend

import (
	"github.com/ProtonMail/gluon/rfc822"
	"github.com/lockmail/go-lockmail-api"
)

func (b *Backend) GetMailSettings(userID string) (lockmail.MailSettings, error) {
	var res lockmail.MailSettings

	if err := b.withAcc(userID, func(acc *account) error {
		res = acc.mailSettings

		return nil
	}); err != nil {
		return lockmail.MailSettings{}, err
	}

	return res, nil
}

func (b *Backend) SetSignExternalMessages(userID string, sign lockmail.SignExternalMessages) (lockmail.MailSettings, error) {
	var res lockmail.MailSettings

	if err := b.withAcc(userID, func(acc *account) error {
		acc.mailSettings.Sign = sign
		res = acc.mailSettings

		return nil
	}); err != nil {
		return lockmail.MailSettings{}, err
	}

	return res, nil
}

func (b *Backend) SetDraftMIMEType(userID string, mimeType rfc822.MIMEType) (lockmail.MailSettings, error) {
	var res lockmail.MailSettings

	if err := b.withAcc(userID, func(acc *account) error {
		acc.mailSettings.DraftMIMEType = mimeType
		res = acc.mailSettings

		return nil
	}); err != nil {
		return lockmail.MailSettings{}, err
	}

	return res, nil
}

func (b *Backend) SetDefaultPGPScheme(userID string, scheme lockmail.EncryptionScheme) (lockmail.MailSettings, error) {
	var res lockmail.MailSettings

	if err := b.withAcc(userID, func(acc *account) error {
		acc.mailSettings.PGPScheme = scheme
		res = acc.mailSettings

		return nil
	}); err != nil {
		return lockmail.MailSettings{}, err
	}

	return res, nil
}
