package lockmail

import (
	"bytes"
	"context"
	"io"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/go-resty/resty/v2"
)

func (c *Client) GetAttachment(ctx context.Context, attachmentID string) ([]byte, error) {
	return c.attPool().ProcessOne(ctx, attachmentID)
}

func (c *Client) GetAttachmentInto(ctx context.Context, attachmentID string, reader io.ReaderFrom) error {
	res, err := c.doRes(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetDoNotParseResponse(true).Get("/mail/v4/attachments/" + attachmentID)
	})
	if err != nil {
		return err
	}

	defer res.RawBody().Close()

	if _, err := reader.ReadFrom(res.RawBody()); err != nil {
		return err
	}

	return nil
}

// UploadAttachment encrypts the given body with the address keyring, signs it
// detached, and uploads key packet, data packet and signature as separate
// multipart fields.
func (c *Client) UploadAttachment(ctx context.Context, addrKR *crypto.KeyRing, req CreateAttachmentReq) (Attachment, error) {
	var res struct {
		Attachment Attachment
	}

	enc, err := addrKR.EncryptAttachment(crypto.NewPlainMessage(req.Body), req.Filename)
	if err != nil {
		return Attachment{}, err
	}

	sig, err := addrKR.SignDetached(crypto.NewPlainMessage(req.Body))
	if err != nil {
		return Attachment{}, err
	}

	sigData, err := sig.GetArmored()
	if err != nil {
		return Attachment{}, err
	}

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&res).SetMultipartFormData(map[string]string{
			"MessageID":   req.MessageID,
			"Filename":    req.Filename,
			"MIMEType":    string(req.MIMEType),
			"Disposition": string(req.Disposition),
			"ContentID":   req.ContentID,
		}).SetMultipartFields(
			&resty.MultipartField{
				Param:       "KeyPackets",
				FileName:    "blob",
				ContentType: "application/octet-stream",
				Reader:      bytes.NewReader(enc.GetBinaryKeyPacket()),
			},
			&resty.MultipartField{
				Param:       "DataPacket",
				FileName:    "blob",
				ContentType: "application/octet-stream",
				Reader:      bytes.NewReader(enc.GetBinaryDataPacket()),
			},
			&resty.MultipartField{
				Param:       "Signature",
				FileName:    "blob",
				ContentType: "application/octet-stream",
				Reader:      bytes.NewReader([]byte(sigData)),
			},
		).Post("/mail/v4/attachments")
	}); err != nil {
		return Attachment{}, err
	}

	return res.Attachment, nil
}

func (c *Client) getAttachment(ctx context.Context, attachmentID string) ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := c.GetAttachmentInto(ctx, attachmentID, buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
