package lockmail

// ClassifyScheme maps a recipient's resolved capabilities to the single
// encryption scheme used for that recipient. The rules are ordered; the
// first match wins:
//
//  1. internal recipients always use InternalScheme (the server wraps
//     nothing; the client wraps the body key with the recipient key),
//  2. external + MIME preferred + usable key: PGPMIMEScheme,
//  3. external + MIME preferred (no usable key): ClearMIMEScheme,
//  4. external + usable key: PGPInlineScheme,
//  5. external + outside password set: EncryptedOutsideScheme,
//  6. otherwise the body goes out in the clear.
//
// A "usable key" means a key is present and the recipient is flagged as
// encryption-capable; a pinned-but-disabled key never selects an encrypting
// scheme. The function is total: every input combination yields a scheme.
func ClassifyScheme(recipientType RecipientType, hasKey, canEncrypt, mimePreferred, eoRequested bool) EncryptionScheme {
	if recipientType == RecipientTypeInternal {
		return InternalScheme
	}

	if mimePreferred && hasKey && canEncrypt {
		return PGPMIMEScheme
	}

	if mimePreferred {
		return ClearMIMEScheme
	}

	if hasKey && canEncrypt {
		return PGPInlineScheme
	}

	if eoRequested {
		return EncryptedOutsideScheme
	}

	return ClearScheme
}
