package lockmail_test

import (
	"testing"

	"github.com/lockmail/go-lockmail-api"
)

func TestClassifyScheme(t *testing.T) {
	tests := []struct {
		name          string
		recipientType lockmail.RecipientType
		hasKey        bool
		canEncrypt    bool
		mimePreferred bool
		eoRequested   bool
		want          lockmail.EncryptionScheme
	}{
		{
			name:          "internal",
			recipientType: lockmail.RecipientTypeInternal,
			hasKey:        true,
			canEncrypt:    true,
			want:          lockmail.InternalScheme,
		},
		{
			name:          "internal wins over every other capability",
			recipientType: lockmail.RecipientTypeInternal,
			hasKey:        true,
			canEncrypt:    true,
			mimePreferred: true,
			eoRequested:   true,
			want:          lockmail.InternalScheme,
		},
		{
			name:          "external with usable key and MIME preference",
			recipientType: lockmail.RecipientTypeExternal,
			hasKey:        true,
			canEncrypt:    true,
			mimePreferred: true,
			want:          lockmail.PGPMIMEScheme,
		},
		{
			name:          "external with MIME preference but no key",
			recipientType: lockmail.RecipientTypeExternal,
			mimePreferred: true,
			want:          lockmail.ClearMIMEScheme,
		},
		{
			name:          "external with pinned but disabled key and MIME preference",
			recipientType: lockmail.RecipientTypeExternal,
			hasKey:        true,
			canEncrypt:    false,
			mimePreferred: true,
			want:          lockmail.ClearMIMEScheme,
		},
		{
			name:          "external with usable key",
			recipientType: lockmail.RecipientTypeExternal,
			hasKey:        true,
			canEncrypt:    true,
			want:          lockmail.PGPInlineScheme,
		},
		{
			name:          "external keyless with outside password",
			recipientType: lockmail.RecipientTypeExternal,
			eoRequested:   true,
			want:          lockmail.EncryptedOutsideScheme,
		},
		{
			name:          "usable key wins over outside password",
			recipientType: lockmail.RecipientTypeExternal,
			hasKey:        true,
			canEncrypt:    true,
			eoRequested:   true,
			want:          lockmail.PGPInlineScheme,
		},
		{
			name:          "external with pinned but disabled key",
			recipientType: lockmail.RecipientTypeExternal,
			hasKey:        true,
			canEncrypt:    false,
			want:          lockmail.ClearScheme,
		},
		{
			name:          "external with nothing",
			recipientType: lockmail.RecipientTypeExternal,
			want:          lockmail.ClearScheme,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lockmail.ClassifyScheme(tt.recipientType, tt.hasKey, tt.canEncrypt, tt.mimePreferred, tt.eoRequested); got != tt.want {
				t.Errorf("ClassifyScheme() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestClassifyScheme_Totality pins the scheme for every capability
// combination so a reordering of the rules cannot slip through.
func TestClassifyScheme_Totality(t *testing.T) {
	bools := []bool{false, true}

	// Internal recipients get InternalScheme no matter what else is set.
	for _, hasKey := range bools {
		for _, canEncrypt := range bools {
			for _, mimePreferred := range bools {
				for _, eoRequested := range bools {
					got := lockmail.ClassifyScheme(lockmail.RecipientTypeInternal, hasKey, canEncrypt, mimePreferred, eoRequested)

					if got != lockmail.InternalScheme {
						t.Errorf(
							"ClassifyScheme(internal, %v, %v, %v, %v) = %v, want %v",
							hasKey, canEncrypt, mimePreferred, eoRequested, got, lockmail.InternalScheme,
						)
					}
				}
			}
		}
	}

	// The sixteen external combinations, spelled out.
	tests := []struct {
		hasKey, canEncrypt, mimePreferred, eoRequested bool

		want lockmail.EncryptionScheme
	}{
		{false, false, false, false, lockmail.ClearScheme},
		{false, false, false, true, lockmail.EncryptedOutsideScheme},
		{false, false, true, false, lockmail.ClearMIMEScheme},
		{false, false, true, true, lockmail.ClearMIMEScheme},
		{false, true, false, false, lockmail.ClearScheme},
		{false, true, false, true, lockmail.EncryptedOutsideScheme},
		{false, true, true, false, lockmail.ClearMIMEScheme},
		{false, true, true, true, lockmail.ClearMIMEScheme},
		{true, false, false, false, lockmail.ClearScheme},
		{true, false, false, true, lockmail.EncryptedOutsideScheme},
		{true, false, true, false, lockmail.ClearMIMEScheme},
		{true, false, true, true, lockmail.ClearMIMEScheme},
		{true, true, false, false, lockmail.PGPInlineScheme},
		{true, true, false, true, lockmail.PGPInlineScheme},
		{true, true, true, false, lockmail.PGPMIMEScheme},
		{true, true, true, true, lockmail.PGPMIMEScheme},
	}

	for _, tt := range tests {
		got := lockmail.ClassifyScheme(lockmail.RecipientTypeExternal, tt.hasKey, tt.canEncrypt, tt.mimePreferred, tt.eoRequested)

		if got != tt.want {
			t.Errorf(
				"ClassifyScheme(external, %v, %v, %v, %v) = %v, want %v",
				tt.hasKey, tt.canEncrypt, tt.mimePreferred, tt.eoRequested, got, tt.want,
			)
		}
	}
}
