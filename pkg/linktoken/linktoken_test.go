package linktoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignerGenerateAndParse(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	uid, token, err := signer.Generate(42, PurposeConsent)
	require.NoError(t, err)
	require.NotEmpty(t, uid)
	require.NotEmpty(t, token)

	userID, err := signer.Parse(uid, token, PurposeConsent)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestSignerRejectsWrongPurpose(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	uid, token, err := signer.Generate(42, PurposeConsent)
	require.NoError(t, err)

	_, err = signer.Parse(uid, token, PurposePasswordReset)
	require.Error(t, err)
}

func TestSignerRejectsTamperedUID(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	_, token, err := signer.Generate(42, PurposeConsent)
	require.NoError(t, err)

	otherUID, _, err := signer.Generate(43, PurposeConsent)
	require.NoError(t, err)

	_, err = signer.Parse(otherUID, token, PurposeConsent)
	require.Error(t, err)
}

func TestSignerExpired(t *testing.T) {
	signer := NewSigner("secret", time.Millisecond*10)
	uid, token, err := signer.Generate(42, PurposePasswordReset)
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, err = signer.Parse(uid, token, PurposePasswordReset)
	require.Error(t, err)
}
