package devicetest

import (
	"context"
	"testing"
	"time"

	"signing-oracle/internal/device"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestWaitsForReview(t *testing.T) {
	d, err := New(Options{Mnemonic: ZemuMnemonic})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := d.Sign(ctx, "m/44'/626'/0'/0/0", []byte("msg"))
	require.NoError(t, err)

	select {
	case <-p.Done():
		t.Fatal("request resolved before review")
	default:
	}

	r, err := d.NextReview(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindBlob, r.Kind)
	r.Reject()
	r.Approve() // 第二次操作无效

	_, err = p.Wait(ctx)
	assert.True(t, device.IsRejected(err))
}

func TestInvalidPath(t *testing.T) {
	d, err := New(Options{})
	require.NoError(t, err)

	p, err := d.GetAddressAndPubKey(context.Background(), "m/44'/1'/0'", false)
	require.NoError(t, err)
	_, err = p.Wait(context.Background())

	var devErr *device.DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, device.CodeDataInvalid, devErr.Code)
}

func TestSameMnemonicSameKeys(t *testing.T) {
	a, err := New(Options{Mnemonic: ZemuMnemonic})
	require.NoError(t, err)
	b, err := New(Options{Mnemonic: ZemuMnemonic})
	require.NoError(t, err)

	ka, err := a.PublicKey("m/44'/626'/0'/0/0")
	require.NoError(t, err)
	kb, err := b.PublicKey("m/44'/626'/0'/0/0")
	require.NoError(t, err)
	assert.Equal(t, ka, kb)
}

func TestBlindSigningToggle(t *testing.T) {
	d, err := New(Options{Mnemonic: ZemuMnemonic})
	require.NoError(t, err)
	ctx := context.Background()
	const digest = "ffd8cd79deb956fa3c7d9be0f836f20ac84b140168a087a842be4760e40e2b1c"

	p, err := d.SignHash(ctx, "m/44'/626'/0'/0/0", digest)
	require.NoError(t, err)
	_, err = p.Wait(ctx)
	assert.Error(t, err)

	d.ToggleBlindSigning()
	p, err = d.SignHash(ctx, "m/44'/626'/0'/0/0", digest)
	require.NoError(t, err)
	r, err := d.ApproveNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindHash, r.Kind)
	assert.Equal(t, digest, string(r.Shown))

	resp, err := p.Wait(ctx)
	require.NoError(t, err)
	assert.Len(t, resp.Signature, 64)
}
