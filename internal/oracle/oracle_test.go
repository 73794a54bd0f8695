package oracle

import (
	"context"
	"crypto/ed25519"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"signing-oracle/internal/device"
	"signing-oracle/internal/device/devicetest"
	"signing-oracle/internal/tx"
	"signing-oracle/pkg/crypto_util"
	"signing-oracle/pkg/errno"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testPath  = "m/44'/626'/0'/0/0"
	rawDigest = "ffd8cd79deb956fa3c7d9be0f836f20ac84b140168a087a842be4760e40e2b1c"

	mainnetBlob = `{"networkId":"mainnet01","payload":{"exec":{"data":{},"code":"(coin.transfer \"83934c0f9b005f378ba3520f9dea952fb0a90e5aa36f1b5ff837d9b30c471790\" \"9790d119589a26114e1a42d92598b3f632551c566819ec48e0e8c54dae6ebb42\" 11.0)"}},"signers":[{"pubKey":"83934c0f9b005f378ba3520f9dea952fb0a90e5aa36f1b5ff837d9b30c471790","clist":[{"args":[],"name":"coin.GAS"},{"args":["83934c0f9b005f378ba3520f9dea952fb0a90e5aa36f1b5ff837d9b30c471790","9790d119589a26114e1a42d92598b3f632551c566819ec48e0e8c54dae6ebb42",11],"name":"coin.TRANSFER"}]}],"meta":{"creationTime":1634009214,"ttl":28800,"gasLimit":600,"chainId":"0","gasPrice":1.0e-5,"sender":"83934c0f9b005f378ba3520f9dea952fb0a90e5aa36f1b5ff837d9b30c471790"},"nonce":"\"2021-10-12T03:27:53.700Z\""}`
)

func newDevice(t *testing.T, opts devicetest.Options) *devicetest.Device {
	t.Helper()
	if opts.Mnemonic == "" {
		opts.Mnemonic = devicetest.ZemuMnemonic
	}
	d, err := devicetest.New(opts)
	require.NoError(t, err)
	return d
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func chain(id uint32) *uint32 { return &id }

func transferParams() tx.TransactionParams {
	return tx.TransactionParams{
		SigningPath:  testPath,
		Recipient:    "83934c0f9b005f378ba3520f9dea952fb0a90e5aa36f1b5ff837d9b30c471790",
		Amount:       "1.23",
		Network:      "testnet04",
		ChainID:      0,
		GasPrice:     "1.0e-6",
		GasLimit:     "2300",
		CreationTime: 1665647810,
		TTL:          "600",
		Nonce:        "2022-10-13 07:56:50.893257 UTC",
	}
}

// approveAsync 在另一个 goroutine 里批准下一个请求，模拟用户在设备上操作
func approveAsync(t *testing.T, ctx context.Context, d *devicetest.Device) <-chan *devicetest.Review {
	t.Helper()
	out := make(chan *devicetest.Review, 1)
	go func() {
		r, err := d.ApproveNext(ctx)
		if err == nil {
			out <- r
		}
		close(out)
	}()
	return out
}

func TestBlobSigningVerifies(t *testing.T) {
	ctx := testCtx(t)
	d := newDevice(t, devicetest.Options{})
	o := New(zap.NewNop())

	a, err := o.BeginBlob(ctx, d, testPath, []byte(mainnetBlob))
	require.NoError(t, err)
	// 请求已发出但尚未审批
	assert.Equal(t, StateAwaitingApproval, a.State())

	review := approveAsync(t, ctx, d)
	out := a.Await(ctx)
	require.NoError(t, out.Err)
	assert.True(t, out.Verified())
	assert.Equal(t, StateSigned, a.State())

	r := <-review
	require.NotNil(t, r)
	assert.Equal(t, devicetest.KindBlob, r.Kind)
	assert.Equal(t, mainnetBlob, string(r.Shown))

	want := crypto_util.Blake2b256([]byte(mainnetBlob))
	assert.Equal(t, want, out.Hash)
	pub, err := d.PublicKey(testPath)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(pub, want[:], out.Signature))
	assert.Equal(t, []string{"get_address", "sign"}, d.Calls())
}

func TestBlobChunkBoundaries(t *testing.T) {
	lengths := []int{204, 205, 206, 208, 209, 210, 211, 212, 213, 214, 215, 216, 217, 218, 219, 220, 435}
	for _, n := range lengths {
		require.LessOrEqual(t, n, len(mainnetBlob))
		msg := []byte(mainnetBlob[:n])

		ctx := testCtx(t)
		d := newDevice(t, devicetest.Options{})
		a, err := New(nil).BeginBlob(ctx, d, testPath, msg)
		require.NoError(t, err)
		assert.Equal(t, n, a.Message.Len())

		approveAsync(t, ctx, d)
		out := a.Await(ctx)
		require.NoError(t, out.Err, "length %d", n)
		assert.Equal(t, crypto_util.Blake2b256(msg), out.Hash, "length %d", n)
	}
}

func TestRawHashSigning(t *testing.T) {
	digest, err := crypto_util.ParseDigest(rawDigest)
	require.NoError(t, err)

	forms := map[string]string{
		"hex":       rawDigest,
		"base64url": crypto_util.EncodeHash(digest),
	}
	for name, text := range forms {
		t.Run(name, func(t *testing.T) {
			ctx := testCtx(t)
			d := newDevice(t, devicetest.Options{})
			d.ToggleBlindSigning()

			a, err := New(nil).BeginHash(ctx, d, testPath, text)
			require.NoError(t, err)
			approveAsync(t, ctx, d)
			out := a.Await(ctx)
			require.NoError(t, out.Err)
			assert.True(t, out.Verified())

			// 签名直接对摘要本身，不再哈希
			assert.Equal(t, rawDigest, crypto_util.HexHash(out.Hash))
			pub, _ := d.PublicKey(testPath)
			assert.True(t, ed25519.Verify(pub, digest[:], out.Signature))
			rehashed := crypto_util.Blake2b256(digest[:])
			assert.False(t, ed25519.Verify(pub, rehashed[:], out.Signature))
		})
	}
}

func TestRawHashRequiresBlindSigning(t *testing.T) {
	ctx := testCtx(t)
	d := newDevice(t, devicetest.Options{})

	a, err := New(nil).BeginHash(ctx, d, testPath, rawDigest)
	require.NoError(t, err)
	out := a.Await(ctx)

	assert.Equal(t, StateFailed, out.State)
	var devErr *device.DeviceError
	require.ErrorAs(t, out.Err, &devErr)
	assert.Equal(t, device.CodeDataInvalid, devErr.Code)
	assert.False(t, device.IsRejected(out.Err))
}

func TestRawHashRejectsMalformedDigest(t *testing.T) {
	d := newDevice(t, devicetest.Options{BlindSigning: true})
	_, err := New(nil).BeginHash(testCtx(t), d, testPath, "not-a-digest")
	assert.ErrorIs(t, err, errno.ErrDecoding)
	assert.Empty(t, d.Calls())
}

func TestStructuredTransfer(t *testing.T) {
	tests := []struct {
		name    string
		variant tx.Variant
		mutate  func(*tx.TransactionParams)
		call    string
	}{
		{"transfer", tx.Transfer{}, func(*tx.TransactionParams) {}, "sign_transfer"},
		{"transfer with module", tx.Transfer{}, func(p *tx.TransactionParams) { p.Namespace, p.Module = "free", "mytoken-123" }, "sign_transfer"},
		{"transfer create", tx.TransferCreate{}, func(p *tx.TransactionParams) { p.Amount = "23.67"; p.ChainID = 1 }, "sign_transfer_create"},
		{"transfer cross chain", tx.TransferCrossChain{}, func(p *tx.TransactionParams) { p.ChainID = 1; p.RecipientChainID = chain(2) }, "sign_transfer_cross_chain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testCtx(t)
			d := newDevice(t, devicetest.Options{})
			params := transferParams()
			tt.mutate(&params)

			a, err := New(nil).BeginTransfer(ctx, d, tt.variant, params)
			require.NoError(t, err)
			assert.Equal(t, StateAwaitingApproval, a.State())

			review := approveAsync(t, ctx, d)
			out := a.Await(ctx)
			require.NoError(t, out.Err)
			assert.True(t, out.Verified())

			// 设备回显的哈希与本地计算一致
			pub, _ := d.PublicKey(testPath)
			local, err := tx.Encode(tt.variant, params, pub)
			require.NoError(t, err)
			assert.Equal(t, local.Hash(), out.Hash)
			assert.Equal(t, local.Hash(), a.Hash)

			r := <-review
			require.NotNil(t, r)
			assert.Equal(t, local.String(), string(r.Shown))
			assert.Equal(t, []string{"get_address", tt.call}, d.Calls())
		})
	}
}

func TestLegacyTransfer(t *testing.T) {
	for _, v := range tx.Variants {
		t.Run(v.String(), func(t *testing.T) {
			ctx := testCtx(t)
			d := newDevice(t, devicetest.Options{})
			params := transferParams()
			params.RecipientChainID = chain(3)

			a, err := New(nil).BeginLegacyTransfer(ctx, d, v, params)
			require.NoError(t, err)
			approveAsync(t, ctx, d)
			out := a.Await(ctx)
			require.NoError(t, out.Err)
			assert.True(t, out.Verified())
			assert.Equal(t, ModeLegacyTransfer, out.Mode)
		})
	}
}

func TestCrossChainWithoutRecipientChainFailsBeforeDevice(t *testing.T) {
	d := newDevice(t, devicetest.Options{})
	o := New(nil)

	_, err := o.BeginTransfer(testCtx(t), d, tx.TransferCrossChain{}, transferParams())
	var encErr *tx.EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "encoding error: missing recipient_chainId", err.Error())

	_, err = o.BeginLegacyTransfer(testCtx(t), d, tx.TransferCrossChain{}, transferParams())
	assert.ErrorIs(t, err, errno.ErrEncoding)

	assert.Empty(t, d.Calls())
}

func TestRejectionIsDistinctFromVerificationFailure(t *testing.T) {
	ctx := testCtx(t)
	d := newDevice(t, devicetest.Options{})

	a, err := New(nil).BeginTransfer(ctx, d, tx.Transfer{}, transferParams())
	require.NoError(t, err)

	go func() { _, _ = d.RejectNext(ctx) }()
	out := a.Await(ctx)

	assert.Equal(t, StateRejected, out.State)
	assert.False(t, out.Verified())
	assert.True(t, device.IsRejected(out.Err))
	assert.NotErrorIs(t, out.Err, ErrSignatureInvalid)
	code, _ := errno.Decode(out.Err)
	assert.Equal(t, errno.ErrDeviceRejected.Code, code)

	// 终态，不会再变化
	again := a.Await(ctx)
	assert.Equal(t, out, again)
}

func TestTamperedDevice(t *testing.T) {
	tests := []struct {
		name string
		opts devicetest.Options
		want error
	}{
		{"corrupt signature", devicetest.Options{CorruptSignature: true}, ErrSignatureInvalid},
		{"foreign message", devicetest.Options{ForeignMessage: true}, ErrHashMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/structured", func(t *testing.T) {
			ctx := testCtx(t)
			d := newDevice(t, tt.opts)
			a, err := New(nil).BeginTransfer(ctx, d, tx.Transfer{}, transferParams())
			require.NoError(t, err)
			approveAsync(t, ctx, d)
			out := a.Await(ctx)
			assert.Equal(t, StateFailed, out.State)
			assert.ErrorIs(t, out.Err, tt.want)
		})
		t.Run(tt.name+"/legacy", func(t *testing.T) {
			ctx := testCtx(t)
			d := newDevice(t, tt.opts)
			a, err := New(nil).BeginLegacyTransfer(ctx, d, tx.TransferCreate{}, transferParams())
			require.NoError(t, err)
			approveAsync(t, ctx, d)
			out := a.Await(ctx)
			assert.Equal(t, StateFailed, out.State)
			assert.ErrorIs(t, out.Err, tt.want)
		})
	}

	t.Run("corrupt signature/blob", func(t *testing.T) {
		ctx := testCtx(t)
		d := newDevice(t, devicetest.Options{CorruptSignature: true})
		a, err := New(nil).BeginBlob(ctx, d, testPath, []byte(mainnetBlob))
		require.NoError(t, err)
		approveAsync(t, ctx, d)
		out := a.Await(ctx)
		assert.ErrorIs(t, out.Err, ErrSignatureInvalid)
	})
}

func TestHashMismatchDetails(t *testing.T) {
	ctx := testCtx(t)
	d := newDevice(t, devicetest.Options{ForeignMessage: true})
	a, err := New(nil).BeginTransfer(ctx, d, tx.Transfer{}, transferParams())
	require.NoError(t, err)
	approveAsync(t, ctx, d)
	out := a.Await(ctx)

	var mismatch *HashMismatchError
	require.ErrorAs(t, out.Err, &mismatch)
	assert.Equal(t, a.Hash, mismatch.Local)
	assert.NotEqual(t, mismatch.Local, mismatch.Echoed)
	code, _ := errno.Decode(out.Err)
	assert.Equal(t, errno.ErrHashMismatch.Code, code)
}

func TestAwaitHonoursCallerDeadline(t *testing.T) {
	ctx := testCtx(t)
	d := newDevice(t, devicetest.Options{})
	a, err := New(nil).BeginBlob(ctx, d, testPath, []byte("hello"))
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	out := a.Await(short)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
	assert.Equal(t, StateAwaitingApproval, out.State)
	assert.False(t, out.State.Terminal())

	// 之后审批仍然可以完成
	approveAsync(t, ctx, d)
	out = a.Await(ctx)
	require.NoError(t, out.Err)
	assert.True(t, out.Verified())
}

func TestParallelAttemptsOnIndependentSessions(t *testing.T) {
	const n = 8
	ctx := testCtx(t)
	o := New(nil)

	var wg sync.WaitGroup
	outcomes := make([]Outcome, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := devicetest.New(devicetest.Options{Mnemonic: devicetest.ZemuMnemonic})
			if err != nil {
				outcomes[i] = Outcome{Err: err}
				return
			}
			params := transferParams()
			params.Nonce = strings.Repeat("n", i+1)

			a, err := o.BeginTransfer(ctx, d, tx.Transfer{}, params)
			if err != nil {
				outcomes[i] = Outcome{Err: err}
				return
			}
			go func() { _, _ = d.ApproveNext(ctx) }()
			outcomes[i] = a.Await(ctx)
		}(i)
	}
	wg.Wait()

	seen := map[crypto_util.ContentHash]bool{}
	for i, out := range outcomes {
		require.NoError(t, out.Err, "attempt %d", i)
		assert.True(t, out.Verified())
		seen[out.Hash] = true
	}
	assert.Len(t, seen, n)
}

func TestShowAddress(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		ctx := testCtx(t)
		d := newDevice(t, devicetest.Options{})
		pub, _ := d.PublicKey(testPath)

		a, err := New(nil).ShowAddress(ctx, d, testPath, pub)
		require.NoError(t, err)
		approveAsync(t, ctx, d)
		out := a.Await(ctx)
		require.NoError(t, out.Err)
		assert.Equal(t, StateSigned, out.State)
		assert.Equal(t, []byte(pub), out.PublicKey)
	})

	t.Run("reject", func(t *testing.T) {
		ctx := testCtx(t)
		d := newDevice(t, devicetest.Options{})
		a, err := New(nil).ShowAddress(ctx, d, testPath, nil)
		require.NoError(t, err)
		go func() { _, _ = d.RejectNext(ctx) }()
		out := a.Await(ctx)
		assert.Equal(t, StateRejected, out.State)
		assert.True(t, device.IsRejected(out.Err))
	})

	t.Run("unexpected key", func(t *testing.T) {
		ctx := testCtx(t)
		d := newDevice(t, devicetest.Options{})
		a, err := New(nil).ShowAddress(ctx, d, testPath, make([]byte, 32))
		require.NoError(t, err)
		approveAsync(t, ctx, d)
		out := a.Await(ctx)
		assert.Equal(t, StateFailed, out.State)
		assert.ErrorIs(t, out.Err, errno.ErrAddressMismatch)
	})
}

func TestForeignPathFailsLocally(t *testing.T) {
	d := newDevice(t, devicetest.Options{})
	_, err := New(nil).BeginBlob(testCtx(t), d, "m/44'/60'/0'/0/0", []byte("x"))
	assert.ErrorIs(t, err, errno.ErrEncoding)
	assert.Empty(t, d.Calls())
}

type countingRecorder struct {
	mu       sync.Mutex
	started  int
	finished map[string]int
}

func (r *countingRecorder) AttemptStarted(string) {
	r.mu.Lock()
	r.started++
	r.mu.Unlock()
}

func (r *countingRecorder) AttemptFinished(_, state string, _ time.Duration) {
	r.mu.Lock()
	r.finished[state]++
	r.mu.Unlock()
}

func TestRecorder(t *testing.T) {
	ctx := testCtx(t)
	rec := &countingRecorder{finished: map[string]int{}}
	o := New(nil, WithRecorder(rec))

	d := newDevice(t, devicetest.Options{})
	a, err := o.BeginBlob(ctx, d, testPath, []byte("x"))
	require.NoError(t, err)
	approveAsync(t, ctx, d)
	a.Await(ctx)
	a.Await(ctx)

	d2 := newDevice(t, devicetest.Options{})
	a2, err := o.BeginHash(ctx, d2, testPath, rawDigest)
	require.NoError(t, err)
	a2.Await(ctx)

	assert.Equal(t, 2, rec.started)
	assert.Equal(t, 1, rec.finished["signed"])
	assert.Equal(t, 1, rec.finished["failed"])
}

func TestDeviceErrorsDuringIssuance(t *testing.T) {
	ctx := testCtx(t)
	d := newDevice(t, devicetest.Options{QueueSize: 1})
	o := New(nil)

	first, err := o.BeginBlob(ctx, d, testPath, []byte("a"))
	require.NoError(t, err)
	// 队列已满，第二个请求在发出时失败
	second, err := o.BeginBlob(ctx, d, testPath, []byte("b"))
	require.NoError(t, err)
	out := second.Await(ctx)
	assert.Equal(t, StateFailed, out.State)
	assert.False(t, errors.Is(out.Err, ErrSignatureInvalid))

	approveAsync(t, ctx, d)
	assert.True(t, first.Await(ctx).Verified())
}
