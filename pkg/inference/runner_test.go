package inference

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shamank/zg-compute-go/internal/testutil/fakebroker"
	"github.com/shamank/zg-compute-go/internal/testutil/fakeprovider"
	"github.com/shamank/zg-compute-go/pkg/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const provider = "0xf07240Efa67755B5311bc75784a061eDB47165Dd"

var target = Target{Provider: provider, Endpoint: "http://provider.test/v1/proxy", Model: "llama"}

type reply struct {
	resp *model.ChatCompletionResponse
	err  error
}

// scripted is a Completer replaying replies in order and recording the
// headers it was given.
type scripted struct {
	replies []reply
	headers []map[string]string
}

func (s *scripted) Complete(_ context.Context, _, _, _ string, headers map[string]string) (*model.ChatCompletionResponse, error) {
	s.headers = append(s.headers, headers)
	i := len(s.headers) - 1
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	return s.replies[i].resp, s.replies[i].err
}

func ok(text string) reply {
	return reply{resp: &model.ChatCompletionResponse{Choices: []model.Choice{{Message: model.ChatMessage{Content: text}}}}}
}

func failed(msg string) reply {
	return reply{resp: &model.ChatCompletionResponse{Error: msg}}
}

func newTestRunner(t *testing.T, b Broker, c Completer, retries int) (*Runner, *[]time.Duration) {
	t.Helper()
	r, err := NewRunner(b, c, Options{MaxRetries: retries, RetryDelay: 2 * time.Second})
	require.NoError(t, err)
	var slept []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return r, &slept
}

func newBroker() *fakebroker.Broker {
	return fakebroker.New(common.HexToAddress("0x1111111111111111111111111111111111111111"))
}

func TestRun_SucceedsOnAttemptK(t *testing.T) {
	for k := 1; k <= 3; k++ {
		replies := make([]reply, 0, k)
		for i := 1; i < k; i++ {
			replies = append(replies, failed("model busy"))
		}
		replies = append(replies, ok("hi there"))

		b := newBroker()
		c := &scripted{replies: replies}
		r, slept := newTestRunner(t, b, c, 3)

		res, err := r.Run(context.Background(), target, "hello")
		require.NoError(t, err)
		assert.True(t, res.Succeeded)
		assert.Equal(t, "hi there", res.Content)
		assert.Equal(t, k, res.Attempts)
		assert.Len(t, c.headers, k)
		assert.Len(t, *slept, k-1)
	}
}

func TestRun_SettlesOwedFeeOnceBeforeRetry(t *testing.T) {
	b := newBroker()
	c := &scripted{replies: []reply{
		failed("settleFee failed: expected 0.0042 A0GI, got 0.001 A0GI"),
		ok("answer"),
	}}
	r, _ := newTestRunner(t, b, c, 3)

	res, err := r.Run(context.Background(), target, "hello")
	require.NoError(t, err)
	require.True(t, res.Succeeded)
	assert.Equal(t, 2, res.Attempts)

	require.Len(t, b.Settled, 1)
	assert.True(t, b.Settled[0].Equal(decimal.RequireFromString("0.0042")))
	assert.Equal(t, "0.0042", b.Settled[0].String())
	assert.Equal(t, b.Settled, res.Settlements)
}

func TestRun_SettleFailureDoesNotStopLoop(t *testing.T) {
	b := newBroker()
	b.SettleErr = errors.New("transfer reverted")
	c := &scripted{replies: []reply{failed("expected 1.5 A0GI"), ok("done")}}
	r, _ := newTestRunner(t, b, c, 2)

	res, err := r.Run(context.Background(), target, "hello")
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.Len(t, b.Settled, 1)
}

func TestRun_BrokerAlwaysFails(t *testing.T) {
	b := newBroker()
	b.HeadersErr = errors.New("rpc unreachable")
	c := &scripted{replies: []reply{ok("never")}}
	r, slept := newTestRunner(t, b, c, 3)

	res, err := r.Run(context.Background(), target, "hello")
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, b.HeaderCalls)
	assert.Empty(t, c.headers)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, *slept)
}

func TestRun_TransportErrorsExhaustAttempts(t *testing.T) {
	b := newBroker()
	c := &scripted{replies: []reply{{err: errors.New("connection refused")}}}
	r, _ := newTestRunner(t, b, c, 4)

	res, err := r.Run(context.Background(), target, "hello")
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
	assert.Equal(t, 4, res.Attempts)
	assert.Empty(t, b.Settled)
}

func TestRun_ZeroRetries(t *testing.T) {
	b := newBroker()
	c := &scripted{replies: []reply{ok("never")}}
	r, slept := newTestRunner(t, b, c, 0)

	res, err := r.Run(context.Background(), target, "hello")
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
	assert.Zero(t, res.Attempts)
	assert.Zero(t, b.HeaderCalls)
	assert.Empty(t, c.headers)
	assert.Empty(t, *slept)
}

func TestRun_FreshHeadersEveryAttempt(t *testing.T) {
	b := newBroker()
	c := &scripted{replies: []reply{failed("busy"), failed("expected 0.1 A0GI"), ok("fine")}}
	r, _ := newTestRunner(t, b, c, 3)

	_, err := r.Run(context.Background(), target, "hello")
	require.NoError(t, err)

	require.Len(t, c.headers, 3)
	assert.Equal(t, 3, b.HeaderCalls)
	seen := map[string]bool{}
	for _, h := range c.headers {
		assert.False(t, seen[h["Nonce"]], "header set reused")
		seen[h["Nonce"]] = true
	}
}

func TestRun_UnmatchedErrorIsPlainRetry(t *testing.T) {
	b := newBroker()
	c := &scripted{replies: []reply{failed("insufficient balance"), failed("expected A0GI"), {resp: nil}}}
	r, _ := newTestRunner(t, b, c, 3)

	res, err := r.Run(context.Background(), target, "hello")
	require.NoError(t, err)
	assert.False(t, res.Succeeded)
	assert.Empty(t, b.Settled)
}

func TestRun_ContextCancelledDuringDelay(t *testing.T) {
	b := newBroker()
	c := &scripted{replies: []reply{failed("busy")}}
	r, err := NewRunner(b, c, Options{MaxRetries: 5, RetryDelay: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	res, err := r.Run(ctx, target, "hello")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.Attempts)
}

func TestRun_CustomFeePattern(t *testing.T) {
	b := newBroker()
	c := &scripted{replies: []reply{failed("owed=7 neuron-A0GI"), ok("x")}}
	r, err := NewRunner(b, c, Options{MaxRetries: 2, FeePattern: `owed=([0-9.]+)`})
	require.NoError(t, err)

	res, err := r.Run(context.Background(), target, "hello")
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	require.Len(t, b.Settled, 1)
	assert.Equal(t, "7", b.Settled[0].String())
}

func TestNewRunner_Validation(t *testing.T) {
	c := &scripted{replies: []reply{ok("x")}}

	_, err := NewRunner(nil, c, Options{MaxRetries: 1})
	assert.Error(t, err)
	_, err = NewRunner(newBroker(), nil, Options{MaxRetries: 1})
	assert.Error(t, err)
	_, err = NewRunner(newBroker(), c, Options{MaxRetries: -1})
	assert.Error(t, err)
	_, err = NewRunner(newBroker(), c, Options{MaxRetries: 1, RetryDelay: -time.Second})
	assert.Error(t, err)
	_, err = NewRunner(newBroker(), c, Options{MaxRetries: 1, FeePattern: "("})
	assert.Error(t, err)
	_, err = NewRunner(newBroker(), c, Options{MaxRetries: 1, FeePattern: "expected"})
	assert.Error(t, err)
}

func TestRun_AgainstHTTPProvider(t *testing.T) {
	srv := fakeprovider.Start(
		fakeprovider.Error(http.StatusPaymentRequired, "settleFee: expected 0.0042 A0GI"),
		fakeprovider.Content("served"),
	)
	defer srv.Close()

	b := newBroker()
	r, slept := newTestRunner(t, b, NewClient(5*time.Second), 3)

	res, err := r.Run(context.Background(), Target{Provider: provider, Endpoint: srv.URL, Model: "llama"}, "hello")
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.Equal(t, "served", res.Content)
	assert.Len(t, *slept, 1)

	headers := srv.Headers()
	require.Len(t, headers, 2)
	assert.Equal(t, "1", headers[0].Get("Nonce"))
	assert.Equal(t, "2", headers[1].Get("Nonce"))
	require.Len(t, b.Settled, 1)
	assert.Equal(t, "0.0042", b.Settled[0].String())
}
