package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/shamank/zg-compute-go/internal/testutil/fakebroker"
	"github.com/shamank/zg-compute-go/internal/testutil/fakeprovider"
	"github.com/shamank/zg-compute-go/pkg/config"
	"github.com/shamank/zg-compute-go/pkg/inference"
	"github.com/shamank/zg-compute-go/pkg/sdk"
)

const testProvider = "0xf07240Efa67755B5311bc75784a061eDB47165Dd"

var configEnv = []string{
	config.EnvPrivateKey, config.EnvRPCURL, config.EnvProviderAddress, config.EnvInitialBalance,
	config.EnvMaxRetries, config.EnvRetryDelay, config.EnvMessageContent, config.EnvLedgerContract,
	config.EnvServingContract, config.EnvIpfsURL, config.EnvLighthouseURL, config.EnvFeePattern, config.EnvDebug,
}

// clearConfigEnv unsets every config variable until the current test ends.
func clearConfigEnv() {
	for _, name := range configEnv {
		if v, ok := os.LookupEnv(name); ok {
			Expect(os.Unsetenv(name)).To(Succeed())
			DeferCleanup(os.Setenv, name, v)
		}
	}
}

func setEnv(name, value string) {
	Expect(os.Setenv(name, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, name)
}

type harness struct {
	broker *fakebroker.Broker
	opened *config.Config
	out    *bytes.Buffer
}

func newHarness(endpoint string) *harness {
	return &harness{
		broker: fakebroker.New(common.HexToAddress("0x1111111111111111111111111111111111111111")).
			WithService(testProvider, endpoint, "llama-3.3-70b-instruct"),
		out: &bytes.Buffer{},
	}
}

func (h *harness) deps() deps {
	return deps{
		openBroker: func(cfg *config.Config) (sdk.Broker, error) {
			h.opened = cfg
			return h.broker, nil
		},
		newCompleter: func(*config.Config) inference.Completer {
			return inference.NewClient(5 * time.Second)
		},
	}
}

func (h *harness) execute(args ...string) error {
	cmd := newRootCmd(h.deps())
	cmd.SetOut(h.out)
	cmd.SetErr(h.out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(GinkgoT().TempDir(), "missing.env")}, args...))
	return cmd.ExecuteContext(context.Background())
}

var _ = Describe("Root Command", func() {
	var (
		srv *fakeprovider.Server
		h   *harness
	)

	BeforeEach(func() {
		clearConfigEnv()
	})

	AfterEach(func() {
		if srv != nil {
			srv.Close()
			srv = nil
		}
	})

	start := func(replies ...fakeprovider.Reply) {
		srv = fakeprovider.Start(replies...)
		h = newHarness(srv.URL)
	}

	It("runs the demo end to end", func() {
		start(fakeprovider.Content("I can help."))

		Expect(h.execute("--provider", testProvider, "--retry-delay", "1ms")).To(Succeed())

		Expect(h.out.String()).To(ContainSubstring("Ledger not found, creating with 0.1 A0GI"))
		Expect(h.out.String()).To(ContainSubstring("Response (attempt 1): I can help."))
		Expect(h.broker.Closed).To(BeTrue())
		Expect(srv.Requests()).To(HaveLen(1))
		Expect(srv.Requests()[0].Messages[0].Content).To(Equal(config.DefaultMessage))
	})

	It("settles an owed fee and retries", func() {
		start(
			fakeprovider.Error(http.StatusPaymentRequired, "settleFee: expected 0.0042 A0GI"),
			fakeprovider.Content("paid"),
		)

		Expect(h.execute("--retry-delay", "1ms")).To(Succeed())

		Expect(h.broker.Settled).To(HaveLen(1))
		Expect(h.broker.Settled[0].String()).To(Equal("0.0042"))
		Expect(h.out.String()).To(ContainSubstring("Response (attempt 2): paid"))
	})

	It("reports exhausted retries without failing", func() {
		start(fakeprovider.Error(http.StatusServiceUnavailable, "overloaded"))

		Expect(h.execute("--max-retries", "2", "--retry-delay", "1ms")).To(Succeed())

		Expect(srv.Requests()).To(HaveLen(2))
		Expect(h.out.String()).To(ContainSubstring("Inference failed after 2 attempt(s)"))
	})

	Describe("configuration precedence", func() {
		It("prefers environment over the config file", func() {
			start(fakeprovider.Content("ok"))
			path := filepath.Join(GinkgoT().TempDir(), "zg.yaml")
			Expect(os.WriteFile(path, []byte("message: from file\nretry_delay: 1ms\n"), 0o600)).To(Succeed())
			setEnv(config.EnvMessageContent, "from env")

			Expect(h.execute("--config", path)).To(Succeed())

			Expect(srv.Requests()[0].Messages[0].Content).To(Equal("from env"))
			Expect(h.opened.RetryDelay).To(Equal(time.Millisecond))
		})

		It("prefers flags over the environment", func() {
			start(fakeprovider.Content("unused"))
			setEnv(config.EnvMaxRetries, "5")

			Expect(h.execute("--max-retries", "0")).To(Succeed())

			Expect(srv.Requests()).To(BeEmpty())
			Expect(h.opened.MaxRetries).To(Equal(0))
		})

		It("keeps MAX_RETRIES=0 from the environment", func() {
			start(fakeprovider.Content("unused"))
			setEnv(config.EnvMaxRetries, "0")

			Expect(h.execute()).To(Succeed())
			Expect(srv.Requests()).To(BeEmpty())
			Expect(h.out.String()).To(ContainSubstring("Inference failed after 0 attempt(s)"))
		})
	})

	Describe("failures", func() {
		It("rejects invalid settings before opening the broker", func() {
			start()
			err := h.execute("--max-retries", "-1")
			Expect(err).To(MatchError(ContainSubstring("invalid config")))
			Expect(h.opened).To(BeNil())
		})

		It("rejects a bad config file", func() {
			start()
			Expect(h.execute("--config", filepath.Join(GinkgoT().TempDir(), "nope.yaml"))).NotTo(Succeed())
		})

		It("fails when the broker cannot be created", func() {
			start()
			d := h.deps()
			d.openBroker = func(*config.Config) (sdk.Broker, error) { return nil, sdk.ErrNoPrivateKey }
			cmd := newRootCmd(d)
			cmd.SetOut(h.out)
			cmd.SetArgs([]string{"--env-file", filepath.Join(GinkgoT().TempDir(), "x.env")})

			err := cmd.Execute()
			Expect(errors.Is(err, sdk.ErrNoPrivateKey)).To(BeTrue())
		})

		It("fails when the ledger cannot be created", func() {
			start()
			h.broker.AddLedgerErr = errors.New("insufficient funds for gas")
			Expect(h.execute()).To(MatchError(ContainSubstring("create ledger")))
		})

		It("fails when the provider is unknown", func() {
			start()
			Expect(h.execute("--provider", "0x2222222222222222222222222222222222222222")).To(MatchError(ContainSubstring("service metadata")))
		})
	})

	It("loads variables from a .env file", func() {
		start(fakeprovider.Content("ok"))
		envPath := filepath.Join(GinkgoT().TempDir(), ".env")
		Expect(os.WriteFile(envPath, []byte("MESSAGE_CONTENT=from dotenv\nRETRY_DELAY=1\n"), 0o600)).To(Succeed())
		DeferCleanup(os.Unsetenv, config.EnvMessageContent)
		DeferCleanup(os.Unsetenv, config.EnvRetryDelay)

		Expect(h.execute("--env-file", envPath)).To(Succeed())
		Expect(srv.Requests()[0].Messages[0].Content).To(Equal("from dotenv"))
		Expect(h.opened.RetryDelay).To(Equal(time.Millisecond))
	})
})
