package main

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/shamank/zg-compute-go/internal/testutil/fakebroker"
	"github.com/shamank/zg-compute-go/pkg/config"
	"github.com/shamank/zg-compute-go/pkg/sdk"
)

// checkingBroker adds Healthcheck to the fake broker.
type checkingBroker struct {
	*fakebroker.Broker
	down map[string]bool
}

func (b *checkingBroker) Healthcheck(_ context.Context, provider string) (map[string]any, error) {
	if b.down[provider] {
		return nil, errors.New("heartbeat failed with: 502")
	}
	return map[string]any{"object": "list"}, nil
}

var _ = Describe("Services Command", func() {
	var h *harness

	BeforeEach(func() {
		clearConfigEnv()
		h = newHarness("http://provider.test")
	})

	It("lists registered services", func() {
		Expect(h.execute("services")).To(Succeed())

		Expect(h.out.String()).To(ContainSubstring("PROVIDER"))
		Expect(h.out.String()).To(ContainSubstring(testProvider))
		Expect(h.out.String()).To(ContainSubstring("llama-3.3-70b-instruct"))
		Expect(h.out.String()).NotTo(ContainSubstring("STATUS"))
		Expect(h.broker.Closed).To(BeTrue())
	})

	It("says so when nothing is registered", func() {
		h.broker.Services = nil
		Expect(h.execute("services")).To(Succeed())
		Expect(h.out.String()).To(ContainSubstring("No services registered."))
	})

	It("returns list errors", func() {
		h.broker.ListErr = errors.New("rpc down")
		Expect(h.execute("services")).To(MatchError(ContainSubstring("could not list services")))
	})

	It("refuses --check when the broker cannot probe", func() {
		Expect(h.execute("services", "--check")).To(MatchError(ContainSubstring("health checks")))
	})

	It("probes each provider with --check", func() {
		cb := &checkingBroker{Broker: h.broker, down: map[string]bool{}}
		d := h.deps()
		d.openBroker = func(*config.Config) (sdk.Broker, error) { return cb, nil }

		cmd := newRootCmd(d)
		cmd.SetOut(h.out)
		cmd.SetArgs([]string{"--env-file", "does-not-exist.env", "services", "--check"})
		Expect(cmd.Execute()).To(Succeed())

		Expect(h.out.String()).To(ContainSubstring("STATUS"))
		Expect(h.out.String()).To(ContainSubstring("up"))
	})

	It("marks unreachable providers as down", func() {
		cb := &checkingBroker{Broker: h.broker, down: map[string]bool{testProvider: true}}
		d := h.deps()
		d.openBroker = func(*config.Config) (sdk.Broker, error) { return cb, nil }

		cmd := newRootCmd(d)
		cmd.SetOut(h.out)
		cmd.SetArgs([]string{"--env-file", "does-not-exist.env", "services", "--check"})
		Expect(cmd.Execute()).To(Succeed())

		Expect(h.out.String()).To(ContainSubstring("down: heartbeat failed with: 502"))
	})
})
