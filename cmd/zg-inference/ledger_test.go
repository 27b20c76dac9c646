package main

import (
	"errors"
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/shamank/zg-compute-go/pkg/model"
)

var _ = Describe("Ledger Command", func() {
	var h *harness

	BeforeEach(func() {
		clearConfigEnv()
		h = newHarness("http://provider.test")
	})

	It("reports a missing ledger", func() {
		Expect(h.execute("ledger")).To(Succeed())
		Expect(h.out.String()).To(ContainSubstring("No ledger for 0x1111111111111111111111111111111111111111"))
	})

	It("shows balances in A0GI", func() {
		h.broker.Ledger = &model.Ledger{
			User:             h.broker.User,
			AvailableBalance: big.NewInt(250_000_000_000_000_000),
			TotalBalance:     big.NewInt(1_000_000_000_000_000_000),
		}

		Expect(h.execute("ledger")).To(Succeed())

		out := h.out.String()
		Expect(out).To(ContainSubstring("available: 0.25 A0GI"))
		Expect(out).To(ContainSubstring("locked:    0.75 A0GI"))
		Expect(out).To(ContainSubstring("total:     1 A0GI"))
	})

	It("returns read errors", func() {
		h.broker.LedgerErr = errors.New("rpc down")
		Expect(h.execute("ledger")).To(MatchError(ContainSubstring("could not read ledger")))
	})

	It("creates and then deposits", func() {
		Expect(h.execute("ledger", "create", "0.1")).To(Succeed())
		Expect(h.execute("ledger", "deposit", "0.4")).To(Succeed())

		Expect(h.broker.Added).To(HaveLen(1))
		Expect(h.broker.Deposits).To(HaveLen(1))
		Expect(h.broker.Deposits[0].String()).To(Equal("0.4"))
		Expect(h.broker.Ledger.TotalBalance.String()).To(Equal("500000000000000000"))
	})

	It("fails to deposit without a ledger", func() {
		Expect(h.execute("ledger", "deposit", "1")).NotTo(Succeed())
	})

	DescribeTable("rejects bad amounts",
		func(args ...string) {
			Expect(h.execute(append([]string{"ledger", "deposit"}, args...)...)).To(MatchError(Or(
				ContainSubstring("invalid amount"),
				ContainSubstring("must be positive"),
			)))
			Expect(h.opened).To(BeNil())
		},
		Entry("not a number", "lots"),
		Entry("zero", "0"),
		Entry("negative", "--", "-1"),
	)
})
