package concur_test

import (
	"errors"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NVIDIA/cpscan/internal/concur"
)

var _ = Describe("Recycler", func() {
	It("reuses a released instance instead of constructing a fresh one", func() {
		var constructs int32
		r := concur.NewRecyclerInfallible(func() int {
			return int(atomic.AddInt32(&constructs, 1))
		}, nil)

		v1, err := r.Acquire()
		Expect(err).NotTo(HaveOccurred())
		r.Release(v1)

		v2, err := r.Acquire()
		Expect(err).NotTo(HaveOccurred())
		Expect(v2).To(Equal(v1))
		Expect(constructs).To(Equal(int32(1)))
	})

	It("never holds an instance in the pool and with a borrower simultaneously", func() {
		r := concur.NewRecyclerInfallible(func() int { return 1 }, nil)
		v, err := r.Acquire()
		Expect(err).NotTo(HaveOccurred())
		// pool is empty while v is held
		v2, err := r.Acquire()
		Expect(err).NotTo(HaveOccurred())
		r.Release(v)
		r.Release(v2)
	})

	It("ForceClose disposes every pooled instance and fails subsequent Acquire", func() {
		var disposed []int
		r := concur.NewRecyclerInfallible(func() int { return 1 }, func(v int) {
			disposed = append(disposed, v)
		})
		v, _ := r.Acquire()
		r.Release(v)

		r.ForceClose()
		Expect(disposed).To(ConsistOf(1))

		_, err := r.Acquire()
		Expect(err).To(HaveOccurred())

		// idempotent
		r.ForceClose()
	})

	It("Borrow releases on every exit path, including error returns", func() {
		r := concur.NewRecyclerInfallible(func() int { return 1 }, nil)
		boom := errors.New("boom")

		err := concur.Borrow(r, func(int) error { return boom })
		Expect(err).To(MatchError(boom))

		// the instance must have been released, not leaked
		v, err := r.Acquire()
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(1))
	})
})
