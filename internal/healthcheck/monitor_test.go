package healthcheck_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/akontos/hello-balancer/internal/backend"
	"github.com/akontos/hello-balancer/internal/healthcheck"
)

// fakeReplica is a health endpoint whose status code can be flipped at will.
type fakeReplica struct {
	server *httptest.Server
	status atomic.Int32
	delay  atomic.Int64
}

func newFakeReplica() *fakeReplica {
	f := &fakeReplica{}
	f.status.Store(http.StatusOK)

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		if d := f.delay.Load(); d > 0 {
			time.Sleep(time.Duration(d))
		}
		w.WriteHeader(int(f.status.Load()))
	}))

	return f
}

func (f *fakeReplica) fail()                { f.status.Store(http.StatusServiceUnavailable) }
func (f *fakeReplica) recover()             { f.status.Store(http.StatusOK) }
func (f *fakeReplica) slow(d time.Duration) { f.delay.Store(int64(d)) }
func (f *fakeReplica) close()               { f.server.Close() }

func (f *fakeReplica) backend() *backend.Backend {
	u, err := url.Parse(f.server.URL)
	Expect(err).NotTo(HaveOccurred())
	return backend.New(u)
}

var _ = Describe("Monitor", func() {
	var (
		log     *slog.Logger
		pool    *backend.Pool
		replica *fakeReplica
		b       *backend.Backend
		monitor *healthcheck.Monitor
		ctx     context.Context
	)

	newMonitor := func(opts healthcheck.Options) *healthcheck.Monitor {
		return healthcheck.NewMonitor(pool, opts, log)
	}

	probeRounds := func(n int) {
		for i := 0; i < n; i++ {
			monitor.ProbeAll(ctx)
		}
	}

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, nil))
		ctx = context.Background()
		pool = backend.NewPool()
		replica = newFakeReplica()
		b = replica.backend()
		pool.Add(b)
		monitor = newMonitor(healthcheck.Options{
			Timeout:            500 * time.Millisecond,
			UnhealthyThreshold: 3,
			HealthyThreshold:   2,
		})
	})

	AfterEach(func() {
		replica.close()
	})

	Describe("initial contact", func() {
		It("moves an Unknown backend to Healthy on the first passing probe", func() {
			probeRounds(1)
			Expect(b.State()).To(Equal(backend.Healthy))
		})

		It("keeps a failing Unknown backend out of rotation", func() {
			replica.fail()
			probeRounds(1)
			Expect(b.IsHealthy()).To(BeFalse())
		})
	})

	Describe("failure hysteresis", func() {
		BeforeEach(func() {
			probeRounds(1)
			Expect(b.State()).To(Equal(backend.Healthy))
			replica.fail()
		})

		It("stays Healthy below the unhealthy threshold", func() {
			probeRounds(2)
			Expect(b.State()).To(Equal(backend.Healthy))
		})

		It("flips to Unhealthy exactly at the threshold", func() {
			probeRounds(3)
			Expect(b.State()).To(Equal(backend.Unhealthy))
		})

		It("treats a non-2xx response as a failure", func() {
			probeRounds(3)
			Expect(b.State()).To(Equal(backend.Unhealthy))
		})

		It("resets the streak when a probe passes in between", func() {
			probeRounds(2)
			replica.recover()
			probeRounds(1)
			replica.fail()
			probeRounds(2)
			Expect(b.State()).To(Equal(backend.Healthy))
		})
	})

	Describe("recovery hysteresis", func() {
		BeforeEach(func() {
			probeRounds(1)
			replica.fail()
			probeRounds(3)
			Expect(b.State()).To(Equal(backend.Unhealthy))
			replica.recover()
		})

		It("stays Unhealthy below the healthy threshold", func() {
			probeRounds(1)
			Expect(b.State()).To(Equal(backend.Unhealthy))
		})

		It("rejoins rotation exactly at the threshold", func() {
			probeRounds(2)
			Expect(b.State()).To(Equal(backend.Healthy))
		})
	})

	Describe("timeouts", func() {
		It("counts a timed-out probe as a failure", func() {
			probeRounds(1)
			Expect(b.State()).To(Equal(backend.Healthy))

			replica.slow(2 * time.Second)
			probeRounds(3)
			Expect(b.State()).To(Equal(backend.Unhealthy))
		})
	})

	Describe("unreachable backends", func() {
		It("marks a dead backend Unhealthy after the threshold", func() {
			dead := newFakeReplica()
			deadBackend := dead.backend()
			dead.close()
			pool.Add(deadBackend)

			probeRounds(3)
			Expect(deadBackend.State()).To(Equal(backend.Unhealthy))
			// The live replica is unaffected.
			Expect(b.State()).To(Equal(backend.Healthy))
		})
	})

	Describe("Start", func() {
		It("probes on the interval until cancelled", func() {
			monitor = newMonitor(healthcheck.Options{
				Interval:           50 * time.Millisecond,
				Timeout:            500 * time.Millisecond,
				UnhealthyThreshold: 3,
				HealthyThreshold:   2,
			})

			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan struct{})
			go func() {
				monitor.Start(runCtx)
				close(done)
			}()

			Eventually(b.IsHealthy, time.Second, 10*time.Millisecond).Should(BeTrue())

			replica.fail()
			Eventually(func() backend.HealthState { return b.State() },
				time.Second, 10*time.Millisecond).Should(Equal(backend.Unhealthy))

			cancel()
			Eventually(done, time.Second).Should(BeClosed())
		})
	})
})
