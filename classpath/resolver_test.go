package classpath_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NVIDIA/cpscan/api"
	"github.com/NVIDIA/cpscan/classpath"
)

type fakeProvider []string

func (p fakeProvider) RawClasspath() ([]string, error) { return p, nil }

type fakeManifest map[string]string // canonical path -> Class-Path value

func (m fakeManifest) ClassPath(canonicalPath string) (string, bool, error) {
	v, ok := m[canonicalPath]
	return v, ok, nil
}

func touch(t GinkgoTInterface, path string) {
	GinkgoHelper()
	Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
	Expect(os.WriteFile(path, nil, 0o644)).To(Succeed())
}

var _ = Describe("Resolver", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	resolve := func(spec api.ScanSpec, raw []string, manifest classpath.ManifestParser) []string {
		GinkgoHelper()
		if spec.Workers == 0 {
			spec.Workers = 4
		}
		r := &classpath.Resolver{Spec: spec, Provider: fakeProvider(raw), Manifest: manifest}
		out, err := r.Resolve(context.Background())
		Expect(err).NotTo(HaveOccurred())
		return out
	}

	It("preserves positional order for a flat classpath with no manifests", func() {
		a := filepath.Join(dir, "lib", "a.jar")
		b := filepath.Join(dir, "lib", "b.jar")
		touch(GinkgoT(), a)
		touch(GinkgoT(), b)

		out := resolve(api.ScanSpec{}, []string{a, b}, fakeManifest{})
		Expect(out).To(Equal([]string{a, b}))
	})

	It("keeps only the first occurrence of a duplicate canonical path", func() {
		a := filepath.Join(dir, "lib", "a.jar")
		touch(GinkgoT(), a)
		dotted := filepath.Join(dir, "lib", ".", "a.jar")

		out := resolve(api.ScanSpec{}, []string{a, dotted}, fakeManifest{})
		Expect(out).To(Equal([]string{a}))
	})

	It("inserts manifest Class-Path references immediately after their referrer", func() {
		a := filepath.Join(dir, "lib", "a.jar")
		b := filepath.Join(dir, "lib", "b.jar")
		c := filepath.Join(dir, "lib", "c.jar")
		d := filepath.Join(dir, "lib", "d.jar")
		for _, p := range []string{a, b, c, d} {
			touch(GinkgoT(), p)
		}

		out := resolve(api.ScanSpec{}, []string{a, b}, fakeManifest{a: "c.jar d.jar"})
		Expect(out).To(Equal([]string{a, c, d, b}))
	})

	It("excludes a blacklisted system jar when BlacklistSystemJars is set", func() {
		rt := filepath.Join(dir, "jre", "lib", "rt.jar")
		ok := filepath.Join(dir, "lib", "app.jar")
		touch(GinkgoT(), rt)
		touch(GinkgoT(), ok)

		out := resolve(api.ScanSpec{BlacklistSystemJars: true}, []string{rt, ok}, fakeManifest{})
		Expect(out).To(ConsistOf(ok))
	})

	It("skips an entry that does not resolve to an existing path, without failing the whole resolve", func() {
		missing := filepath.Join(dir, "nope.jar")
		present := filepath.Join(dir, "lib", "a.jar")
		touch(GinkgoT(), present)

		out := resolve(api.ScanSpec{}, []string{missing, present}, fakeManifest{})
		Expect(out).To(Equal([]string{present}))
	})

	It("makes progress with a single worker", func() {
		a := filepath.Join(dir, "lib", "a.jar")
		touch(GinkgoT(), a)

		out := resolve(api.ScanSpec{Workers: 1}, []string{a}, fakeManifest{})
		Expect(out).To(Equal([]string{a}))
	})
})
