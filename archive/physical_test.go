package archive_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NVIDIA/cpscan/archive"
)

var _ = Describe("PhysicalArchive", func() {
	It("maps a file-backed archive and returns its bytes via Chunk", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "data.bin")
		content := []byte("some archive bytes")
		Expect(os.WriteFile(path, content, 0o644)).To(Succeed())

		p, err := archive.OpenFile(path, nil)
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		data, err := p.Chunk(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal(content))
	})

	It("is idempotent on double Close and invokes onRelease once per chunk", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "data.bin")
		Expect(os.WriteFile(path, []byte("x"), 0o644)).To(Succeed())

		releases := 0
		p, err := archive.OpenFile(path, func() { releases++ })
		Expect(err).NotTo(HaveOccurred())
		_, err = p.Chunk(0)
		Expect(err).NotTo(HaveOccurred())

		Expect(p.Close()).To(Succeed())
		Expect(releases).To(Equal(1))

		Expect(p.Close()).To(Succeed())
		Expect(releases).To(Equal(1))
	})

	It("fails Chunk after Close", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "data.bin")
		Expect(os.WriteFile(path, []byte("x"), 0o644)).To(Succeed())

		p, err := archive.OpenFile(path, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Close()).To(Succeed())

		_, err = p.Chunk(0)
		Expect(err).To(HaveOccurred())
	})

	It("builds a memory-backed archive directly from bytes", func() {
		data := []byte("inflated contents")
		p := archive.FromMemory("id", data)
		Expect(p.IsFileBacked()).To(BeFalse())
		got, err := p.Chunk(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(data))
	})
})
