package archive_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NVIDIA/cpscan/api"
	"github.com/NVIDIA/cpscan/archive"
	"github.com/NVIDIA/cpscan/cmn/cos"
)

var _ = Describe("Handler", func() {
	var (
		dir     string
		spec    api.ScanSpec
		handler *archive.Handler
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		spec = api.ScanSpec{ScanNestedJars: true}
		handler = archive.NewHandler(spec, archive.ZipCentralDirectoryParser{})
	})

	AfterEach(func() {
		Expect(handler.Close()).To(Succeed())
	})

	It("opens a flat archive and lists its entries", func() {
		p := buildZip(dir, "flat.jar", "Hello.class", []byte("classbytes"), zip.Store)
		la, root, err := handler.Open(p)
		Expect(err).NotTo(HaveOccurred())
		Expect(root).To(Equal(""))
		Expect(la.Find("Hello.class")).NotTo(BeNil())
	})

	It("opens a stored nested archive as a slice of the same physical backing", func() {
		outer, _ := buildOuterWithNested(dir, "inner.jar", 1024, zip.Store)

		outerArchive, _, err := handler.Open(outer)
		Expect(err).NotTo(HaveOccurred())

		innerArchive, _, err := handler.Open(outer + "!inner.jar")
		Expect(err).NotTo(HaveOccurred())

		Expect(innerArchive.Slice.Physical.Identity()).To(Equal(outerArchive.Slice.Physical.Identity()))
		Expect(innerArchive.Slice.Offset).To(BeNumerically(">", 0))
	})

	It("opens a small deflated nested archive backed by memory, no temp file", func() {
		outer, _ := buildOuterWithNested(dir, "inner.jar", 1<<20, zip.Deflate)

		before := countTempFiles()
		innerArchive, _, err := handler.Open(outer + "!inner.jar")
		Expect(err).NotTo(HaveOccurred())
		Expect(innerArchive.Slice.Physical.IsFileBacked()).To(BeFalse())
		Expect(countTempFiles()).To(Equal(before))
	})

	It("extracts a large deflated nested archive to a temp file, cleaned up on close", func() {
		outer, _ := buildOuterWithNested(dir, "inner.jar", 40<<20, zip.Deflate)

		innerArchive, _, err := handler.Open(outer + "!inner.jar")
		Expect(err).NotTo(HaveOccurred())
		Expect(innerArchive.Slice.Physical.IsFileBacked()).To(BeTrue())

		Expect(handler.Close()).To(Succeed())
		Expect(findSessionTempFiles("---inner.jar")).To(BeEmpty())
	})

	It("treats a directory-valued child as a package root", func() {
		p := buildZip(dir, "withdir.jar", "com/acme/Hello.class", []byte("x"), zip.Store)
		_, root, err := handler.Open(p + "!com/acme")
		Expect(err).NotTo(HaveOccurred())
		Expect(root).To(Equal("com/acme"))
	})

	It("fails with NotFound for a missing nested path", func() {
		p := buildZip(dir, "flat.jar", "Hello.class", []byte("x"), zip.Store)
		_, _, err := handler.Open(p + "!Missing.class")
		Expect(err).To(HaveOccurred())
		Expect(cos.IsErrNotFound(err)).To(BeTrue())
	})

	It("returns the same archive object for two paths resolving to the same nested identity", func() {
		outer, _ := buildOuterWithNested(dir, "inner.jar", 1024, zip.Store)
		a, _, err := handler.Open(outer + "!inner.jar")
		Expect(err).NotTo(HaveOccurred())
		b, _, err := handler.Open(outer + "!inner.jar")
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(BeIdenticalTo(b))
	})

	It("canonicalizes two textually different outer paths to the same archive", func() {
		outer, _ := buildOuterWithNested(dir, "inner.jar", 1024, zip.Store)
		link := filepath.Join(dir, "alias.jar")
		Expect(os.Symlink(outer, link)).To(Succeed())

		a, _, err := handler.Open(outer + "!inner.jar")
		Expect(err).NotTo(HaveOccurred())
		b, _, err := handler.Open(link + "!inner.jar")
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(BeIdenticalTo(b))
	})

	It("is idempotent on double Close", func() {
		p := buildZip(dir, "flat.jar", "Hello.class", []byte("x"), zip.Store)
		_, _, err := handler.Open(p)
		Expect(err).NotTo(HaveOccurred())

		Expect(handler.Close()).To(Succeed())
		Expect(handler.Close()).To(Succeed())
	})

	It("rejects nested scanning when disabled", func() {
		handler2 := archive.NewHandler(api.ScanSpec{ScanNestedJars: false}, archive.ZipCentralDirectoryParser{})
		defer handler2.Close()

		outer, _ := buildOuterWithNested(dir, "inner.jar", 1024, zip.Store)
		_, _, err := handler2.Open(outer + "!inner.jar")
		Expect(err).To(HaveOccurred())
	})

	It("fails every Open after Close", func() {
		p := buildZip(dir, "flat.jar", "Hello.class", []byte("x"), zip.Store)
		Expect(handler.Close()).To(Succeed())
		_, _, err := handler.Open(p)
		Expect(err).To(HaveOccurred())
	})
})

func countTempFiles() int {
	entries, _ := os.ReadDir(os.TempDir())
	n := 0
	for _, e := range entries {
		if strings.Contains(e.Name(), "---") {
			n++
		}
	}
	return n
}

func findSessionTempFiles(suffix string) []string {
	entries, _ := os.ReadDir(os.TempDir())
	var found []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), suffix) {
			found = append(found, filepath.Join(os.TempDir(), e.Name()))
		}
	}
	return found
}
