package archive_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// buildZip writes a zip file at dir/name whose single entry entryName holds
// data, compressed with method (zip.Store or zip.Deflate). It returns the
// full path.
func buildZip(dir, name, entryName string, data []byte, method uint16) string {
	GinkgoHelper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: entryName, Method: method})
	Expect(err).NotTo(HaveOccurred())
	_, err = w.Write(data)
	Expect(err).NotTo(HaveOccurred())
	Expect(zw.Close()).To(Succeed())

	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, buf.Bytes(), 0o644)).To(Succeed())
	return path
}

// buildOuterWithNested builds outer.jar containing a nested archive named
// nestedName (itself a minimal valid one-entry zip), stored within outer
// using method. It returns outer's path and the nested archive's raw bytes.
func buildOuterWithNested(dir, nestedName string, nestedSize int, method uint16) (outerPath string, nestedBytes []byte) {
	GinkgoHelper()
	var innerBuf bytes.Buffer
	iw := zip.NewWriter(&innerBuf)
	w, err := iw.CreateHeader(&zip.FileHeader{Name: "Data.bin", Method: zip.Store})
	Expect(err).NotTo(HaveOccurred())
	_, err = w.Write(make([]byte, nestedSize))
	Expect(err).NotTo(HaveOccurred())
	Expect(iw.Close()).To(Succeed())
	nestedBytes = innerBuf.Bytes()

	outerPath = buildZip(dir, "outer.jar", nestedName, nestedBytes, method)
	return outerPath, nestedBytes
}
