// Package cos provides common low-level types and utilities shared by
// cpscan's classpath and archive packages.
/*
 * Copyright (c) 2021-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"io"
	"os"

	"github.com/NVIDIA/cpscan/cmn/nlog"
)

// Close closes c, logging (not panicking on) a non-nil error. Used at every
// teardown call site so close ordering stays linear and readable.
func Close(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		nlog.Warningf("close: %v", err)
	}
}

// Stat wraps os.Stat reporting IsRegular/IsDir without a second syscall.
func Stat(path string) (fi os.FileInfo, isRegular, isDir bool, err error) {
	fi, err = os.Stat(path)
	if err != nil {
		return nil, false, false, err
	}
	mode := fi.Mode()
	return fi, mode.IsRegular(), mode.IsDir(), nil
}

func RemoveFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		nlog.Warningf("remove %s: %v", path, err)
	}
}
