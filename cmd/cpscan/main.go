// Command cpscan resolves a classpath and opens every resulting root,
// printing what it found. A small demonstration binary for the
// classpath/archive core, not a full class scanner.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/NVIDIA/cpscan/api"
	"github.com/NVIDIA/cpscan/archive"
	"github.com/NVIDIA/cpscan/classpath"
	"github.com/NVIDIA/cpscan/cmn/nlog"
)

var flags struct {
	envVar          string
	workers         int
	blacklistSystem bool
	scanNested      bool
	allowRemote     bool
	verbose         bool
}

const helpMsg = `Build:
	go build -o cpscan ./cmd/cpscan

Examples:
	CLASSPATH=lib/a.jar:lib/b.jar cpscan               - resolve and open $CLASSPATH
	cpscan -env MY_CLASSPATH -workers 8                - use a different env var, 8 workers
	cpscan -blacklist-system-jars                      - exclude entries under a known JRE path
`

func init() {
	flag.StringVar(&flags.envVar, "env", "CLASSPATH", "environment variable holding the raw classpath")
	flag.IntVar(&flags.workers, "workers", 4, "resolver worker-pool size")
	flag.BoolVar(&flags.blacklistSystem, "blacklist-system-jars", false, "exclude entries under a known JRE path")
	flag.BoolVar(&flags.scanNested, "scan-nested-jars", true, "allow opening archives nested inside archives")
	flag.BoolVar(&flags.allowRemote, "allow-remote", false, "allow http(s) classpath roots")
	flag.BoolVar(&flags.verbose, "v", false, "verbose logging")
}

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, helpMsg) }
	flag.Parse()

	if flags.verbose {
		nlog.SetLevel("info")
	} else {
		nlog.SetLevel("warn")
	}

	spec := api.ScanSpec{
		BlacklistSystemJars:     flags.blacklistSystem,
		ScanNestedJars:          flags.scanNested,
		EnableRemoteJarScanning: flags.allowRemote,
		Workers:                 flags.workers,
	}

	resolver := &classpath.Resolver{
		Spec:     spec,
		Provider: classpath.EnvClasspathProvider{EnvVar: flags.envVar},
		Manifest: classpath.ZipManifestParser{},
	}

	paths, err := resolver.Resolve(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "cpscan: resolve: %v\n", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "cpscan: empty classpath")
		return
	}

	handler := archive.NewHandler(spec, archive.ZipCentralDirectoryParser{})
	defer func() {
		if err := handler.Close(); err != nil {
			nlog.Warningf("cpscan: close: %v", err)
		}
	}()

	for _, p := range paths {
		logical, root, err := handler.Open(p)
		if err != nil {
			fmt.Printf("%s\tERROR %v\n", p, err)
			continue
		}
		fmt.Printf("%s\t%d entries\troot=%q\n", p, len(logical.Entries), root)
	}
}
