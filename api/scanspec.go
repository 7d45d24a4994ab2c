// Package api holds the configuration contract (ScanSpec) cpscan's core is
// driven by. The external-collaborator interfaces live in the packages that
// consume them (classpath/provider.go, archive/interfaces.go).
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package api

import jsoniter "github.com/json-iterator/go"

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// ScanSpec carries the flags that influence the core's decisions. Any other
// scan-configuration flags a caller needs are out of scope for this core and
// pass through untouched by it.
type ScanSpec struct {
	BlacklistSystemJars     bool `json:"blacklist_system_jars"`
	ScanNestedJars          bool `json:"scan_nested_jars"`
	EnableRemoteJarScanning bool `json:"enable_remote_jar_scanning"`

	// Workers is the resolver's fixed worker-pool size. The calling
	// goroutine always participates as one of them, so Workers=1 still
	// makes progress without spawning anything extra.
	Workers int `json:"workers"`
}

// DefaultScanSpec mirrors the conservative defaults a class scanning library
// would ship with: no system-jar blacklisting surprises, nested jars on
// (the common case), remote scanning off (it requires opting in to network
// I/O), four workers.
func DefaultScanSpec() ScanSpec {
	return ScanSpec{
		BlacklistSystemJars:     false,
		ScanNestedJars:          true,
		EnableRemoteJarScanning: false,
		Workers:                 4,
	}
}

func Marshal(s ScanSpec) ([]byte, error) { return jsonAPI.Marshal(s) }

func Unmarshal(data []byte) (ScanSpec, error) {
	var s ScanSpec
	err := jsonAPI.Unmarshal(data, &s)
	return s, err
}
