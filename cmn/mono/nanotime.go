// Package mono provides a low-level nanosecond clock helper. No other
// package in this module currently calls it.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package mono

import "time"

// NanoTime returns the wall-clock time in nanoseconds since the Unix epoch.
// It is not monotonic: it follows wall-clock adjustments.
func NanoTime() int64 { return time.Now().UnixNano() }
