// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

// Package client implements the headless sync agent runtime.
//
// It wires the local storage, the remote adapter, the connectivity monitor,
// and the background sync workers into a single process lifecycle.
package client
