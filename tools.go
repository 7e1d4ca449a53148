//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// These imports are not used at runtime. They keep mockgen, invoked by
// `go generate ./contract`, tracked in go.mod / go.sum.
package message_board

import (
	_ "go.uber.org/mock/mockgen"
)
