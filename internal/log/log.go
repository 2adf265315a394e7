// Copyright 2024 The CFR Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log is a thin façade over github.com/go-kratos/kratos/v2/log,
// matching the small call surface the teacher repo exposes through its
// own pe/log package (NewStdLogger, NewHelper, NewFilter, FilterLevel,
// LevelError). It exists so the CLI shell in cmd/cfr can log without
// the pure cfr core ever doing I/O itself (see spec.md §5).
package log

import (
	kratoslog "github.com/go-kratos/kratos/v2/log"
)

// Re-exported kratos log types and constructors, under the names the
// teacher's own façade used.
type (
	Logger = kratoslog.Logger
	Helper = kratoslog.Helper
)

var (
	NewStdLogger = kratoslog.NewStdLogger
	NewHelper    = kratoslog.NewHelper
	NewFilter    = kratoslog.NewFilter
	FilterLevel  = kratoslog.FilterLevel
)

const (
	LevelDebug = kratoslog.LevelDebug
	LevelInfo  = kratoslog.LevelInfo
	LevelWarn  = kratoslog.LevelWarn
	LevelError = kratoslog.LevelError
	LevelFatal = kratoslog.LevelFatal
)
