/*
NAME
  logger_test.go

DESCRIPTION
  logger_test.go adapts a testing.T into the logging.Logger interface,
  so receiver's tests can pass a Config a working Logger without
  wiring up a real sink.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package receiver

import (
	"testing"

	"github.com/ausocean/utils/logging"
)

// testLogger adapts *testing.T to logging.Logger.
type testLogger testing.T

func (tl *testLogger) Debug(msg string, args ...interface{})   { tl.Log(logging.Debug, msg, args...) }
func (tl *testLogger) Info(msg string, args ...interface{})    { tl.Log(logging.Info, msg, args...) }
func (tl *testLogger) Warning(msg string, args ...interface{}) { tl.Log(logging.Warning, msg, args...) }
func (tl *testLogger) Error(msg string, args ...interface{})   { tl.Log(logging.Error, msg, args...) }
func (tl *testLogger) Fatal(msg string, args ...interface{})   { tl.Log(logging.Fatal, msg, args...) }
func (tl *testLogger) SetLevel(lvl int8)                       {}

func (tl *testLogger) Log(lvl int8, msg string, args ...interface{}) {
	(*testing.T)(tl).Logf("%s (%v)", msg, args)
}
