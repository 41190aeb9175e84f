package utils

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

// ValidateDecoder checks that an incoming msgpack-RPC frame is an
// array with a method and at least one payload element.
func ValidateDecoder(decoder *msgpack.Decoder) error {
	dataArrLen, arrLenErr := decoder.DecodeArrayLen()
	if arrLenErr != nil {
		return arrLenErr
	}
	if dataArrLen < 2 {
		return fmt.Errorf("RPC missing payload")
	}
	return nil
}

// ModuleLogf returns a printf-style logger tagged with the module
// name. Subsystems hold one of these instead of a logger instance.
func ModuleLogf(modName string) func(string, ...interface{}) {
	entry := logrus.WithField("module", modName)
	return func(fstr string, i ...interface{}) {
		entry.Infof(fstr, i...)
	}
}

// ModuleWarnf is ModuleLogf at warning level.
func ModuleWarnf(modName string) func(string, ...interface{}) {
	entry := logrus.WithField("module", modName)
	return func(fstr string, i ...interface{}) {
		entry.Warnf(fstr, i...)
	}
}
