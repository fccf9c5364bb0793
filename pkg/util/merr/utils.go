// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Code 返回给定错误对应的错误码。
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	cause := errors.Cause(err)
	switch specificErr := cause.(type) {
	case codedError:
		return specificErr.code()

	default:
		if errors.Is(specificErr, context.Canceled) {
			return CanceledCode
		} else if errors.Is(specificErr, context.DeadlineExceeded) {
			return TimeoutCode
		} else {
			return errUnexpected.code()
		}
	}
}

// CodeName 返回错误码对应的可读名称，用作监控标签。
func CodeName(err error) string {
	if err == nil {
		return "ok"
	}
	cause := errors.Cause(err)
	if ce, ok := cause.(codedError); ok {
		if name, ok := codeNames[ce.errCode]; ok {
			return name
		}
	}
	switch Code(err) {
	case CanceledCode:
		return "canceled"
	case TimeoutCode:
		return "timeout"
	}
	return "unexpected"
}

var codeNames = map[int32]string{
	ErrParameterInvalid.errCode:       "parameter_invalid",
	ErrParameterTooLarge.errCode:      "parameter_too_large",
	ErrCodecEndOfBuffer.errCode:       "end_of_buffer",
	ErrCodecMalformedEncoding.errCode: "malformed_encoding",
	ErrCodecDecodeFailed.errCode:      "decode_failed",
	ErrCodecEncodeFailed.errCode:      "encode_failed",
	ErrCodecTrailingBytes.errCode:     "trailing_bytes",
}

func IsRetryableErr(err error) bool {
	if err, ok := err.(codedError); ok {
		return err.retriable
	}

	return false
}

func IsCanceledOrTimeout(err error) bool {
	return errors.IsAny(err, context.Canceled, context.DeadlineExceeded)
}

func WrapErrAsInputError(err error) error {
	if merr, ok := err.(codedError); ok {
		WithErrorType(InputError)(&merr)
		return merr
	}
	return err
}

func GetErrorType(err error) ErrorType {
	if merr, ok := err.(codedError); ok {
		return merr.errType
	}

	return SystemError
}

// 参数相关错误封装。
func WrapErrParameterInvalid[T any](expected, actual T, msg ...string) error {
	err := wrapFields(ErrParameterInvalid,
		value("expected", expected),
		value("actual", actual),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrParameterInvalidRange[T any](lower, upper, actual T, msg ...string) error {
	err := wrapFields(ErrParameterInvalid,
		bound("value", actual, lower, upper),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrParameterInvalidMsg(format string, args ...any) error {
	return errors.Wrapf(ErrParameterInvalid, format, args...)
}

func WrapErrParameterTooLarge(name string, size, limit int, msg ...string) error {
	err := wrapFields(ErrParameterTooLarge,
		value(name, size),
		value("limit", limit),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Codec 相关错误封装。

// WrapErrEndOfBuffer 记录需要的字节数和剩余字节数。
func WrapErrEndOfBuffer(need, remaining int, msg ...string) error {
	err := wrapFields(ErrCodecEndOfBuffer,
		value("need", need),
		value("remaining", remaining),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrMalformedEncoding(kind string, msg ...string) error {
	err := wrapFields(ErrCodecMalformedEncoding, value("kind", kind))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// WrapErrDecodeFailed 把底层错误包装成 DecodeError，结果同时匹配
// ErrCodecDecodeFailed 与 cause，错误码沿用 cause。
func WrapErrDecodeFailed(message string, cause error) error {
	return Combine(wrapFields(ErrCodecDecodeFailed, value("message", message)), cause)
}

func WrapErrEncodeFailed(message string, cause error) error {
	return Combine(wrapFields(ErrCodecEncodeFailed, value("message", message)), cause)
}

func WrapErrTrailingBytes(message string, remaining int) error {
	return wrapFields(ErrCodecTrailingBytes,
		value("message", message),
		value("remaining", remaining),
	)
}

func WrapErrOperationNotSupported(operation string, msg ...string) error {
	err := wrapFields(ErrOperationNotSupported, value("operation", operation))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func wrapFields(err codedError, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.detail = err.msg
	return err
}

type errorField interface {
	String() string
}

type valueField struct {
	name  string
	value any
}

func value(name string, value any) valueField {
	return valueField{
		name,
		value,
	}
}

func (f valueField) String() string {
	return fmt.Sprintf("%s=%v", f.name, f.value)
}

type boundField struct {
	name  string
	value any
	lower any
	upper any
}

func bound(name string, value, lower, upper any) boundField {
	return boundField{
		name,
		value,
		lower,
		upper,
	}
}

func (f boundField) String() string {
	return fmt.Sprintf("%v out of range %v <= %s <= %v", f.value, f.lower, f.name, f.upper)
}
