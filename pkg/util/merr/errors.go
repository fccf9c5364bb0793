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
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

const (
	CanceledCode int32 = 10000
	TimeoutCode  int32 = 10001
)

type ErrorType int32

const (
	SystemError ErrorType = 0
	InputError  ErrorType = 1
)

var ErrorTypeName = map[ErrorType]string{
	SystemError: "system_error",
	InputError:  "input_error",
}

func (err ErrorType) String() string {
	return ErrorTypeName[err]
}

// 叶子错误统一定义在这里。
// WARN: 新增错误前先确认下面已有的错误是否可以复用。
// 命名规则：Err + 分类前缀 + 错误名
var (
	// Service 相关
	ErrServiceNotReady    = newCodedError("service not ready", 1, true)
	ErrServiceUnavailable = newCodedError("service unavailable", 2, true)
	ErrServiceInternal    = newCodedError("service internal error", 5, false)

	// IO 相关
	ErrIoFailed      = newCodedError("IO failed", 1001, false)
	ErrIoUnexpectEOF = newCodedError("unexpected EOF", 1002, true)

	// 参数相关，ErrParameterInvalid 即编解码层的 ArgumentError
	ErrParameterInvalid  = newCodedError("invalid parameter", 1100, false)
	ErrParameterMissing  = newCodedError("missing parameter", 1101, false)
	ErrParameterTooLarge = newCodedError("parameter too large", 1102, false)

	// Codec 相关：消息打包/解包
	ErrCodecEndOfBuffer       = newCodedError("end of buffer", 2500, false)
	ErrCodecMalformedEncoding = newCodedError("malformed encoding", 2501, false)
	ErrCodecDecodeFailed      = newCodedError("decode failed", 2502, false)
	ErrCodecEncodeFailed      = newCodedError("encode failed", 2503, false)
	ErrCodecTrailingBytes     = newCodedError("trailing bytes after message", 2504, false)

	// General
	ErrOperationNotSupported = newCodedError("unsupported operation", 3000, false)

	// 不要导出，仅用于把未知错误转换成 codedError
	errUnexpected = newCodedError("unexpected error", (1<<16)-1, false)
)

type errorOption func(*codedError)

func WithErrorType(etype ErrorType) errorOption {
	return func(err *codedError) {
		err.errType = etype
	}
}

type codedError struct {
	msg       string
	detail    string
	retriable bool
	errCode   int32
	errType   ErrorType
}

func newCodedError(msg string, code int32, retriable bool, options ...errorOption) codedError {
	err := codedError{
		msg:       msg,
		detail:    msg,
		retriable: retriable,
		errCode:   code,
	}

	for _, option := range options {
		option(&err)
	}
	return err
}

func (e codedError) code() int32 {
	return e.errCode
}

func (e codedError) Error() string {
	return e.msg
}

func (e codedError) Detail() string {
	return e.detail
}

// Is 按错误码比较，携带不同字段的同类错误视为相等。
func (e codedError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(codedError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	if len(e.errs) <= 1 {
		return nil
	}
	// cause 定义为最后一个错误
	if len(e.errs) == 2 {
		return e.errs[1]
	}

	return multiErrors{
		errs: e.errs[1:],
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for i := 1; i < len(e.errs); i++ {
		final = errors.Wrap(e.errs[i], final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	for _, item := range e.errs {
		if errors.Is(item, err) {
			return true
		}
	}
	return false
}

// Combine 合并多个错误，nil 会被忽略。
// 结果对其中任意一个错误都满足 errors.Is，错误码取最后一个。
func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return multiErrors{
		errs,
	}
}
