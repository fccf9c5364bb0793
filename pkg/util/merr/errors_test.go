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
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	err := WrapErrEndOfBuffer(4, 1)
	err = errors.Wrap(err, "failed to read fixed32")
	s.ErrorIs(err, ErrCodecEndOfBuffer)
	s.Equal(Code(ErrCodecEndOfBuffer), Code(err))
	s.Equal(TimeoutCode, Code(context.DeadlineExceeded))
	s.Equal(CanceledCode, Code(context.Canceled))
	s.Equal(errUnexpected.errCode, Code(errUnexpected))
	s.Equal(int32(0), Code(nil))

	sameCodeErr := newCodedError("new error", ErrCodecEndOfBuffer.errCode, false)
	s.True(sameCodeErr.Is(ErrCodecEndOfBuffer))
}

func (s *ErrSuite) TestCodeName() {
	s.Equal("ok", CodeName(nil))
	s.Equal("end_of_buffer", CodeName(WrapErrEndOfBuffer(1, 0)))
	s.Equal("malformed_encoding", CodeName(WrapErrMalformedEncoding("packed_int32")))
	s.Equal("timeout", CodeName(context.DeadlineExceeded))
	s.Equal("unexpected", CodeName(errors.New("boom")))
}

func (s *ErrSuite) TestWrap() {
	// 参数相关错误。
	s.ErrorIs(WrapErrParameterInvalid(8, 1, "failed to create"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterInvalidRange(0, 7, 9, "offset+count out of range"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterInvalidMsg("negative count %d", -1), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterTooLarge("size", 100, 10), ErrParameterTooLarge)

	// Codec 相关错误。
	s.ErrorIs(WrapErrEndOfBuffer(8, 2, "read fixed64"), ErrCodecEndOfBuffer)
	s.ErrorIs(WrapErrMalformedEncoding("packed_int64", "overlong"), ErrCodecMalformedEncoding)
	s.ErrorIs(WrapErrTrailingBytes("Move", 3), ErrCodecTrailingBytes)
	s.ErrorIs(WrapErrOperationNotSupported("marshal"), ErrOperationNotSupported)

	s.Contains(WrapErrEndOfBuffer(8, 2).Error(), "[need=8][remaining=2]")

	var coded codedError
	s.True(errors.As(WrapErrMalformedEncoding("segment"), &coded))
	s.Equal("malformed encoding[kind=segment]", coded.Detail())
}

func (s *ErrSuite) TestDecodeFailedKeepsCause() {
	cause := WrapErrEndOfBuffer(4, 0)
	err := WrapErrDecodeFailed("Move", cause)

	s.ErrorIs(err, ErrCodecDecodeFailed)
	s.ErrorIs(err, ErrCodecEndOfBuffer)
	s.NotErrorIs(err, ErrCodecMalformedEncoding)
	s.Equal(Code(ErrCodecEndOfBuffer), Code(err))

	err = WrapErrEncodeFailed("Move", WrapErrParameterInvalidMsg("bad range"))
	s.ErrorIs(err, ErrCodecEncodeFailed)
	s.ErrorIs(err, ErrParameterInvalid)
}

func (s *ErrSuite) TestRetryable() {
	s.True(IsRetryableErr(ErrIoUnexpectEOF))
	s.False(IsRetryableErr(ErrCodecEndOfBuffer))
	s.False(IsRetryableErr(errors.New("plain")))
	s.True(IsCanceledOrTimeout(errors.Wrap(context.Canceled, "stop")))
}

func (s *ErrSuite) TestErrorType() {
	s.Equal(SystemError, GetErrorType(ErrParameterInvalid))
	s.Equal(InputError, GetErrorType(WrapErrAsInputError(ErrParameterInvalid)))
	s.Equal("input_error", InputError.String())
}

func (s *ErrSuite) TestCombine() {
	var (
		errFirst  = errors.New("first")
		errSecond = errors.New("second")
		errThird  = errors.New("third")
	)

	err := Combine(errFirst, errSecond)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.False(errors.Is(err, errThird))

	s.Equal("first: second", err.Error())
}

func (s *ErrSuite) TestCombineWithNil() {
	err := errors.New("non-nil")

	err = Combine(nil, err)
	s.NotNil(err)
}

func (s *ErrSuite) TestCombineOnlyNil() {
	err := Combine(nil, nil)
	s.Nil(err)
}

func (s *ErrSuite) TestCombineCode() {
	err := Combine(WrapErrParameterInvalidMsg("first"), WrapErrEndOfBuffer(1, 0))
	s.Equal(Code(ErrCodecEndOfBuffer), Code(err))
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}
