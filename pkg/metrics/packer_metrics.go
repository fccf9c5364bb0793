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

package metrics

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	packerMetricSubsystem = "packer"
)

var (
	// PackerMessagesTotal 按阶段和结果统计打包/解包的消息数，status 取 merr.CodeName。
	PackerMessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: danmuNamespace,
		Subsystem: packerMetricSubsystem,
		Name:      "messages_total",
		Help:      "打包/解包的消息数量",
	}, []string{stageLabelName, statusLabelName})

	// PackerMessageBytes 记录成功打包/解包的消息字节数。
	PackerMessageBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: danmuNamespace,
		Subsystem: packerMetricSubsystem,
		Name:      "message_bytes",
		Help:      "打包/解包的消息大小（字节）",
		Buckets:   sizeBuckets,
	}, []string{stageLabelName})

	// PackerLatency 记录打包/解包耗时，单位为微秒。
	PackerLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: danmuNamespace,
		Subsystem: packerMetricSubsystem,
		Name:      "latency_us",
		Help:      "打包/解包耗时（微秒）",
		Buckets:   buckets,
	}, []string{stageLabelName})

	// PackerDecodeFailures 按消息类型统计解包失败次数。
	PackerDecodeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: danmuNamespace,
		Subsystem: packerMetricSubsystem,
		Name:      "decode_failures_total",
		Help:      "按消息类型统计的解包失败次数",
	}, []string{messageLabelName})
)

// RegisterPackerMetrics 将打包相关的指标注册到 Registerer 中，只生效一次。
// RegisterPackerMetrics 把打包相关的指标注册到 registry。
// 同一组指标可以注册到多个 registry，对同一个 registry 重复注册视为成功。
func RegisterPackerMetrics(registry prometheus.Registerer) {
	for _, c := range []prometheus.Collector{
		PackerMessagesTotal,
		PackerMessageBytes,
		PackerLatency,
		PackerDecodeFailures,
	} {
		mustRegister(registry, c)
	}
}

func mustRegister(registry prometheus.Registerer, c prometheus.Collector) {
	err := registry.Register(c)
	if err == nil {
		return
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return
	}
	panic(err)
}
