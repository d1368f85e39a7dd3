package metric

import (
	"context"
	"time"

	"go.uber.org/zap"
)

func Operation(val string) zap.Field {
	return zap.String("op", val)
}

func TotalDur(val time.Duration) zap.Field {
	return zap.Int64("totalMs", val.Milliseconds())
}

func CanisterId(val string) zap.Field {
	return zap.String("canisterId", val)
}

func Endpoint(val string) zap.Field {
	return zap.String("endpoint", val)
}

func Algorithm(val string) zap.Field {
	return zap.String("alg", val)
}

func Principal(val string) zap.Field {
	return zap.String("principal", val)
}

func RequestId(val string) zap.Field {
	return zap.String("requestId", val)
}

func Result(val string) zap.Field {
	return zap.String("result", val)
}

func (m *metric) RequestLog(ctx context.Context, fields ...zap.Field) {
	m.opLog.InfoCtx(ctx, "", fields...)
}
