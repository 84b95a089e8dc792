package transport

import (
	"context"
	"time"
)

// WithTimeout навешивает таймаут d на контекст исходящего вызова,
// если у контекста ещё нет дедлайна.
//
// Контракт:
//  1. d <= 0 — контекст не модифицируется;
//  2. у ctx уже есть deadline — оставляет как есть;
//  3. иначе — context.WithTimeout(ctx, d).
//
// Вызывающий обязан вызвать cancel после чтения тела ответа.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, d)
}
