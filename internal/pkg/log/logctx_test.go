package log

// Тесты internal/pkg/log (logctx.go).
//
// Покрытие:
//  - From без логгера в контексте -> slog.Default();
//  - Into/From round-trip;
//  - устойчивость к «мусорным» значениям и *slog.Logger(nil);
//  - With: атрибуты попадают в записи, родительский контекст не меняется.
//
// Важно: тесты меняют slog.Default(), поэтому намеренно НЕ используют t.Parallel().

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFrom_ReturnsDefault_WhenNoLoggerInContext(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def := newSilent()
	slog.SetDefault(def)

	require.Equal(t, def, From(context.Background()))
}

func TestIntoAndFrom_RoundTrip(t *testing.T) {
	l := newSilent()
	ctx := Into(context.Background(), l)

	require.Equal(t, l, From(ctx))
}

func TestFrom_ReturnsDefault_WhenStoredValueIsWrongTypeOrNil(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })
	def := newSilent()
	slog.SetDefault(def)

	ctxWrong := context.WithValue(context.Background(), ctxKey{}, "not-a-logger")
	require.Equal(t, def, From(ctxWrong))

	var nilLogger *slog.Logger
	ctxNil := context.WithValue(context.Background(), ctxKey{}, nilLogger)
	require.Equal(t, def, From(ctxNil))
}

func TestWith_AddsAttrsToChildOnly(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	parent := Into(context.Background(), base)
	child := With(parent, "article_id", "a1")

	From(child).Info("ping")
	require.Contains(t, buf.String(), "article_id=a1")

	buf.Reset()
	From(parent).Info("ping")
	require.NotContains(t, buf.String(), "article_id")

	require.Equal(t, parent, With(parent), "без атрибутов контекст не меняется")
}
