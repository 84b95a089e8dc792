// Package transport — цепочка http.RoundTripper для исходящих запросов к бэкенду
// комментариев: заголовки запроса, логирование, метрики и таймаут.
package transport

import "net/http"

// RoundTripperFunc — адаптер функции к http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Middleware оборачивает следующий RoundTripper.
type Middleware func(next http.RoundTripper) http.RoundTripper

// Chain собирает цепочку поверх base в порядке перечисления (первый — внешний).
// base == nil — используется http.DefaultTransport на момент вызова, а не сборки.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	rt := base
	if rt == nil {
		rt = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return http.DefaultTransport.RoundTrip(r)
		})
	}

	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}

	return rt
}
