package pprof

import (
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/issafronov/redirectmap/internal/middleware/logger"
	"go.uber.org/zap"
)

// Start запускает pprof-сервер на отдельном mux. В Addr возвращённого сервера
// записан фактический адрес (полезно для "localhost:0").
func Start(addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Log.Info("Starting pprof server", zap.String("address", srv.Addr))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("pprof server error", zap.Error(err))
		}
	}()
	return srv, nil
}
