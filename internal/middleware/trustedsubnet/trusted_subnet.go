package trustedsubnet

import (
	"net"
	"net/http"

	"github.com/issafronov/redirectmap/internal/middleware/logger"
	"go.uber.org/zap"
)

// ParseSubnet разбирает CIDR из конфигурации; пустая строка означает, что доверенной подсети нет
func ParseSubnet(cidr string) (*net.IPNet, error) {
	if cidr == "" {
		return nil, nil
	}
	_, subnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, err
	}
	return subnet, nil
}

// TrustedSubnetMiddleware пропускает только запросы, у которых X-Real-IP входит в подсеть.
// Без настроенной подсети доступ закрыт для всех.
func TrustedSubnetMiddleware(trustedNet *net.IPNet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ipStr := r.Header.Get("X-Real-IP")
			ip := net.ParseIP(ipStr)
			if trustedNet == nil || ip == nil || !trustedNet.Contains(ip) {
				logger.Log.Debug("request from untrusted address", zap.String("ip", ipStr))
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
