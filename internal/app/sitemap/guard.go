package sitemap

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Guard отклоняет URL, обращение к которым небезопасно: схемы кроме http(s),
// пустой хост, а также loopback, частные и link-local адреса.
type Guard struct {
	// AllowPrivate отключает проверку адресов (тесты, внутренние сети)
	AllowPrivate bool
	Resolver     *net.Resolver
}

// Check возвращает ErrBlockedTarget, если к URL обращаться нельзя
func (g *Guard) Check(ctx context.Context, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBlockedTarget, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q is not allowed", ErrBlockedTarget, u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("%w: empty host", ErrBlockedTarget)
	}
	if g == nil || g.AllowPrivate {
		return nil
	}

	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return fmt.Errorf("%w: %s", ErrBlockedTarget, host)
	}
	if ip := net.ParseIP(host); ip != nil {
		return checkIP(ip)
	}

	resolver := g.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	addrs, err := resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", ErrBlockedTarget, host, err)
	}
	for _, addr := range addrs {
		if err := checkIP(addr.IP); err != nil {
			return err
		}
	}
	return nil
}

func checkIP(ip net.IP) error {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsInterfaceLocalMulticast() {
		return fmt.Errorf("%w: address %s is not public", ErrBlockedTarget, ip)
	}
	return nil
}
