package mapping

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrUnparsable возвращается для строк, которые нельзя разобрать как абсолютный URL
var ErrUnparsable = errors.New("unparsable url")

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// ParseURL разбирает абсолютный URL. Строка без схемы или хоста считается неразбираемой.
func ParseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty string", ErrUnparsable)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	if u.Scheme == "" || u.Hostname() == "" || u.Opaque != "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrUnparsable, trimmed)
	}
	return u, nil
}

// Canonicalize приводит URL к канонической форме: хост в нижнем регистре,
// порт по умолчанию для схемы удалён, фрагмент удалён, пустой путь заменён на "/".
// Повторное применение не меняет результат.
func Canonicalize(raw string) (string, error) {
	u, err := ParseURL(raw)
	if err != nil {
		return "", err
	}

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == defaultPorts[u.Scheme] {
		port = ""
	}
	switch {
	case port != "":
		u.Host = net.JoinHostPort(host, port)
	case strings.Contains(host, ":"):
		u.Host = "[" + host + "]"
	default:
		u.Host = host
	}

	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	return u.String(), nil
}

// CanonicalizeAll канонизирует список с сохранением порядка и удалением дубликатов.
// Неразбираемые элементы пропускаются.
func CanonicalizeAll(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		c, err := Canonicalize(r)
		if err != nil {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// RegistrableDomain возвращает две последние метки имени хоста.
// IP-адрес возвращается целиком.
func RegistrableDomain(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if net.ParseIP(host) != nil {
		return host
	}
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// target хранит разобранный канонический URL для группировки и оценки
type target struct {
	raw       string
	host      string
	regDomain string
	path      string
}

func newTarget(canonical string) (target, error) {
	u, err := ParseURL(canonical)
	if err != nil {
		return target{}, err
	}
	host := u.Hostname()
	return target{
		raw:       canonical,
		host:      host,
		regDomain: RegistrableDomain(host),
		path:      comparablePath(u),
	}, nil
}

// comparablePath возвращает путь в нижнем регистре без завершающих "/"
func comparablePath(u *url.URL) string {
	return strings.TrimRight(strings.ToLower(u.EscapedPath()), "/")
}
