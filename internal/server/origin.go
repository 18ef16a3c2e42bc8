package server

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// OriginChecker 校验浏览器 Origin，同时决定 CORS 响应头。
// 允许列表支持精确来源（https://example.com）和子域名通配（https://*.example.com）。
type OriginChecker struct {
	allowAll bool
	exact    map[string]bool
	suffixes []originSuffix
}

// originSuffix 子域名通配规则，domain 以 "." 开头
type originSuffix struct {
	scheme string
	domain string
}

// NewOriginChecker 创建来源校验器，列表中出现 "*" 表示全部允许
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{exact: make(map[string]bool)}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			oc.allowAll = true
			continue
		}
		scheme, host, ok := splitOrigin(o)
		if !ok {
			continue
		}
		if rest, found := strings.CutPrefix(host, "*."); found {
			oc.suffixes = append(oc.suffixes, originSuffix{scheme: scheme, domain: "." + rest})
			continue
		}
		oc.exact[scheme+"://"+host] = true
	}
	return oc
}

// Check 是否允许该请求。没有 Origin 头的请求（本地客户端、同源）总是允许
func (oc *OriginChecker) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || oc.allowAll {
		return true
	}
	return oc.allowed(origin)
}

// AllowOriginHeader Access-Control-Allow-Origin 的取值，不允许时为空
func (oc *OriginChecker) AllowOriginHeader(r *http.Request) string {
	if oc.allowAll {
		return "*"
	}
	origin := r.Header.Get("Origin")
	if origin != "" && oc.allowed(origin) {
		return origin
	}
	return ""
}

func (oc *OriginChecker) allowed(origin string) bool {
	scheme, host, ok := splitOrigin(origin)
	if !ok {
		return false
	}
	if oc.exact[scheme+"://"+host] {
		return true
	}
	for _, s := range oc.suffixes {
		if s.scheme == scheme && strings.HasSuffix(host, s.domain) {
			return true
		}
	}
	return false
}

// splitOrigin 规范化为小写的 scheme 和 host[:port]
func splitOrigin(origin string) (scheme, host string, ok bool) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", "", false
	}
	return strings.ToLower(u.Scheme), strings.ToLower(u.Host), true
}

// GetClientIP 客户端 IP。依次取 X-Forwarded-For 的第一个合法地址、X-Real-IP、
// 连接地址；代理头里的非法值被忽略
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
