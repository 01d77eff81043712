package proxy

import (
	"strings"

	"github.com/gobwas/httphead"

	"tenantgate/internal/http1"
)

// upgradeOffer records what, if anything, a request asked to upgrade to. It
// is captured before the request is forwarded because the answer has to be
// compared against the offer once the backend responds.
type upgradeOffer struct {
	requested bool
	protocol  string
}

func upgradeOfferFrom(head *http1.RequestHead) upgradeOffer {
	protocol := strings.TrimSpace(head.Header.Get("Upgrade"))
	if protocol == "" || !connectionLists(&head.Header, "upgrade") {
		return upgradeOffer{}
	}
	return upgradeOffer{requested: true, protocol: protocol}
}

// agrees reports whether a 101 response's Upgrade value names the protocol
// the client offered. The comparison is case-insensitive on the whole value.
func (o upgradeOffer) agrees(responseProtocol string) bool {
	return o.requested && strings.EqualFold(strings.TrimSpace(responseProtocol), o.protocol)
}

// connectionLists reports whether any Connection field value contains the
// given option token.
func connectionLists(h *http1.Header, option string) bool {
	found := false
	for _, v := range h.Values("Connection") {
		httphead.ScanTokens([]byte(v), func(token []byte) bool {
			if strings.EqualFold(string(token), option) {
				found = true
				return false
			}
			return true
		})
		if found {
			break
		}
	}
	return found
}

// wantsClose reports whether the peer signalled that the connection should
// not be reused after this message. HTTP/1.0 defaults to close unless
// keep-alive is explicit.
func wantsClose(proto string, h *http1.Header) bool {
	if proto == "HTTP/1.0" {
		return !connectionLists(h, "keep-alive")
	}
	return connectionLists(h, "close")
}
