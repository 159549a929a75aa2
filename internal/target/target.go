package target

import (
	"fmt"
	"strconv"
)

// Target is a single web service found in the scan log.
type Target struct {
	IP   string
	Port int
}

// Scheme returns the protocol used to reach the target. Only port 443 is
// treated as TLS; the service tag from the log is not consulted.
func (t Target) Scheme() string {
	if t.Port == 443 {
		return "https"
	}
	return "http"
}

// URL returns scheme://ip:port.
func (t Target) URL() string {
	return fmt.Sprintf("%s://%s:%d", t.Scheme(), t.IP, t.Port)
}

func (t Target) String() string {
	return t.IP + ":" + strconv.Itoa(t.Port)
}
