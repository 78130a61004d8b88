package lifecycle

import (
	"fmt"
	"net"
	"strconv"
)

// numChannels is the number of ports a kernel needs: shell, iopub, stdin,
// control and heartbeat.
const numChannels = 5

// reservePorts finds n distinct free TCP ports on host. Listeners are held
// until all ports are found so the same port is never returned twice. When
// start > 0 the search is limited to [start, end].
func reservePorts(host string, n, start, end int) ([]int, error) {
	var held []net.Listener
	defer func() {
		for _, l := range held {
			_ = l.Close()
		}
	}()
	ports := make([]int, 0, n)
	if start > 0 {
		for p := start; p <= end && len(ports) < n; p++ {
			l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(p)))
			if err != nil {
				continue
			}
			held = append(held, l)
			ports = append(ports, p)
		}
		if len(ports) < n {
			return nil, fmt.Errorf("no %d free ports in range %d-%d", n, start, end)
		}
		return ports, nil
	}
	for len(ports) < n {
		l, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
		if err != nil {
			return nil, err
		}
		held = append(held, l)
		ports = append(ports, l.Addr().(*net.TCPAddr).Port)
	}
	return ports, nil
}
